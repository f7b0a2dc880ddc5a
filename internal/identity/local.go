package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medrecruit/onboard-api/internal/apperror"
)

const bcryptCost = 12

// tempCredentialAlphabet avoids ambiguous characters in emailed codes.
const tempCredentialAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const tempCredentialLength = 12

// LocalProvider implements Gateway against the service's own credential
// store. It keeps the same contract an external pool would: accounts start
// unconfirmed with a temporary credential and must replace it before they
// can authenticate.
type LocalProvider struct {
	store    AccountStore
	notifier Notifier
}

func NewLocalProvider(store AccountStore, notifier Notifier) *LocalProvider {
	return &LocalProvider{store: store, notifier: notifier}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, tempCredential string, attributes map[string]string) (string, error) {
	tempHash, err := bcrypt.GenerateFromPassword([]byte(tempCredential), bcryptCost)
	if err != nil {
		return "", apperror.External(err, "failed to provision identity")
	}

	now := time.Now()
	account := &Account{
		ExternalID:   uuid.New().String(),
		Email:        email,
		TempHash:     string(tempHash),
		Confirmed:    false,
		TempIssuedAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.store.Create(ctx, account); err != nil {
		return "", err
	}

	if p.notifier != nil {
		if err := p.notifier.SendTemporaryCredential(email, tempCredential); err != nil {
			// Delivery failure is not fatal; the credential can be resent.
			log.Warn().Err(err).Str("email", email).Msg("failed to deliver temporary credential")
		}
	}

	return account.ExternalID, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, credential string) (string, error) {
	account, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		return "", apperror.Auth("invalid credentials")
	}

	if !account.Confirmed || account.CredHash == "" {
		return "", apperror.Auth("account not confirmed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.CredHash), []byte(credential)); err != nil {
		return "", apperror.Auth("invalid credentials")
	}

	return account.ExternalID, nil
}

func (p *LocalProvider) VerifyTemporaryCredential(ctx context.Context, email, tempCredential string) (bool, error) {
	account, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	if account.TempHash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(account.TempHash), []byte(tempCredential)) == nil, nil
}

func (p *LocalProvider) ReplaceCredential(ctx context.Context, email, tempCredential, newCredential string) (bool, error) {
	account, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	if account.TempHash == "" {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(account.TempHash), []byte(tempCredential)) != nil {
		return false, nil
	}

	credHash, err := bcrypt.GenerateFromPassword([]byte(newCredential), bcryptCost)
	if err != nil {
		return false, apperror.External(err, "failed to set credential")
	}

	account.CredHash = string(credHash)
	account.TempHash = ""
	account.TempIssuedAt = nil
	account.Confirmed = true
	account.UpdatedAt = time.Now()

	if err := p.store.Update(ctx, account); err != nil {
		return false, err
	}
	return true, nil
}

func (p *LocalProvider) ResendConfirmation(ctx context.Context, email string) (bool, error) {
	account, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	if account.Confirmed {
		return false, nil
	}

	tempCredential, err := GenerateTemporaryCredential()
	if err != nil {
		return false, apperror.External(err, "failed to generate credential")
	}

	tempHash, err := bcrypt.GenerateFromPassword([]byte(tempCredential), bcryptCost)
	if err != nil {
		return false, apperror.External(err, "failed to generate credential")
	}

	now := time.Now()
	account.TempHash = string(tempHash)
	account.TempIssuedAt = &now
	account.UpdatedAt = now

	if err := p.store.Update(ctx, account); err != nil {
		return false, err
	}

	if p.notifier != nil {
		if err := p.notifier.SendTemporaryCredential(email, tempCredential); err != nil {
			return false, apperror.External(err, "failed to deliver credential")
		}
	}

	return true, nil
}

// GenerateTemporaryCredential returns a random code suitable for emailing.
func GenerateTemporaryCredential() (string, error) {
	out := make([]byte, tempCredentialLength)
	max := big.NewInt(int64(len(tempCredentialAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		out[i] = tempCredentialAlphabet[n.Int64()]
	}
	return string(out), nil
}
