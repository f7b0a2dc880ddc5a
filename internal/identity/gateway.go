package identity

import (
	"context"
	"time"
)

// Gateway is the capability surface the portal needs from an identity
// provider: account creation with a temporary credential, credential
// verification and replacement, and authentication. Implementations wrap
// whichever provider is configured; the rest of the codebase never sees
// provider-specific types.
type Gateway interface {
	// CreateAccount provisions an account with a temporary credential and
	// returns the provider's reference for it.
	CreateAccount(ctx context.Context, email, tempCredential string, attributes map[string]string) (string, error)

	// Authenticate verifies a permanent credential and returns the external
	// id on success. Failures surface as apperror.Auth.
	Authenticate(ctx context.Context, email, credential string) (string, error)

	// VerifyTemporaryCredential checks a temporary credential without
	// consuming it.
	VerifyTemporaryCredential(ctx context.Context, email, tempCredential string) (bool, error)

	// ReplaceCredential swaps the temporary credential for a permanent one.
	ReplaceCredential(ctx context.Context, email, tempCredential, newCredential string) (bool, error)

	// ResendConfirmation issues a fresh temporary credential for an
	// unconfirmed account.
	ResendConfirmation(ctx context.Context, email string) (bool, error)
}

// Account is the provider-side record as the local provider stores it.
type Account struct {
	ExternalID   string     `db:"external_id"`
	Email        string     `db:"email"`
	TempHash     string     `db:"temp_hash"`
	CredHash     string     `db:"cred_hash"`
	Confirmed    bool       `db:"confirmed"`
	TempIssuedAt *time.Time `db:"temp_issued_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// AccountStore persists local provider accounts.
type AccountStore interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
}

// Notifier delivers a freshly issued temporary credential to its owner.
type Notifier interface {
	SendTemporaryCredential(email, tempCredential string) error
}
