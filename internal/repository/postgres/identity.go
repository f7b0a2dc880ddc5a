package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/identity"
)

type identityStore struct {
	BaseRepository
}

func NewIdentityStore(base BaseRepository) identity.AccountStore {
	return &identityStore{base}
}

func (r *identityStore) Create(ctx context.Context, account *identity.Account) error {
	query := `
		INSERT INTO identity_accounts (
			external_id, email, temp_hash, cred_hash, confirmed, temp_issued_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ExternalID,
		account.Email,
		account.TempHash,
		account.CredHash,
		account.Confirmed,
		account.TempIssuedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return translateError(err, "identity already exists", "identity not found")
}

func (r *identityStore) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	query := `
		SELECT * FROM identity_accounts
		WHERE email = $1
	`
	var account identity.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("identity not found")
		}
		return nil, fmt.Errorf("failed to get identity account: %w", err)
	}
	return &account, nil
}

func (r *identityStore) Update(ctx context.Context, account *identity.Account) error {
	account.UpdatedAt = time.Now()

	query := `
		UPDATE identity_accounts SET
			temp_hash = $1,
			cred_hash = $2,
			confirmed = $3,
			temp_issued_at = $4,
			updated_at = $5
		WHERE email = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		account.TempHash,
		account.CredHash,
		account.Confirmed,
		account.TempIssuedAt,
		account.UpdatedAt,
		account.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to update identity account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("identity not found")
	}
	return nil
}
