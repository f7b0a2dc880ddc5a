package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const insertUserQuery = `
	INSERT INTO users (
		id, external_id, email, role, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	prepareUser(user)
	_, err := r.db.ExecContext(ctx, insertUserQuery,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return translateError(err, "email already registered", "user not found")
}

// createTx is used by the application repository when the user row must land
// in the same transaction as the application row.
func createUserTx(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	prepareUser(user)
	_, err := tx.ExecContext(ctx, insertUserQuery,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return translateError(err, "email already registered", "user not found")
}

func prepareUser(user *model.User) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT * FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT * FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			external_id = $1,
			email = $2,
			role = $3,
			status = $4,
			updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ExternalID,
		user.Email,
		user.Role,
		user.Status,
		time.Now(),
		user.ID,
	)
	if err != nil {
		return translateError(err, "email already registered", "user not found")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("user not found")
	}

	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("user not found")
	}

	return nil
}
