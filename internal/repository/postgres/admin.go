package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

type adminRepository struct {
	BaseRepository
}

func NewAdminRepository(base BaseRepository) repository.AdminRepository {
	return &adminRepository{base}
}

func (r *adminRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminProfile, error) {
	query := `
		SELECT * FROM admin_profiles
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	var profile model.AdminProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("admin profile not found")
		}
		return nil, fmt.Errorf("failed to get admin profile: %w", err)
	}

	return &profile, nil
}

func (r *adminRepository) CreateProfile(ctx context.Context, profile *model.AdminProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO admin_profiles (
			id, user_id, display_name, phone, scheduling_link, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.DisplayName,
		profile.Phone,
		profile.SchedulingLink,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return translateError(err, "admin profile already exists", "admin profile not found")
}

func (r *adminRepository) UpdateProfile(ctx context.Context, profile *model.AdminProfile) error {
	query := `
		UPDATE admin_profiles SET
			display_name = $1,
			phone = $2,
			scheduling_link = $3,
			updated_at = $4
		WHERE user_id = $5 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.DisplayName,
		profile.Phone,
		profile.SchedulingLink,
		time.Now(),
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("admin profile not found")
	}
	return nil
}

func (r *adminRepository) ListSettings(ctx context.Context, adminID uuid.UUID) ([]*model.AdminSetting, error) {
	query := `
		SELECT * FROM admin_settings
		WHERE admin_id = $1
		ORDER BY key
	`
	settings := []*model.AdminSetting{}
	if err := r.db.SelectContext(ctx, &settings, query, adminID); err != nil {
		return nil, fmt.Errorf("failed to list admin settings: %w", err)
	}
	return settings, nil
}

func (r *adminRepository) UpsertSetting(ctx context.Context, setting *model.AdminSetting) error {
	setting.UpdatedAt = time.Now()

	query := `
		INSERT INTO admin_settings (admin_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (admin_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		setting.AdminID,
		setting.Key,
		setting.Value,
		setting.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert admin setting: %w", err)
	}
	return nil
}
