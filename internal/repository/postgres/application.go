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

type applicationRepository struct {
	BaseRepository
}

func NewApplicationRepository(base BaseRepository) repository.ApplicationRepository {
	return &applicationRepository{base}
}

func (r *applicationRepository) CreateWithUser(ctx context.Context, user *model.User, app *model.DoctorApplication, provision func(ctx context.Context) (string, error)) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := createUserTx(ctx, tx, user); err != nil {
			return err
		}

		app.ID = uuid.New()
		app.UserID = user.ID
		now := time.Now()
		app.CreatedAt = now
		app.UpdatedAt = now

		query := `
			INSERT INTO doctor_applications (
				id, user_id, first_name, last_name, email, phone,
				address_line, suburb, state, postcode,
				registration_number, registration_date, specialty, years_experience,
				qualifications, languages, consultation_types,
				status, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
			)
		`
		_, err := tx.ExecContext(ctx, query,
			app.ID,
			app.UserID,
			app.FirstName,
			app.LastName,
			app.Email,
			app.Phone,
			app.AddressLine,
			app.Suburb,
			app.State,
			app.Postcode,
			app.RegistrationNumber,
			app.RegistrationDate,
			app.Specialty,
			app.YearsExperience,
			app.Qualifications,
			app.Languages,
			app.ConsultationTypes,
			app.Status,
			app.CreatedAt,
			app.UpdatedAt,
		)
		if err != nil {
			return translateError(err, "registration number already registered", "application not found")
		}

		// Provision the external identity last so a provider failure rolls
		// back both inserts.
		externalID, err := provision(ctx)
		if err != nil {
			return err
		}
		user.ExternalID = externalID

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET external_id = $1 WHERE id = $2`,
			externalID, user.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to store external identity reference: %w", err)
		}
		return nil
	})
}

func (r *applicationRepository) ApplyTransition(ctx context.Context, app *model.DoctorApplication, action *model.AdminAction) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		app.UpdatedAt = time.Now()

		query := `
			UPDATE doctor_applications SET
				status = $1,
				approved_at = $2,
				approved_by = $3,
				updated_at = $4
			WHERE id = $5 AND deleted_at IS NULL
		`
		result, err := tx.ExecContext(ctx, query,
			app.Status,
			app.ApprovedAt,
			app.ApprovedBy,
			app.UpdatedAt,
			app.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperror.NotFound("application not found")
		}

		return createAdminActionTx(ctx, tx, action)
	})
}

func (r *applicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorApplication, error) {
	query := `
		SELECT * FROM doctor_applications
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, id)
}

func (r *applicationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorApplication, error) {
	query := `
		SELECT * FROM doctor_applications
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, userID)
}

func (r *applicationRepository) GetByEmail(ctx context.Context, email string) (*model.DoctorApplication, error) {
	query := `
		SELECT * FROM doctor_applications
		WHERE email = $1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, email)
}

func (r *applicationRepository) GetByRegistrationNumber(ctx context.Context, regNumber string) (*model.DoctorApplication, error) {
	query := `
		SELECT * FROM doctor_applications
		WHERE registration_number = $1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, regNumber)
}

func (r *applicationRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.DoctorApplication, error) {
	var app model.DoctorApplication
	if err := r.db.GetContext(ctx, &app, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("application not found")
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context, filters *model.ApplicationFilters) ([]*model.DoctorApplication, int64, error) {
	filters.Normalize()

	where := " WHERE deleted_at IS NULL"
	args := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += fmt.Sprintf(" AND (first_name || ' ' || last_name ILIKE $%d OR email ILIKE $%d OR registration_number ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM doctor_applications" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM doctor_applications%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	apps := []*model.DoctorApplication{}
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, total, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus) error {
	query := `
		UPDATE doctor_applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("application not found")
	}
	return nil
}

func (r *applicationRepository) UpdateProfile(ctx context.Context, app *model.DoctorApplication) error {
	query := `
		UPDATE doctor_applications SET
			first_name = $1,
			last_name = $2,
			phone = $3,
			address_line = $4,
			suburb = $5,
			state = $6,
			postcode = $7,
			specialty = $8,
			years_experience = $9,
			qualifications = $10,
			languages = $11,
			consultation_types = $12,
			updated_at = $13
		WHERE id = $14 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		app.FirstName,
		app.LastName,
		app.Phone,
		app.AddressLine,
		app.Suburb,
		app.State,
		app.Postcode,
		app.Specialty,
		app.YearsExperience,
		app.Qualifications,
		app.Languages,
		app.ConsultationTypes,
		time.Now(),
		app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("application not found")
	}
	return nil
}

// Delete is the administrative escape hatch; normal flow only moves
// applications between soft states.
func (r *applicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE doctor_applications
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("application not found")
	}
	return nil
}
