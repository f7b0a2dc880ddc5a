package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepository owns doctor applications. The multi-write methods
// are atomic: either every row lands or none does.
type ApplicationRepository interface {
	// CreateWithUser inserts the user and the application, then runs
	// provision (the external identity call) inside the same transaction so
	// a provider failure leaves no local rows. The returned external id is
	// stored on the user before commit.
	CreateWithUser(ctx context.Context, user *model.User, app *model.DoctorApplication, provision func(ctx context.Context) (string, error)) error

	// ApplyTransition persists the application's status (and approval
	// stamps when set) together with exactly one admin action row.
	ApplyTransition(ctx context.Context, app *model.DoctorApplication, action *model.AdminAction) error

	Get(ctx context.Context, id uuid.UUID) (*model.DoctorApplication, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorApplication, error)
	GetByEmail(ctx context.Context, email string) (*model.DoctorApplication, error)
	GetByRegistrationNumber(ctx context.Context, regNumber string) (*model.DoctorApplication, error)
	List(ctx context.Context, filters *model.ApplicationFilters) ([]*model.DoctorApplication, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus) error
	UpdateProfile(ctx context.Context, app *model.DoctorApplication) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminRepository interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminProfile, error)
	CreateProfile(ctx context.Context, profile *model.AdminProfile) error
	UpdateProfile(ctx context.Context, profile *model.AdminProfile) error
	ListSettings(ctx context.Context, adminID uuid.UUID) ([]*model.AdminSetting, error)
	UpsertSetting(ctx context.Context, setting *model.AdminSetting) error
}

type AdminActionRepository interface {
	Create(ctx context.Context, action *model.AdminAction) error
	List(ctx context.Context, filters *model.AdminActionFilters) ([]*model.AdminAction, int64, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Document, error)
}

// TokenRepository tracks revoked session tokens until their natural expiry.
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
