package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

// Service covers the admin surface outside the status machine: application
// listing, profile settings and the audit trail.
type Service struct {
	admins  repository.AdminRepository
	apps    repository.ApplicationRepository
	actions repository.AdminActionRepository
	users   repository.UserRepository
}

func NewService(admins repository.AdminRepository, apps repository.ApplicationRepository, actions repository.AdminActionRepository, users repository.UserRepository) *Service {
	return &Service{
		admins:  admins,
		apps:    apps,
		actions: actions,
		users:   users,
	}
}

func (s *Service) ListApplications(ctx context.Context, filters *model.ApplicationFilters) ([]*model.DoctorApplication, int64, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("unknown status %q", filters.Status)
	}
	return s.apps.List(ctx, filters)
}

func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (*model.DoctorApplication, error) {
	return s.apps.Get(ctx, id)
}

// GetOrCreateProfile returns the admin's profile, creating an empty one on
// first access.
func (s *Service) GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*model.AdminProfile, error) {
	profile, err := s.admins.GetProfileByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("not an admin account")
	}

	profile = &model.AdminProfile{
		UserID:      userID,
		DisplayName: user.Email,
	}
	if err := s.admins.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create admin profile: %w", err)
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateAdminProfileRequest) (*model.AdminProfile, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.SchedulingLink != nil {
		profile.SchedulingLink = *req.SchedulingLink
	}

	if err := s.admins.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) ListSettings(ctx context.Context, adminID uuid.UUID) ([]*model.AdminSetting, error) {
	return s.admins.ListSettings(ctx, adminID)
}

func (s *Service) PutSetting(ctx context.Context, adminID uuid.UUID, key, value string) error {
	if key == "" {
		return apperror.Validation("setting key is required")
	}
	return s.admins.UpsertSetting(ctx, &model.AdminSetting{
		AdminID: adminID,
		Key:     key,
		Value:   value,
	})
}

func (s *Service) ListActions(ctx context.Context, filters *model.AdminActionFilters) ([]*model.AdminAction, int64, error) {
	return s.actions.List(ctx, filters)
}
