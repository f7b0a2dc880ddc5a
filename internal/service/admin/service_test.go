package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/model"
)

type fakeAdminRepo struct {
	profiles map[uuid.UUID]*model.AdminProfile
	settings map[string]*model.AdminSetting
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{
		profiles: make(map[uuid.UUID]*model.AdminProfile),
		settings: make(map[string]*model.AdminSetting),
	}
}

func (r *fakeAdminRepo) GetProfileByUserID(_ context.Context, userID uuid.UUID) (*model.AdminProfile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	return nil, apperror.NotFound("admin profile not found")
}

func (r *fakeAdminRepo) CreateProfile(_ context.Context, profile *model.AdminProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeAdminRepo) UpdateProfile(_ context.Context, profile *model.AdminProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeAdminRepo) ListSettings(_ context.Context, adminID uuid.UUID) ([]*model.AdminSetting, error) {
	var out []*model.AdminSetting
	for _, s := range r.settings {
		if s.AdminID == adminID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeAdminRepo) UpsertSetting(_ context.Context, setting *model.AdminSetting) error {
	setting.UpdatedAt = time.Now()
	r.settings[setting.AdminID.String()+"/"+setting.Key] = setting
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func newTestService() (*Service, uuid.UUID, uuid.UUID) {
	adminID := uuid.New()
	doctorID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		adminID:  {Base: model.Base{ID: adminID}, Email: "admin@example.com", Role: model.RoleAdmin},
		doctorID: {Base: model.Base{ID: doctorID}, Email: "doc@example.com", Role: model.RoleDoctor},
	}}
	svc := NewService(newFakeAdminRepo(), nil, nil, users)
	return svc, adminID, doctorID
}

func TestGetOrCreateProfileFirstAccess(t *testing.T) {
	svc, adminID, _ := newTestService()

	profile, err := svc.GetOrCreateProfile(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, adminID, profile.UserID)
	assert.Equal(t, "admin@example.com", profile.DisplayName)

	again, err := svc.GetOrCreateProfile(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestGetOrCreateProfileRejectsNonAdmin(t *testing.T) {
	svc, _, doctorID := newTestService()

	_, err := svc.GetOrCreateProfile(context.Background(), doctorID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestUpdateProfileAppliesPartialEdits(t *testing.T) {
	svc, adminID, _ := newTestService()

	link := "https://calendly.example/admin"
	profile, err := svc.UpdateProfile(context.Background(), adminID, &model.UpdateAdminProfileRequest{
		SchedulingLink: &link,
	})
	require.NoError(t, err)
	assert.Equal(t, link, profile.SchedulingLink)
	assert.Equal(t, "admin@example.com", profile.DisplayName)
}

func TestPutSettingRequiresKey(t *testing.T) {
	svc, adminID, _ := newTestService()

	err := svc.PutSetting(context.Background(), adminID, "", "value")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, svc.PutSetting(context.Background(), adminID, "notify_on_submit", "true"))

	settings, err := svc.ListSettings(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "notify_on_submit", settings[0].Key)
}

func TestListApplicationsRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.ListApplications(context.Background(), &model.ApplicationFilters{Status: "archived"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
