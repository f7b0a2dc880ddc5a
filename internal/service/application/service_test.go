package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/notification"
	"github.com/medrecruit/onboard-api/internal/repository"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
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
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NotFound("user not found")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

type fakeAppRepo struct {
	users   *fakeUserRepo
	actions *fakeActionRepo
	apps    map[uuid.UUID]*model.DoctorApplication
}

func newFakeAppRepo(users *fakeUserRepo, actions *fakeActionRepo) *fakeAppRepo {
	return &fakeAppRepo{users: users, actions: actions, apps: make(map[uuid.UUID]*model.DoctorApplication)}
}

func (r *fakeAppRepo) CreateWithUser(ctx context.Context, user *model.User, app *model.DoctorApplication, provision func(ctx context.Context) (string, error)) error {
	// Mirror the transactional contract: a provision failure leaves nothing
	// behind.
	externalID, err := provision(ctx)
	if err != nil {
		return err
	}
	user.ExternalID = externalID
	if err := r.users.Create(ctx, user); err != nil {
		return err
	}
	app.ID = uuid.New()
	app.UserID = user.ID
	r.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) ApplyTransition(ctx context.Context, app *model.DoctorApplication, action *model.AdminAction) error {
	if _, ok := r.apps[app.ID]; !ok {
		return apperror.NotFound("application not found")
	}
	r.apps[app.ID] = app
	return r.actions.Create(ctx, action)
}

func (r *fakeAppRepo) Get(_ context.Context, id uuid.UUID) (*model.DoctorApplication, error) {
	if a, ok := r.apps[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, apperror.NotFound("application not found")
}

func (r *fakeAppRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.DoctorApplication, error) {
	for _, a := range r.apps {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("application not found")
}

func (r *fakeAppRepo) GetByEmail(_ context.Context, email string) (*model.DoctorApplication, error) {
	for _, a := range r.apps {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("application not found")
}

func (r *fakeAppRepo) GetByRegistrationNumber(_ context.Context, regNumber string) (*model.DoctorApplication, error) {
	for _, a := range r.apps {
		if a.RegistrationNumber == regNumber {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("application not found")
}

func (r *fakeAppRepo) List(_ context.Context, _ *model.ApplicationFilters) ([]*model.DoctorApplication, int64, error) {
	out := []*model.DoctorApplication{}
	for _, a := range r.apps {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.ApplicationStatus) error {
	a, ok := r.apps[id]
	if !ok {
		return apperror.NotFound("application not found")
	}
	a.Status = status
	return nil
}

func (r *fakeAppRepo) UpdateProfile(_ context.Context, app *model.DoctorApplication) error {
	if _, ok := r.apps[app.ID]; !ok {
		return apperror.NotFound("application not found")
	}
	r.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.apps[id]; !ok {
		return apperror.NotFound("application not found")
	}
	delete(r.apps, id)
	return nil
}

type fakeActionRepo struct {
	records []*model.AdminAction
}

func (r *fakeActionRepo) Create(_ context.Context, action *model.AdminAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	action.CreatedAt = time.Now()
	r.records = append(r.records, action)
	return nil
}

func (r *fakeActionRepo) List(_ context.Context, _ *model.AdminActionFilters) ([]*model.AdminAction, int64, error) {
	return r.records, int64(len(r.records)), nil
}

type fakeAdminRepo struct {
	profiles map[uuid.UUID]*model.AdminProfile
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{profiles: make(map[uuid.UUID]*model.AdminProfile)}
}

func (r *fakeAdminRepo) GetProfileByUserID(_ context.Context, userID uuid.UUID) (*model.AdminProfile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	return nil, apperror.NotFound("admin profile not found")
}

func (r *fakeAdminRepo) CreateProfile(_ context.Context, profile *model.AdminProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeAdminRepo) UpdateProfile(_ context.Context, profile *model.AdminProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeAdminRepo) ListSettings(_ context.Context, _ uuid.UUID) ([]*model.AdminSetting, error) {
	return nil, nil
}

func (r *fakeAdminRepo) UpsertSetting(_ context.Context, _ *model.AdminSetting) error {
	return nil
}

type fakeGateway struct {
	accounts   map[string]string // email -> temp credential
	confirmed  map[string]string // email -> permanent credential
	createErr  error
	replaceErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		accounts:  make(map[string]string),
		confirmed: make(map[string]string),
	}
}

func (g *fakeGateway) CreateAccount(_ context.Context, email, tempCredential string, _ map[string]string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	g.accounts[email] = tempCredential
	return "ext-" + email, nil
}

func (g *fakeGateway) Authenticate(_ context.Context, email, credential string) (string, error) {
	if g.confirmed[email] == credential && credential != "" {
		return "ext-" + email, nil
	}
	return "", apperror.Auth("invalid credentials")
}

func (g *fakeGateway) VerifyTemporaryCredential(_ context.Context, email, tempCredential string) (bool, error) {
	return g.accounts[email] == tempCredential && tempCredential != "", nil
}

func (g *fakeGateway) ReplaceCredential(_ context.Context, email, tempCredential, newCredential string) (bool, error) {
	if g.replaceErr != nil {
		return false, g.replaceErr
	}
	if g.accounts[email] != tempCredential || tempCredential == "" {
		return false, nil
	}
	delete(g.accounts, email)
	g.confirmed[email] = newCredential
	return true, nil
}

func (g *fakeGateway) ResendConfirmation(_ context.Context, email string) (bool, error) {
	if _, ok := g.accounts[email]; !ok {
		return false, nil
	}
	g.accounts[email] = "resent-credential"
	return true, nil
}

type fakeSender struct {
	sent []string
}

func (s *fakeSender) Send(to string, _ notification.Message) error {
	s.sent = append(s.sent, to)
	return nil
}

type fixture struct {
	svc     *Service
	users   *fakeUserRepo
	apps    *fakeAppRepo
	actions *fakeActionRepo
	admins  *fakeAdminRepo
	gateway *fakeGateway
	sender  *fakeSender
	adminID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	actions := &fakeActionRepo{}
	apps := newFakeAppRepo(users, actions)
	admins := newFakeAdminRepo()
	gateway := newFakeGateway()
	sender := &fakeSender{}

	admin := &model.User{Email: "admin@example.com", Role: model.RoleAdmin, Status: model.UserStatusActive}
	require.NoError(t, users.Create(context.Background(), admin))

	return &fixture{
		svc:     NewService(apps, users, actions, admins, gateway, sender),
		users:   users,
		apps:    apps,
		actions: actions,
		admins:  admins,
		gateway: gateway,
		sender:  sender,
		adminID: admin.ID,
	}
}

func submitRequest() *model.SubmitApplicationRequest {
	return &model.SubmitApplicationRequest{
		FirstName:          "Alice",
		LastName:           "Nguyen",
		Email:              "a@b.com",
		Phone:              "0400000000",
		AddressLine:        "1 Example St",
		Suburb:             "Carlton",
		State:              "VIC",
		Postcode:           "3053",
		RegistrationNumber: "ABC1234567890",
		Specialty:          "General Practice",
		YearsExperience:    8,
		Qualifications:     []string{"MBBS"},
		Languages:          []string{"English"},
		ConsultationTypes:  []string{"telehealth"},
	}
}

func (f *fixture) submit(t *testing.T) *model.DoctorApplication {
	t.Helper()
	app, err := f.svc.SubmitApplication(context.Background(), submitRequest())
	require.NoError(t, err)
	return app
}

func TestSubmitApplicationCreatesUnconfirmedApplication(t *testing.T) {
	f := newFixture(t)

	app := f.submit(t)

	assert.Equal(t, model.StatusEmailUnconfirmed, app.Status)
	assert.NotEqual(t, uuid.Nil, app.UserID)

	user, err := f.users.Get(context.Background(), app.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, user.Role)
	assert.Equal(t, model.UserStatusPending, user.Status)
	assert.Equal(t, "ext-a@b.com", user.ExternalID)
}

func TestSubmitApplicationDuplicateRegistrationNumber(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	req := submitRequest()
	req.Email = "other@b.com"
	_, err := f.svc.SubmitApplication(context.Background(), req)

	assert.True(t, apperror.Is(err, apperror.KindConflict))
	// No second application row.
	_, total, _ := f.apps.List(context.Background(), nil)
	assert.EqualValues(t, 1, total)
}

func TestSubmitApplicationDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	req := submitRequest()
	req.RegistrationNumber = "XYZ9876543210"
	_, err := f.svc.SubmitApplication(context.Background(), req)

	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestSubmitApplicationIdentityFailureLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	f.gateway.createErr = errors.New("pool unavailable")

	_, err := f.svc.SubmitApplication(context.Background(), submitRequest())

	assert.True(t, apperror.Is(err, apperror.KindExternalService))
	_, total, _ := f.apps.List(context.Background(), nil)
	assert.EqualValues(t, 0, total)
	_, userErr := f.users.GetByEmail(context.Background(), "a@b.com")
	assert.True(t, apperror.Is(userErr, apperror.KindNotFound))
}

func TestSetPermanentCredentialConfirmsApplication(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	temp := f.gateway.accounts["a@b.com"]

	user, err := f.svc.SetPermanentCredential(context.Background(), &model.SetCredentialRequest{
		Email:          "a@b.com",
		TempCredential: temp,
		NewCredential:  "Str0ngPass",
	})
	require.NoError(t, err)
	assert.Equal(t, app.UserID, user.ID)

	stored, err := f.apps.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestSetPermanentCredentialIsIdempotentForStatus(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	temp := f.gateway.accounts["a@b.com"]

	_, err := f.svc.SetPermanentCredential(context.Background(), &model.SetCredentialRequest{
		Email: "a@b.com", TempCredential: temp, NewCredential: "Str0ngPass",
	})
	require.NoError(t, err)

	// Move the application forward, then replay the set-credential call with
	// the already-consumed temp credential: rejected, status untouched.
	_, err = f.svc.ScheduleInterview(context.Background(), app.ID, f.adminID, "https://cal.example/x", "")
	require.NoError(t, err)

	_, err = f.svc.SetPermanentCredential(context.Background(), &model.SetCredentialRequest{
		Email: "a@b.com", TempCredential: temp, NewCredential: "Str0ngPass",
	})
	assert.True(t, apperror.Is(err, apperror.KindAuth))

	stored, _ := f.apps.Get(context.Background(), app.ID)
	assert.Equal(t, model.StatusInterviewScheduled, stored.Status)
}

func TestSetPermanentCredentialStrength(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	weak := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, cred := range weak {
		_, err := f.svc.SetPermanentCredential(context.Background(), &model.SetCredentialRequest{
			Email: "a@b.com", TempCredential: "whatever", NewCredential: cred,
		})
		assert.True(t, apperror.Is(err, apperror.KindValidation), "credential %q", cred)
	}
}

func TestScheduleInterviewTransitionsAndAudits(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	updated, err := f.svc.ScheduleInterview(context.Background(), app.ID, f.adminID, "https://cal.example/x", "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterviewScheduled, updated.Status)

	require.Len(t, f.actions.records, 1)
	assert.Equal(t, app.ID, f.actions.records[0].TargetID)
	assert.Equal(t, string(model.ActionScheduleInterview), f.actions.records[0].Action)
	assert.Equal(t, []string{"a@b.com"}, f.sender.sent)

	// Resend: succeeds again and appends a second audit row.
	_, err = f.svc.ScheduleInterview(context.Background(), app.ID, f.adminID, "https://cal.example/x", "")
	require.NoError(t, err)
	assert.Len(t, f.actions.records, 2)
}

func TestScheduleInterviewUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ScheduleInterview(context.Background(), uuid.New(), f.adminID, "https://cal.example/x", "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestApproveStampsApprovalAndActivatesUser(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	updated, err := f.svc.Approve(context.Background(), app.ID, f.adminID, "")
	require.NoError(t, err)

	assert.Equal(t, model.StatusActive, updated.Status)
	require.NotNil(t, updated.ApprovedAt)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, f.adminID, *updated.ApprovedBy)

	user, err := f.users.Get(context.Background(), app.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, user.Status)

	require.Len(t, f.actions.records, 1)
	assert.Equal(t, string(model.ActionApprove), f.actions.records[0].Action)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	_, err := f.svc.Reject(context.Background(), app.ID, f.adminID, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, f.actions.records)

	updated, err := f.svc.Reject(context.Background(), app.ID, f.adminID, "incomplete registration history")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, updated.Status)
	assert.Len(t, f.actions.records, 1)
}

func TestUndefinedTransitionRejected(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	_, err := f.svc.Reject(context.Background(), app.ID, f.adminID, "not suitable")
	require.NoError(t, err)

	// rejected is terminal: approving afterwards must fail and add no audit
	// row.
	before := len(f.actions.records)
	_, err = f.svc.Approve(context.Background(), app.ID, f.adminID, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Len(t, f.actions.records, before)
}

func TestSuspendOnlyFromActive(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	_, err := f.svc.Suspend(context.Background(), app.ID, f.adminID, "credential lapse")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.Approve(context.Background(), app.ID, f.adminID, "")
	require.NoError(t, err)

	updated, err := f.svc.Suspend(context.Background(), app.ID, f.adminID, "credential lapse")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuspended, updated.Status)
}

func TestReviewRequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.apps.UpdateStatus(context.Background(), app.ID, model.StatusPending))

	doctor := &model.User{Email: "dr@example.com", Role: model.RoleDoctor, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(context.Background(), doctor))

	_, err := f.svc.Approve(context.Background(), app.ID, doctor.ID, "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestResendConfirmation(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	ok, err := f.svc.ResendConfirmation(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.ResendConfirmation(context.Background(), "nobody@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

var _ repository.ApplicationRepository = (*fakeAppRepo)(nil)
var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.AdminActionRepository = (*fakeActionRepo)(nil)
var _ repository.AdminRepository = (*fakeAdminRepo)(nil)
