package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/identity"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/notification"
	"github.com/medrecruit/onboard-api/internal/repository"
)

const (
	defaultScheduleReason = "interview invitation sent"
	defaultApproveReason  = "application approved"
)

// Service drives the doctor-application lifecycle. Every admin decision goes
// through the transition table and lands with exactly one admin action row
// in the same transaction.
type Service struct {
	apps    repository.ApplicationRepository
	users   repository.UserRepository
	actions repository.AdminActionRepository
	admins  repository.AdminRepository
	gateway identity.Gateway
	sender  notification.Sender
}

func NewService(
	apps repository.ApplicationRepository,
	users repository.UserRepository,
	actions repository.AdminActionRepository,
	admins repository.AdminRepository,
	gateway identity.Gateway,
	sender notification.Sender,
) *Service {
	return &Service{
		apps:    apps,
		users:   users,
		actions: actions,
		admins:  admins,
		gateway: gateway,
		sender:  sender,
	}
}

// SubmitApplication validates the registration payload, creates the user and
// application rows and provisions the external identity, all-or-nothing.
func (s *Service) SubmitApplication(ctx context.Context, req *model.SubmitApplicationRequest) (*model.DoctorApplication, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	}
	if _, err := s.apps.GetByRegistrationNumber(ctx, req.RegistrationNumber); err == nil {
		return nil, apperror.Conflict("registration number already registered")
	}

	var regDate *time.Time
	if req.RegistrationDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RegistrationDate)
		if err != nil {
			return nil, apperror.Validation("invalid registration date")
		}
		regDate = &parsed
	}

	user := &model.User{
		Email:  req.Email,
		Role:   model.RoleDoctor,
		Status: model.UserStatusPending,
	}

	app := &model.DoctorApplication{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		AddressLine:        req.AddressLine,
		Suburb:             req.Suburb,
		State:              req.State,
		Postcode:           req.Postcode,
		RegistrationNumber: req.RegistrationNumber,
		RegistrationDate:   regDate,
		Specialty:          req.Specialty,
		YearsExperience:    req.YearsExperience,
		Qualifications:     pq.StringArray(req.Qualifications),
		Languages:          pq.StringArray(req.Languages),
		ConsultationTypes:  pq.StringArray(req.ConsultationTypes),
		Status:             model.StatusEmailUnconfirmed,
	}

	tempCredential, err := identity.GenerateTemporaryCredential()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	err = s.apps.CreateWithUser(ctx, user, app, func(ctx context.Context) (string, error) {
		externalID, err := s.gateway.CreateAccount(ctx, req.Email, tempCredential, map[string]string{
			"given_name":  req.FirstName,
			"family_name": req.LastName,
		})
		if err != nil {
			return "", apperror.External(err, "identity provider rejected the account")
		}
		return externalID, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	return app, nil
}

// ConfirmTemporaryCredential checks the emailed temporary password. No local
// state changes.
func (s *Service) ConfirmTemporaryCredential(ctx context.Context, email, tempCredential string) (bool, error) {
	ok, err := s.gateway.VerifyTemporaryCredential(ctx, email, tempCredential)
	if err != nil {
		return false, apperror.External(err, "identity provider unavailable")
	}
	return ok, nil
}

// ResendConfirmation asks the provider to issue and deliver a fresh
// temporary credential.
func (s *Service) ResendConfirmation(ctx context.Context, email string) (bool, error) {
	ok, err := s.gateway.ResendConfirmation(ctx, email)
	if err != nil {
		return false, apperror.External(err, "identity provider unavailable")
	}
	return ok, nil
}

// SetPermanentCredential replaces the temporary credential, authenticates
// with the new one and moves a still-unconfirmed application to pending.
// Re-invocation after the first success leaves the status untouched.
func (s *Service) SetPermanentCredential(ctx context.Context, req *model.SetCredentialRequest) (*model.User, error) {
	if err := validateCredentialStrength(req.NewCredential); err != nil {
		return nil, err
	}

	ok, err := s.gateway.ReplaceCredential(ctx, req.Email, req.TempCredential, req.NewCredential)
	if err != nil {
		return nil, apperror.External(err, "identity provider unavailable")
	}
	if !ok {
		return nil, apperror.Auth("invalid temporary credential")
	}

	if _, err := s.gateway.Authenticate(ctx, req.Email, req.NewCredential); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	app, err := s.apps.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if app.Status == model.StatusEmailUnconfirmed {
		next, err := app.Status.Next(model.ActionConfirmEmail)
		if err != nil {
			return nil, apperror.Validation("%s", err.Error())
		}
		if err := s.apps.UpdateStatus(ctx, app.ID, next); err != nil {
			return nil, fmt.Errorf("failed to confirm application: %w", err)
		}
	}

	return user, nil
}

// ScheduleInterview moves the application to interview_scheduled (a resend
// when already there) and records the admin action. The composed invite is
// dispatched best-effort.
func (s *Service) ScheduleInterview(ctx context.Context, doctorID, adminID uuid.UUID, schedulingLink, reason string) (*model.DoctorApplication, error) {
	if reason == "" {
		reason = defaultScheduleReason
	}

	admin, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if schedulingLink == "" {
		if profile, err := s.admins.GetProfileByUserID(ctx, adminID); err == nil {
			schedulingLink = profile.SchedulingLink
		}
	}
	if schedulingLink == "" {
		return nil, apperror.Validation("scheduling link is required")
	}

	metadata, _ := json.Marshal(map[string]string{"scheduling_link": schedulingLink})

	app, err := s.transition(ctx, doctorID, adminID, model.ActionScheduleInterview, reason, metadata)
	if err != nil {
		return nil, err
	}

	s.dispatchInvite(app, admin, schedulingLink)
	return app, nil
}

// Approve activates the application, stamping who approved it and when.
func (s *Service) Approve(ctx context.Context, doctorID, adminID uuid.UUID, reason string) (*model.DoctorApplication, error) {
	if reason == "" {
		reason = defaultApproveReason
	}

	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	app, err := s.transition(ctx, doctorID, adminID, model.ActionApprove, reason, nil)
	if err != nil {
		return nil, err
	}

	if user, err := s.users.Get(ctx, app.UserID); err == nil {
		user.Status = model.UserStatusActive
		if err := s.users.Update(ctx, user); err != nil {
			log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to activate approved user")
		}
	}

	s.dispatchDecision(app, "Congratulations! Your application has been approved and your account is now active.", "")
	return app, nil
}

// Reject declines the application. A reason is mandatory.
func (s *Service) Reject(ctx context.Context, doctorID, adminID uuid.UUID, reason string) (*model.DoctorApplication, error) {
	if reason == "" {
		return nil, apperror.Validation("a reason is required to reject an application")
	}

	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	app, err := s.transition(ctx, doctorID, adminID, model.ActionReject, reason, nil)
	if err != nil {
		return nil, err
	}

	s.dispatchDecision(app, "We are sorry to let you know that your application was not successful.", reason)
	return app, nil
}

// RequestDocumentation asks the applicant for further documents.
func (s *Service) RequestDocumentation(ctx context.Context, doctorID, adminID uuid.UUID, reason string) (*model.DoctorApplication, error) {
	if reason == "" {
		reason = "additional documentation required"
	}

	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	app, err := s.transition(ctx, doctorID, adminID, model.ActionRequestDocumentation, reason, nil)
	if err != nil {
		return nil, err
	}

	s.dispatchDecision(app, "Your application needs further documentation before we can continue.", reason)
	return app, nil
}

// Suspend takes an active doctor off the platform.
func (s *Service) Suspend(ctx context.Context, doctorID, adminID uuid.UUID, reason string) (*model.DoctorApplication, error) {
	if reason == "" {
		return nil, apperror.Validation("a reason is required to suspend a doctor")
	}

	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	app, err := s.transition(ctx, doctorID, adminID, model.ActionSuspend, reason, nil)
	if err != nil {
		return nil, err
	}

	if user, err := s.users.Get(ctx, app.UserID); err == nil {
		user.Status = model.UserStatusInactive
		if err := s.users.Update(ctx, user); err != nil {
			log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to deactivate suspended user")
		}
	}

	return app, nil
}

// Delete is the administrative escape hatch; the audit row is still written.
func (s *Service) Delete(ctx context.Context, doctorID, adminID uuid.UUID, reason string) error {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	if err := s.apps.Delete(ctx, doctorID); err != nil {
		return err
	}

	action := &model.AdminAction{
		AdminID:    adminID,
		TargetID:   doctorID,
		TargetType: model.TargetTypeApplication,
		Action:     "delete",
		Reason:     reason,
	}
	if err := s.actions.Create(ctx, action); err != nil {
		log.Error().Err(err).Stringer("target_id", doctorID).Msg("failed to record delete action")
	}
	return nil
}

// transition applies one table-checked status change together with its
// audit row.
func (s *Service) transition(ctx context.Context, doctorID, adminID uuid.UUID, action model.ApplicationAction, reason string, metadata json.RawMessage) (*model.DoctorApplication, error) {
	app, err := s.apps.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	next, err := app.Status.Next(action)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	app.Status = next
	if next == model.StatusActive {
		now := time.Now()
		app.ApprovedAt = &now
		app.ApprovedBy = &adminID
	}

	record := &model.AdminAction{
		AdminID:    adminID,
		TargetID:   app.ID,
		TargetType: model.TargetTypeApplication,
		Action:     string(action),
		Reason:     reason,
		Metadata:   metadata,
	}

	if err := s.apps.ApplyTransition(ctx, app, record); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", action, err)
	}

	return app, nil
}

func (s *Service) requireAdmin(ctx context.Context, adminID uuid.UUID) (*model.User, error) {
	admin, err := s.users.Get(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("only admins may review applications")
	}
	return admin, nil
}

func (s *Service) dispatchInvite(app *model.DoctorApplication, admin *model.User, schedulingLink string) {
	if s.sender == nil {
		return
	}
	senderName := admin.Email
	if profile, err := s.admins.GetProfileByUserID(context.Background(), admin.ID); err == nil && profile.DisplayName != "" {
		senderName = profile.DisplayName
	}
	msg, err := notification.RenderInterviewInvite(app.FullName(), schedulingLink, senderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to render interview invite")
		return
	}
	if err := s.sender.Send(app.Email, msg); err != nil {
		log.Error().Err(err).Str("email", app.Email).Msg("failed to send interview invite")
	}
}

func (s *Service) dispatchDecision(app *model.DoctorApplication, outcome, reason string) {
	if s.sender == nil {
		return
	}
	msg, err := notification.RenderDecision(app.FullName(), outcome, reason)
	if err != nil {
		log.Error().Err(err).Msg("failed to render decision notice")
		return
	}
	if err := s.sender.Send(app.Email, msg); err != nil {
		log.Error().Err(err).Str("email", app.Email).Msg("failed to send decision notice")
	}
}

// validateCredentialStrength enforces the minimum password policy: eight
// characters with upper case, lower case and a digit.
func validateCredentialStrength(credential string) error {
	if len(credential) < 8 {
		return apperror.Validation("password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range credential {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return apperror.Validation("password must contain upper case, lower case and a digit")
	}
	return nil
}
