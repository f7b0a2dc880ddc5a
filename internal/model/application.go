package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApplicationStatus is the lifecycle field on a doctor application.
type ApplicationStatus string

const (
	StatusEmailUnconfirmed      ApplicationStatus = "email_unconfirmed"
	StatusPending               ApplicationStatus = "pending"
	StatusInterviewScheduled    ApplicationStatus = "interview_scheduled"
	StatusDocumentationRequired ApplicationStatus = "documentation_required"
	StatusActive                ApplicationStatus = "active"
	StatusRejected              ApplicationStatus = "rejected"
	StatusSuspended             ApplicationStatus = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusEmailUnconfirmed, StatusPending, StatusInterviewScheduled,
		StatusDocumentationRequired, StatusActive, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// ApplicationAction names a lifecycle transition on a doctor application.
type ApplicationAction string

const (
	ActionConfirmEmail         ApplicationAction = "confirm_email"
	ActionScheduleInterview    ApplicationAction = "schedule_interview"
	ActionApprove              ApplicationAction = "approve"
	ActionReject               ApplicationAction = "reject"
	ActionRequestDocumentation ApplicationAction = "request_documentation"
	ActionSuspend              ApplicationAction = "suspend"
)

// transitions is the authoritative table: (current status, action) -> next
// status. Anything not listed is an invalid transition. rejected and
// suspended are terminal. schedule_interview maps a status onto itself on
// resend so admins can re-issue an invite without a state change.
var transitions = map[ApplicationStatus]map[ApplicationAction]ApplicationStatus{
	StatusEmailUnconfirmed: {
		ActionConfirmEmail: StatusPending,
	},
	StatusPending: {
		ActionScheduleInterview:    StatusInterviewScheduled,
		ActionRequestDocumentation: StatusDocumentationRequired,
		ActionApprove:              StatusActive,
		ActionReject:               StatusRejected,
	},
	StatusInterviewScheduled: {
		ActionScheduleInterview:    StatusInterviewScheduled,
		ActionRequestDocumentation: StatusDocumentationRequired,
		ActionApprove:              StatusActive,
		ActionReject:               StatusRejected,
	},
	StatusDocumentationRequired: {
		ActionScheduleInterview:    StatusInterviewScheduled,
		ActionRequestDocumentation: StatusDocumentationRequired,
		ActionApprove:              StatusActive,
		ActionReject:               StatusRejected,
	},
	StatusActive: {
		ActionSuspend: StatusSuspended,
	},
}

// Next resolves the status reached by applying action to s. It returns an
// error for transitions outside the table.
func (s ApplicationStatus) Next(action ApplicationAction) (ApplicationStatus, error) {
	if next, ok := transitions[s][action]; ok {
		return next, nil
	}
	return "", fmt.Errorf("action %q is not valid for status %q", action, s)
}

// CanApply reports whether action is defined for the current status.
func (s ApplicationStatus) CanApply(action ApplicationAction) bool {
	_, ok := transitions[s][action]
	return ok
}

// Terminal reports whether no further transition is defined from s.
func (s ApplicationStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// DoctorApplication is one-to-one with a users row of role doctor. Status is
// only ever written through the transition table; profile fields may be
// edited administratively.
type DoctorApplication struct {
	Base
	UserID             uuid.UUID         `json:"user_id" db:"user_id"`
	FirstName          string            `json:"first_name" db:"first_name"`
	LastName           string            `json:"last_name" db:"last_name"`
	Email              string            `json:"email" db:"email"`
	Phone              string            `json:"phone" db:"phone"`
	AddressLine        string            `json:"address_line" db:"address_line"`
	Suburb             string            `json:"suburb" db:"suburb"`
	State              string            `json:"state" db:"state"`
	Postcode           string            `json:"postcode" db:"postcode"`
	RegistrationNumber string            `json:"registration_number" db:"registration_number"`
	RegistrationDate   *time.Time        `json:"registration_date" db:"registration_date"`
	Specialty          string            `json:"specialty" db:"specialty"`
	YearsExperience    int               `json:"years_experience" db:"years_experience"`
	Qualifications     pq.StringArray    `json:"qualifications" db:"qualifications"`
	Languages          pq.StringArray    `json:"languages" db:"languages"`
	ConsultationTypes  pq.StringArray    `json:"consultation_types" db:"consultation_types"`
	Status             ApplicationStatus `json:"status" db:"status"`
	ApprovedAt         *time.Time        `json:"approved_at" db:"approved_at"`
	ApprovedBy         *uuid.UUID        `json:"approved_by" db:"approved_by"`
}

// FullName returns the doctor's display name.
func (a *DoctorApplication) FullName() string {
	return a.FirstName + " " + a.LastName
}

type ApplicationFilters struct {
	Status ApplicationStatus `json:"status" form:"status"`
	Search string            `json:"search" form:"search"`
	Pagination
}

// SubmitApplicationRequest carries the registration wizard payload.
type SubmitApplicationRequest struct {
	FirstName          string   `json:"first_name" binding:"required"`
	LastName           string   `json:"last_name" binding:"required"`
	Email              string   `json:"email" binding:"required,email"`
	Phone              string   `json:"phone" binding:"required"`
	AddressLine        string   `json:"address_line" binding:"required"`
	Suburb             string   `json:"suburb" binding:"required"`
	State              string   `json:"state" binding:"required"`
	Postcode           string   `json:"postcode" binding:"required,len=4,numeric"`
	RegistrationNumber string   `json:"registration_number" binding:"required,ahpra"`
	RegistrationDate   string   `json:"registration_date" binding:"omitempty,datetime=2006-01-02"`
	Specialty          string   `json:"specialty" binding:"required"`
	YearsExperience    int      `json:"years_experience" binding:"min=0,max=70"`
	Qualifications     []string `json:"qualifications" binding:"required,min=1"`
	Languages          []string `json:"languages"`
	ConsultationTypes  []string `json:"consultation_types" binding:"required,min=1"`
}

type VerifyCredentialRequest struct {
	Email          string `json:"email" binding:"required,email"`
	TempCredential string `json:"temp_credential" binding:"required"`
}

type SetCredentialRequest struct {
	Email          string `json:"email" binding:"required,email"`
	TempCredential string `json:"temp_credential" binding:"required"`
	NewCredential  string `json:"new_credential" binding:"required"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ReviewRequest is the shared admin payload for lifecycle decisions. Reason
// is optional here; reject enforces it in the service.
type ReviewRequest struct {
	Reason string `json:"reason"`
}

// ScheduleInterviewRequest optionally overrides the admin profile's
// scheduling link for one invite.
type ScheduleInterviewRequest struct {
	SchedulingLink string `json:"scheduling_link" binding:"omitempty,url"`
	Reason         string `json:"reason"`
}

type UpdateApplicationRequest struct {
	FirstName         *string  `json:"first_name"`
	LastName          *string  `json:"last_name"`
	Phone             *string  `json:"phone"`
	AddressLine       *string  `json:"address_line"`
	Suburb            *string  `json:"suburb"`
	State             *string  `json:"state"`
	Postcode          *string  `json:"postcode" binding:"omitempty,len=4,numeric"`
	Specialty         *string  `json:"specialty"`
	YearsExperience   *int     `json:"years_experience" binding:"omitempty,min=0,max=70"`
	Qualifications    []string `json:"qualifications"`
	Languages         []string `json:"languages"`
	ConsultationTypes []string `json:"consultation_types"`
}
