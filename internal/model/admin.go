package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AdminProfile is one-to-one with a users row of role admin. Created lazily
// on first settings access.
type AdminProfile struct {
	Base
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	Phone          string    `json:"phone" db:"phone"`
	SchedulingLink string    `json:"scheduling_link" db:"scheduling_link"`
}

// AdminSetting is a key/value pair scoped to one admin.
type AdminSetting struct {
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateAdminProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	Phone          *string `json:"phone"`
	SchedulingLink *string `json:"scheduling_link" binding:"omitempty,url"`
}

// AdminAction is the append-only audit record written alongside every
// state-changing admin operation, in the same transaction.
type AdminAction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	AdminID    uuid.UUID       `json:"admin_id" db:"admin_id"`
	TargetID   uuid.UUID       `json:"target_id" db:"target_id"`
	TargetType string          `json:"target_type" db:"target_type"`
	Action     string          `json:"action" db:"action"`
	Reason     string          `json:"reason" db:"reason"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	TargetTypeApplication = "doctor_application"
	TargetTypeUser        = "user"
)

type AdminActionFilters struct {
	AdminID  uuid.UUID `json:"admin_id" form:"admin_id"`
	TargetID uuid.UUID `json:"target_id" form:"target_id"`
	Action   string    `json:"action" form:"action"`
	Pagination
}
