package model

import (
	"time"
)

// Role is a closed set; anything else is rejected at the boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Home returns the portal landing path for the role.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDoctor:
		return "/doctor/profile"
	case RolePatient:
		return "/patient/home"
	}
	return "/login"
}

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// User is the identity record backing every portal account. Credentials
// live with the identity provider; the row only carries the reference.
type User struct {
	Base
	ExternalID  string     `json:"external_id" db:"external_id"`
	Email       string     `json:"email" db:"email"`
	Role        Role       `json:"role" db:"role"`
	Status      string     `json:"status" db:"status"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
}

type UserFilters struct {
	Role   Role   `json:"role" form:"role"`
	Status string `json:"status" form:"status"`
}
