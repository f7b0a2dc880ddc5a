package model

import (
	"time"

	"github.com/google/uuid"
)

// Document kinds accepted during onboarding.
const (
	DocumentKindRegistration = "registration_certificate"
	DocumentKindInsurance    = "indemnity_insurance"
	DocumentKindIdentity     = "photo_id"
	DocumentKindCV           = "cv"
)

// Document records upload metadata only; the bytes live in object storage
// under ObjectKey.
type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DoctorID    uuid.UUID `json:"doctor_id" db:"doctor_id"`
	Kind        string    `json:"kind" db:"kind"`
	FileName    string    `json:"file_name" db:"file_name"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type CreateDocumentRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=registration_certificate indemnity_insurance photo_id cv"`
	FileName    string `json:"file_name" binding:"required"`
	ObjectKey   string `json:"object_key" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,min=1"`
}
