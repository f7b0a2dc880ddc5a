package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

type documentRepository struct {
	BaseRepository
}

func NewDocumentRepository(base BaseRepository) repository.DocumentRepository {
	return &documentRepository{base}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO documents (
			id, doctor_id, kind, file_name, object_key, content_type, size_bytes, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.DoctorID,
		doc.Kind,
		doc.FileName,
		doc.ObjectKey,
		doc.ContentType,
		doc.SizeBytes,
		doc.UploadedAt,
	); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Document, error) {
	query := `
		SELECT * FROM documents
		WHERE doctor_id = $1
		ORDER BY uploaded_at DESC
	`
	docs := []*model.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
