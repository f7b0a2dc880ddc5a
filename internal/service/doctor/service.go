package doctor

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

// Service is the doctor-facing surface: the doctor's own application profile
// and onboarding document metadata.
type Service struct {
	apps repository.ApplicationRepository
	docs repository.DocumentRepository
}

func NewService(apps repository.ApplicationRepository, docs repository.DocumentRepository) *Service {
	return &Service{apps: apps, docs: docs}
}

// GetProfile returns the application belonging to the logged-in doctor.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.DoctorApplication, error) {
	return s.apps.GetByUserID(ctx, userID)
}

// UpdateProfile applies partial edits to the doctor's own application. Status
// and registration number are not editable here.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateApplicationRequest) (*model.DoctorApplication, error) {
	app, err := s.apps.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(app, req)

	if err := s.apps.UpdateProfile(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func applyProfileUpdate(app *model.DoctorApplication, req *model.UpdateApplicationRequest) {
	if req.FirstName != nil {
		app.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		app.LastName = *req.LastName
	}
	if req.Phone != nil {
		app.Phone = *req.Phone
	}
	if req.AddressLine != nil {
		app.AddressLine = *req.AddressLine
	}
	if req.Suburb != nil {
		app.Suburb = *req.Suburb
	}
	if req.State != nil {
		app.State = *req.State
	}
	if req.Postcode != nil {
		app.Postcode = *req.Postcode
	}
	if req.Specialty != nil {
		app.Specialty = *req.Specialty
	}
	if req.YearsExperience != nil {
		app.YearsExperience = *req.YearsExperience
	}
	if req.Qualifications != nil {
		app.Qualifications = pq.StringArray(req.Qualifications)
	}
	if req.Languages != nil {
		app.Languages = pq.StringArray(req.Languages)
	}
	if req.ConsultationTypes != nil {
		app.ConsultationTypes = pq.StringArray(req.ConsultationTypes)
	}
}

// AddDocument records upload metadata against the doctor's application.
func (s *Service) AddDocument(ctx context.Context, userID uuid.UUID, req *model.CreateDocumentRequest) (*model.Document, error) {
	app, err := s.apps.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		DoctorID:    app.ID,
		Kind:        req.Kind,
		FileName:    req.FileName,
		ObjectKey:   req.ObjectKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, userID uuid.UUID) ([]*model.Document, error) {
	app, err := s.apps.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.docs.ListByDoctor(ctx, app.ID)
}
