package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
)

type patientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, id int64) (*models.Patient, error)
	List(ctx context.Context) ([]models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id int64) error
}

// PatientService handles patient CRUD.
type PatientService struct {
	patients  patientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPatientService creates a service instance.
func NewPatientService(patients patientRepository, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{patients: patients, validator: validate, logger: logger}
}

// Create registers a new patient.
func (s *PatientService) Create(ctx context.Context, req dto.PatientRequest) (*dto.PatientResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid patient payload")
	}
	patient := &models.Patient{FirstName: req.FirstName, LastName: req.LastName}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create patient")
	}
	s.logger.Info("patient created", zap.Int64("patient_id", patient.ID))
	return patientToResponse(patient), nil
}

// List returns all patients.
func (s *PatientService) List(ctx context.Context) ([]dto.PatientResponse, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list patients")
	}
	out := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		out = append(out, *patientToResponse(&patients[i]))
	}
	return out, nil
}

// GetByID returns the patient in its wire shape.
func (s *PatientService) GetByID(ctx context.Context, id int64) (*dto.PatientResponse, error) {
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}
	return patientToResponse(patient), nil
}

// Update replaces the patient's name fields.
func (s *PatientService) Update(ctx context.Context, id int64, req dto.PatientRequest) (*dto.PatientResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid patient payload")
	}
	patient := &models.Patient{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := s.patients.Update(ctx, patient); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update patient")
	}
	return patientToResponse(patient), nil
}

// Delete removes the patient. Assignments keep their foreign key constraint,
// so deleting a patient that still has assignments fails at the store.
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete patient")
	}
	s.logger.Info("patient deleted", zap.Int64("patient_id", id))
	return nil
}

func patientToResponse(p *models.Patient) *dto.PatientResponse {
	return &dto.PatientResponse{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
}
