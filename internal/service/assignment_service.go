package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	"github.com/medrost/clinsched-api/internal/recurrence"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Assignment, error)
	CreateWithEvents(ctx context.Context, assignment *models.Assignment, events []models.Event) error
	UpdateWithEvents(ctx context.Context, assignment *models.Assignment, events []models.Event) error
	DeleteWithEvents(ctx context.Context, id int64) error
}

type eventBuilder interface {
	BuildEvents(assignment *models.Assignment, patient *models.Patient) []models.Event
}

// AssignmentService manages the assignment lifecycle. Each transition
// (create, update, delete) persists the assignment and its derived event set
// as one atomic unit, and transitions on the same assignment id are
// serialized through a per-identity lock.
type AssignmentService struct {
	assignments assignmentRepository
	patients    patientReader
	builder     eventBuilder
	cache       *CacheService
	locks       *IdentityLocks
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService creates a service instance.
func NewAssignmentService(
	assignments assignmentRepository,
	patients patientReader,
	builder eventBuilder,
	cache *CacheService,
	locks *IdentityLocks,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if locks == nil {
		locks = NewIdentityLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		patients:    patients,
		builder:     builder,
		cache:       cache,
		locks:       locks,
		validator:   validate,
		logger:      logger,
	}
}

// Create persists a new assignment and its full event expansion.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentRequest) (*dto.AssignmentResponse, error) {
	assignment, err := s.assignmentFromRequest(req)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.FindByID(ctx, req.PatientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}

	events := s.builder.BuildEvents(assignment, patient)
	if err := s.assignments.CreateWithEvents(ctx, assignment, events); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create assignment")
	}

	s.invalidate(ctx, assignment.ID, assignment.PatientID)
	s.logger.Info("assignment created",
		zap.Int64("assignment_id", assignment.ID),
		zap.Int64("patient_id", assignment.PatientID),
		zap.Int("events", len(events)),
	)
	return assignmentToResponse(assignment), nil
}

// Update replaces every field of the assignment and regenerates its events.
// The owning patient cannot change; the request's patient id is ignored in
// favor of the stored one.
func (s *AssignmentService) Update(ctx context.Context, id int64, req dto.AssignmentRequest) (*dto.AssignmentResponse, error) {
	replacement, err := s.assignmentFromRequest(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}
	replacement.ID = existing.ID
	replacement.PatientID = existing.PatientID
	replacement.CreatedAt = existing.CreatedAt

	patient, err := s.patients.FindByID(ctx, existing.PatientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}

	events := s.builder.BuildEvents(replacement, patient)
	if err := s.assignments.UpdateWithEvents(ctx, replacement, events); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update assignment")
	}

	s.invalidate(ctx, replacement.ID, replacement.PatientID)
	s.logger.Info("assignment updated",
		zap.Int64("assignment_id", replacement.ID),
		zap.Int("events", len(events)),
	)
	return assignmentToResponse(replacement), nil
}

// Delete removes the assignment and every event it generated.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}

	if err := s.assignments.DeleteWithEvents(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete assignment")
	}

	s.invalidate(ctx, id, existing.PatientID)
	s.logger.Info("assignment deleted", zap.Int64("assignment_id", id))
	return nil
}

// GetByID returns the assignment in its wire shape.
func (s *AssignmentService) GetByID(ctx context.Context, id int64) (*dto.AssignmentResponse, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}
	return assignmentToResponse(assignment), nil
}

// ListByPatient returns the patient's assignments.
func (s *AssignmentService) ListByPatient(ctx context.Context, patientID int64) ([]dto.AssignmentResponse, error) {
	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}
	assignments, err := s.assignments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list assignments")
	}
	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		out = append(out, *assignmentToResponse(&assignments[i]))
	}
	return out, nil
}

// GetPatientID dereferences assignment -> patient and returns the patient's
// identity.
func (s *AssignmentService) GetPatientID(ctx context.Context, assignmentID int64) (int64, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}
	return assignment.PatientID, nil
}

func (s *AssignmentService) invalidate(ctx context.Context, assignmentID, patientID int64) {
	s.cache.Invalidate(ctx, assignmentEventsKey(assignmentID))
	s.cache.Invalidate(ctx, patientEventsKey(patientID))
}

// assignmentFromRequest validates the payload and converts the wire shape to
// the stored one: weekday tokens collapse into the space-joined pattern, the
// display period is derived from the date range.
func (s *AssignmentService) assignmentFromRequest(req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	dateFrom, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date_from")
	}
	dateTo, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date_to")
	}
	if dateTo.Before(dateFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date_to must not be before date_from")
	}

	return &models.Assignment{
		PatientID:   req.PatientID,
		Name:        req.Name,
		Type:        req.Type,
		Period:      fmt.Sprintf("%s - %s", req.DateFrom, req.DateTo),
		Dose:        req.Dose,
		TimePattern: recurrence.ParseWeekdaySet(req.Weeks).EncodePattern(),
		Time1:       normalizeSlot(req.Time1),
		Time2:       normalizeSlot(req.Time2),
		Time3:       normalizeSlot(req.Time3),
		DateFrom:    dateFrom,
		DateTo:      dateTo,
	}, nil
}

// normalizeSlot re-formats a validated slot time to the zero-padded canonical
// form, so stored values sort chronologically under lexicographic ORDER BY.
func normalizeSlot(t *string) *string {
	if t == nil {
		return nil
	}
	parsed, err := time.Parse(slotLayout, *t)
	if err != nil {
		return t
	}
	canonical := parsed.Format(slotLayout)
	return &canonical
}

func assignmentToResponse(a *models.Assignment) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		Name:      a.Name,
		Type:      a.Type,
		Period:    a.Period,
		Dose:      a.Dose,
		Weeks:     recurrence.DecodePattern(a.TimePattern).Tokens(),
		Time1:     a.Time1,
		Time2:     a.Time2,
		Time3:     a.Time3,
		DateFrom:  a.DateFrom.Format(dateLayout),
		DateTo:    a.DateTo.Format(dateLayout),
	}
}
