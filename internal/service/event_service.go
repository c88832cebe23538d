package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	"github.com/medrost/clinsched-api/internal/recurrence"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
)

type assignmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
}

type patientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Patient, error)
}

type eventRepository interface {
	ReplaceForAssignment(ctx context.Context, assignmentID int64, events []models.Event) (int, error)
	ListByAssignment(ctx context.Context, assignmentID int64, filter models.EventFilter) ([]models.Event, error)
	ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]models.Event, error)
}

// EventService materializes assignments into persisted events and serves
// event listings. An assignment's event set is always exactly the expansion
// of its current parameters.
type EventService struct {
	assignments assignmentReader
	patients    patientReader
	events      eventRepository
	cache       *CacheService
	metrics     *MetricsService
	locks       *IdentityLocks
	logger      *zap.Logger
}

// NewEventService creates the materializer.
func NewEventService(
	assignments assignmentReader,
	patients patientReader,
	events eventRepository,
	cache *CacheService,
	metrics *MetricsService,
	locks *IdentityLocks,
	logger *zap.Logger,
) *EventService {
	if locks == nil {
		locks = NewIdentityLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		assignments: assignments,
		patients:    patients,
		events:      events,
		cache:       cache,
		metrics:     metrics,
		locks:       locks,
		logger:      logger,
	}
}

// BuildEvents assembles the event rows for the assignment's current
// parameters. Pure: the patient is passed in so the lookup happens once per
// materialization, not once per event.
func (s *EventService) BuildEvents(assignment *models.Assignment, patient *models.Patient) []models.Event {
	occurrences := recurrence.Expand(
		assignment.DateFrom,
		assignment.DateTo,
		recurrence.DecodePattern(assignment.TimePattern),
		assignment.TimeSlots(),
	)

	events := make([]models.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, models.Event{
			AssignmentID: assignment.ID,
			PatientName:  patient.LastName,
			Status:       models.EventStatusScheduled,
			Comments:     models.DefaultEventComments,
			Date:         occ.Date,
			Time:         occ.Time,
		})
	}
	return events
}

// Materialize regenerates the assignment's event set from its current
// parameters and returns the number of events created. The replace runs in
// one transaction, so a retry after any mid-flight failure is safe and
// idempotent.
func (s *EventService) Materialize(ctx context.Context, assignmentID int64) (int, error) {
	unlock := s.locks.Lock(assignmentID)
	defer unlock()

	start := time.Now()

	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}
	patient, err := s.patients.FindByID(ctx, assignment.PatientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}

	events := s.BuildEvents(assignment, patient)
	count, err := s.events.ReplaceForAssignment(ctx, assignmentID, events)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist events")
	}

	s.metrics.ObserveMaterialization(count, time.Since(start))
	s.invalidateCaches(ctx, assignmentID, assignment.PatientID)
	s.logger.Info("events materialized",
		zap.Int64("assignment_id", assignmentID),
		zap.Int("events", count),
	)
	return count, nil
}

// ListByAssignment returns the assignment's events in chronological order.
func (s *EventService) ListByAssignment(ctx context.Context, assignmentID int64, filter models.EventFilter) ([]dto.EventResponse, error) {
	if _, err := s.assignments.FindByID(ctx, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}

	key := assignmentEventsKey(assignmentID)
	cacheable := filter.From == nil && filter.To == nil
	if cacheable {
		var cached []dto.EventResponse
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	events, err := s.events.ListByAssignment(ctx, assignmentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}
	resp := toEventResponses(events)
	if cacheable {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

// ListByPatient returns every event across the patient's assignments in
// chronological order.
func (s *EventService) ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]dto.EventResponse, error) {
	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}

	key := patientEventsKey(patientID)
	cacheable := filter.From == nil && filter.To == nil
	if cacheable {
		var cached []dto.EventResponse
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	events, err := s.events.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}
	resp := toEventResponses(events)
	if cacheable {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

func (s *EventService) invalidateCaches(ctx context.Context, assignmentID, patientID int64) {
	s.cache.Invalidate(ctx, assignmentEventsKey(assignmentID))
	s.cache.Invalidate(ctx, patientEventsKey(patientID))
}

func assignmentEventsKey(assignmentID int64) string {
	return fmt.Sprintf("events:assignment:%d", assignmentID)
}

func patientEventsKey(patientID int64) string {
	return fmt.Sprintf("events:patient:%d", patientID)
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventResponse{
			ID:           e.ID,
			AssignmentID: e.AssignmentID,
			PatientName:  e.PatientName,
			Status:       e.Status,
			Comments:     e.Comments,
			Date:         e.Date.Format("2006-01-02"),
			Time:         e.Time,
		})
	}
	return out
}
