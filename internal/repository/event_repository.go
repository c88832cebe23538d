package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medrost/clinsched-api/internal/models"
)

// EventRepository persists generated events. Events are derived data: rows
// are only ever created in bulk from an assignment's expansion and deleted in
// bulk by assignment id.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Add inserts a single event.
func (r *EventRepository) Add(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (assignment_id, patient_name, status, comments, date, time, created_at)
		VALUES (:assignment_id, :patient_name, :status, :comments, :date, :time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	return nil
}

// DeleteByAssignmentID purges every event generated by the assignment.
func (r *EventRepository) DeleteByAssignmentID(ctx context.Context, assignmentID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE assignment_id = $1`, assignmentID); err != nil {
		return fmt.Errorf("delete events by assignment: %w", err)
	}
	return nil
}

// ReplaceForAssignment swaps the assignment's event set for the given one in
// a single transaction and returns the number of inserted rows. Used by
// retryable re-materialization; the lifecycle write paths replace events
// inside their own transactions.
func (r *EventRepository) ReplaceForAssignment(ctx context.Context, assignmentID int64, events []models.Event) (count int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace events: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteEventsByAssignment(ctx, tx, assignmentID); err != nil {
		return 0, err
	}
	for i := range events {
		events[i].AssignmentID = assignmentID
	}
	if err = insertEvents(ctx, tx, events); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace events: %w", err)
	}
	return len(events), nil
}

// ListByAssignment returns the assignment's events in chronological order.
func (r *EventRepository) ListByAssignment(ctx context.Context, assignmentID int64, filter models.EventFilter) ([]models.Event, error) {
	query := `SELECT id, assignment_id, patient_name, status, comments, date, time, created_at
		FROM events WHERE assignment_id = $1`
	args := []interface{}{assignmentID}
	query, args = appendDateWindow(query, args, filter, "date")
	query += ` ORDER BY date ASC, time ASC, id ASC`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events by assignment: %w", err)
	}
	return events, nil
}

// ListByPatient returns every event across the patient's assignments in
// chronological order.
func (r *EventRepository) ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]models.Event, error) {
	query := `SELECT e.id, e.assignment_id, e.patient_name, e.status, e.comments, e.date, e.time, e.created_at
		FROM events e
		JOIN assignments a ON a.id = e.assignment_id
		WHERE a.patient_id = $1`
	args := []interface{}{patientID}
	query, args = appendDateWindow(query, args, filter, "e.date")
	query += ` ORDER BY e.date ASC, e.time ASC, e.id ASC`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events by patient: %w", err)
	}
	return events, nil
}

// appendDateWindow narrows the query to the filter's date range. The caller
// names the date column since the patient listing aliases the events table.
func appendDateWindow(query string, args []interface{}, filter models.EventFilter, column string) (string, []interface{}) {
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND %s <= $%d", column, len(args))
	}
	return query, args
}

// insertEvents bulk-inserts events inside an existing transaction.
func insertEvents(ctx context.Context, tx *sqlx.Tx, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now().UTC()
	const query = `INSERT INTO events (assignment_id, patient_name, status, comments, date, time, created_at)
		VALUES (:assignment_id, :patient_name, :status, :comments, :date, :time, :created_at)`
	for i := range events {
		if events[i].CreatedAt.IsZero() {
			events[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, &events[i]); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

// deleteEventsByAssignment purges an assignment's events inside an existing
// transaction.
func deleteEventsByAssignment(ctx context.Context, tx *sqlx.Tx, assignmentID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE assignment_id = $1`, assignmentID); err != nil {
		return fmt.Errorf("delete events by assignment: %w", err)
	}
	return nil
}
