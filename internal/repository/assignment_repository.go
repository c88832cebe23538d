package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medrost/clinsched-api/internal/models"
)

// AssignmentRepository persists assignments together with their derived
// event sets. Lifecycle writes (create, update, delete) run inside a single
// transaction so an assignment is never visible with a half-replaced event
// set.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns the assignment or sql.ErrNoRows.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT id, patient_id, name, type, period, dose, time_pattern,
		time1, time2, time3, date_from, date_to, created_at, updated_at
		FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// ListByPatient returns a patient's assignments, newest range first.
func (r *AssignmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Assignment, error) {
	const query = `SELECT id, patient_id, name, type, period, dose, time_pattern,
		time1, time2, time3, date_from, date_to, created_at, updated_at
		FROM assignments WHERE patient_id = $1
		ORDER BY date_from DESC, id ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, patientID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateWithEvents inserts the assignment and its full event expansion in one
// transaction. The generated assignment id is filled into the assignment and
// stamped onto every event before insert.
func (r *AssignmentRepository) CreateWithEvents(ctx context.Context, assignment *models.Assignment, events []models.Event) (err error) {
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO assignments
		(patient_id, name, type, period, dose, time_pattern, time1, time2, time3, date_from, date_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err = tx.QueryRowxContext(ctx, query,
		assignment.PatientID, assignment.Name, assignment.Type, assignment.Period,
		assignment.Dose, assignment.TimePattern, assignment.Time1, assignment.Time2, assignment.Time3,
		assignment.DateFrom, assignment.DateTo, assignment.CreatedAt, assignment.UpdatedAt,
	).Scan(&assignment.ID); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	for i := range events {
		events[i].AssignmentID = assignment.ID
	}
	if err = insertEvents(ctx, tx, events); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment: %w", err)
	}
	return nil
}

// UpdateWithEvents replaces the assignment's fields, purges its old events
// and inserts the new expansion, all in one transaction. Returns
// sql.ErrNoRows when the assignment does not exist.
func (r *AssignmentRepository) UpdateWithEvents(ctx context.Context, assignment *models.Assignment, events []models.Event) (err error) {
	assignment.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE assignments SET
		name = $1, type = $2, period = $3, dose = $4, time_pattern = $5,
		time1 = $6, time2 = $7, time3 = $8, date_from = $9, date_to = $10, updated_at = $11
		WHERE id = $12`
	result, err := tx.ExecContext(ctx, query,
		assignment.Name, assignment.Type, assignment.Period, assignment.Dose, assignment.TimePattern,
		assignment.Time1, assignment.Time2, assignment.Time3, assignment.DateFrom, assignment.DateTo,
		assignment.UpdatedAt, assignment.ID,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = deleteEventsByAssignment(ctx, tx, assignment.ID); err != nil {
		return err
	}
	for i := range events {
		events[i].AssignmentID = assignment.ID
	}
	if err = insertEvents(ctx, tx, events); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update assignment: %w", err)
	}
	return nil
}

// DeleteWithEvents removes the assignment's events and then the assignment
// itself in one transaction. Returns sql.ErrNoRows when the assignment does
// not exist.
func (r *AssignmentRepository) DeleteWithEvents(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteEventsByAssignment(ctx, tx, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assignment: %w", err)
	}
	return nil
}
