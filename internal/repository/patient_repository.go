package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medrost/clinsched-api/internal/models"
)

// PatientRepository persists patients.
type PatientRepository struct {
	db *sqlx.DB
}

// NewPatientRepository constructs the repository.
func NewPatientRepository(db *sqlx.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a new patient and fills in the generated id.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	const query = `INSERT INTO patients (first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, patient.FirstName, patient.LastName, patient.CreatedAt, patient.UpdatedAt).Scan(&patient.ID); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// FindByID returns the patient or sql.ErrNoRows.
func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*models.Patient, error) {
	const query = `SELECT id, first_name, last_name, created_at, updated_at FROM patients WHERE id = $1`
	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &patient, nil
}

// List returns all patients ordered by last name.
func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	const query = `SELECT id, first_name, last_name, created_at, updated_at FROM patients
		ORDER BY last_name ASC, first_name ASC`
	var patients []models.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// Update replaces the patient's name fields.
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	patient.UpdatedAt = time.Now().UTC()
	const query = `UPDATE patients SET first_name = $1, last_name = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, patient.FirstName, patient.LastName, patient.UpdatedAt, patient.ID)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated patient rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the patient row.
func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM patients WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted patient rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
