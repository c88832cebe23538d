package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrost/clinsched-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPatientRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectQuery("INSERT INTO patients").
		WithArgs("Anna", "Larsen", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	patient := &models.Patient{FirstName: "Anna", LastName: "Larsen"}
	require.NoError(t, repo.Create(context.Background(), patient))
	assert.Equal(t, int64(7), patient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow(7, "Anna", "Larsen", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, first_name, last_name, created_at, updated_at FROM patients WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	patient, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Larsen", patient.LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectQuery("SELECT id, first_name, last_name, created_at, updated_at FROM patients WHERE id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow(2, "Birk", "Berg", time.Now(), time.Now()).
		AddRow(1, "Anna", "Larsen", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, first_name, last_name, created_at, updated_at FROM patients").
		WillReturnRows(rows)

	patients, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectExec("UPDATE patients SET").
		WithArgs("Anna", "Berg", sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Patient{ID: 99, FirstName: "Anna", LastName: "Berg"})
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectExec("DELETE FROM patients WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
