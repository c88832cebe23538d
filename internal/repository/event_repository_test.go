package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrost/clinsched-api/internal/models"
)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "assignment_id", "patient_name", "status", "comments", "date", "time", "created_at"})
}

func TestEventRepositoryAdd(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{
		AssignmentID: 3,
		PatientName:  "Larsen",
		Status:       models.EventStatusScheduled,
		Comments:     models.DefaultEventComments,
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Time:         "09:00",
	}
	require.NoError(t, repo.Add(context.Background(), event))
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDeleteByAssignmentID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("DELETE FROM events WHERE assignment_id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.DeleteByAssignmentID(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryReplaceForAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM events WHERE assignment_id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	expectEventInserts(mock, 2)
	mock.ExpectCommit()

	events := testEvents(2)
	count, err := repo.ReplaceForAssignment(context.Background(), 3, events)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	for _, e := range events {
		assert.Equal(t, int64(3), e.AssignmentID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryReplaceForAssignmentEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM events WHERE assignment_id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	count, err := repo.ReplaceForAssignment(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := eventRows().
		AddRow(1, 3, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "09:00", time.Now()).
		AddRow(2, 3, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), "09:00", time.Now())
	mock.ExpectQuery("FROM events WHERE assignment_id").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	events, err := repo.ListByAssignment(context.Background(), 3, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Larsen", events[0].PatientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByAssignmentWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)

	rows := eventRows().
		AddRow(2, 3, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), "09:00", time.Now())
	mock.ExpectQuery(`FROM events WHERE assignment_id = \$1 AND date >= \$2 AND date <= \$3`).
		WithArgs(int64(3), from, to).
		WillReturnRows(rows)

	events, err := repo.ListByAssignment(context.Background(), 3, models.EventFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByPatientWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)

	rows := eventRows().
		AddRow(5, 4, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), "13:00", time.Now())
	mock.ExpectQuery(`WHERE a\.patient_id = \$1 AND e\.date >= \$2 AND e\.date <= \$3`).
		WithArgs(int64(7), from, to).
		WillReturnRows(rows)

	events, err := repo.ListByPatient(context.Background(), 7, models.EventFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByPatient(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := eventRows().
		AddRow(1, 3, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "09:00", time.Now()).
		AddRow(5, 4, "Larsen", "Scheduled", "reason", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), "13:00", time.Now())
	mock.ExpectQuery("JOIN assignments a ON a.id = e.assignment_id").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	events, err := repo.ListByPatient(context.Background(), 7, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[1].AssignmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
