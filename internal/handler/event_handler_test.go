package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	"github.com/medrost/clinsched-api/internal/service"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
)

type eventServiceMock struct {
	materializeCount int
	materializeErr   error
	byAssignResp     []dto.EventResponse
	byAssignErr      error
	byPatResp        []dto.EventResponse
	byPatErr         error

	lastID     int64
	lastFilter models.EventFilter
}

func (m *eventServiceMock) Materialize(ctx context.Context, assignmentID int64) (int, error) {
	m.lastID = assignmentID
	return m.materializeCount, m.materializeErr
}

func (m *eventServiceMock) ListByAssignment(ctx context.Context, assignmentID int64, filter models.EventFilter) ([]dto.EventResponse, error) {
	m.lastID = assignmentID
	m.lastFilter = filter
	return m.byAssignResp, m.byAssignErr
}

func (m *eventServiceMock) ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]dto.EventResponse, error) {
	m.lastID = patientID
	m.lastFilter = filter
	return m.byPatResp, m.byPatErr
}

type exportServiceMock struct {
	file       *service.ExportFile
	err        error
	lastFormat string
}

func (m *exportServiceMock) PatientSchedule(ctx context.Context, patientID int64, format string, filter models.EventFilter) (*service.ExportFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

func TestEventHandlerListByAssignment(t *testing.T) {
	mockSvc := &eventServiceMock{byAssignResp: []dto.EventResponse{{ID: 1, Date: "2024-01-01", Time: "09:00"}}}
	handler := NewEventHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/assignments/3/events", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	handler.ListByAssignment(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), mockSvc.lastID)
	assert.Contains(t, w.Body.String(), "2024-01-01")
}

func TestEventHandlerListByAssignmentWindow(t *testing.T) {
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/assignments/3/events?from=2024-01-02&to=2024-01-09", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	handler.ListByAssignment(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.From)
	require.NotNil(t, mockSvc.lastFilter.To)
	assert.Equal(t, "2024-01-02", mockSvc.lastFilter.From.Format("2006-01-02"))
	assert.Equal(t, "2024-01-09", mockSvc.lastFilter.To.Format("2006-01-02"))
}

func TestEventHandlerListByAssignmentBadDate(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/assignments/3/events?from=01.01.2024", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	handler.ListByAssignment(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerListByPatient(t *testing.T) {
	mockSvc := &eventServiceMock{byPatResp: []dto.EventResponse{{ID: 1}, {ID: 2}}}
	handler := NewEventHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/patients/7/events", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ListByPatient(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), mockSvc.lastID)
}

func TestEventHandlerRegenerate(t *testing.T) {
	mockSvc := &eventServiceMock{materializeCount: 4}
	handler := NewEventHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPost, "/assignments/3/events/regenerate", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	handler.Regenerate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"events_created":4`)
}

func TestEventHandlerRegenerateNotFound(t *testing.T) {
	mockSvc := &eventServiceMock{materializeErr: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}
	handler := NewEventHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPost, "/assignments/99/events/regenerate", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	handler.Regenerate(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerExportSchedule(t *testing.T) {
	mockExport := &exportServiceMock{file: &service.ExportFile{
		Filename:    "schedule-7.csv",
		ContentType: "text/csv",
		Data:        []byte("Date,Time,Status,Comments\n"),
	}}
	handler := NewEventHandler(&eventServiceMock{}, mockExport)

	c, w := testContext(t, http.MethodGet, "/patients/7/schedule/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ExportSchedule(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockExport.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule-7.csv")
}

func TestEventHandlerExportScheduleDisabled(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/patients/7/schedule/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ExportSchedule(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
