package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	"github.com/medrost/clinsched-api/internal/service"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
	"github.com/medrost/clinsched-api/pkg/response"
)

type eventService interface {
	Materialize(ctx context.Context, assignmentID int64) (int, error)
	ListByAssignment(ctx context.Context, assignmentID int64, filter models.EventFilter) ([]dto.EventResponse, error)
	ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]dto.EventResponse, error)
}

type exportService interface {
	PatientSchedule(ctx context.Context, patientID int64, format string, filter models.EventFilter) (*service.ExportFile, error)
}

// EventHandler serves event listings, regeneration and schedule export.
type EventHandler struct {
	events  eventService
	exports exportService
}

// NewEventHandler constructs handler. The export service may be nil when the
// export feature is disabled.
func NewEventHandler(events eventService, exports exportService) *EventHandler {
	return &EventHandler{events: events, exports: exports}
}

// ListByAssignment godoc
// @Summary List an assignment's events
// @Tags Events
// @Produce json
// @Param id path int true "Assignment ID"
// @Param from query string false "Start date (inclusive, 2006-01-02)"
// @Param to query string false "End date (inclusive, 2006-01-02)"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/events [get]
func (h *EventHandler) ListByAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := eventFilter(c)
	if !ok {
		return
	}
	events, err := h.events.ListByAssignment(c.Request.Context(), id, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// ListByPatient godoc
// @Summary List a patient's events
// @Tags Events
// @Produce json
// @Param id path int true "Patient ID"
// @Param from query string false "Start date (inclusive, 2006-01-02)"
// @Param to query string false "End date (inclusive, 2006-01-02)"
// @Success 200 {object} response.Envelope
// @Router /patients/{id}/events [get]
func (h *EventHandler) ListByPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := eventFilter(c)
	if !ok {
		return
	}
	events, err := h.events.ListByPatient(c.Request.Context(), id, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Regenerate godoc
// @Summary Re-materialize an assignment's events
// @Tags Events
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/events/regenerate [post]
func (h *EventHandler) Regenerate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	count, err := h.events.Materialize(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MaterializeResponse{AssignmentID: id, EventsCreated: count}, nil)
}

// ExportSchedule godoc
// @Summary Export a patient's schedule as CSV or PDF
// @Tags Events
// @Produce octet-stream
// @Param id path int true "Patient ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /patients/{id}/schedule/export [get]
func (h *EventHandler) ExportSchedule(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := eventFilter(c)
	if !ok {
		return
	}
	file, err := h.exports.PatientSchedule(c.Request.Context(), id, c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func eventFilter(c *gin.Context) (models.EventFilter, bool) {
	var filter models.EventFilter
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
			return filter, false
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
			return filter, false
		}
		filter.To = &t
	}
	return filter, true
}
