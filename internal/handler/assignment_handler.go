package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrost/clinsched-api/internal/dto"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
	"github.com/medrost/clinsched-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, req dto.AssignmentRequest) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id int64, req dto.AssignmentRequest) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*dto.AssignmentResponse, error)
	ListByPatient(ctx context.Context, patientID int64) ([]dto.AssignmentResponse, error)
	GetPatientID(ctx context.Context, assignmentID int64) (int64, error)
}

// AssignmentHandler manages assignment lifecycle endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Create an assignment and generate its events
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Get godoc
// @Summary Get an assignment
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Update godoc
// @Summary Replace an assignment and regenerate its events
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body dto.AssignmentRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete an assignment and its events
// @Tags Assignments
// @Param id path int true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByPatient godoc
// @Summary List a patient's assignments
// @Tags Assignments
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Envelope
// @Router /patients/{id}/assignments [get]
func (h *AssignmentHandler) ListByPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignments, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// GetPatientID godoc
// @Summary Resolve an assignment's owning patient id
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/patient [get]
func (h *AssignmentHandler) GetPatientID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	patientID, err := h.service.GetPatientID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"patient_id": patientID}, nil)
}
