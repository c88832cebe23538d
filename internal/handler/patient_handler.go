package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medrost/clinsched-api/internal/dto"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
	"github.com/medrost/clinsched-api/pkg/response"
)

type patientService interface {
	Create(ctx context.Context, req dto.PatientRequest) (*dto.PatientResponse, error)
	List(ctx context.Context) ([]dto.PatientResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.PatientResponse, error)
	Update(ctx context.Context, id int64, req dto.PatientRequest) (*dto.PatientResponse, error)
	Delete(ctx context.Context, id int64) error
}

// PatientHandler manages patient endpoints.
type PatientHandler struct {
	service patientService
}

// NewPatientHandler constructs handler.
func NewPatientHandler(svc patientService) *PatientHandler {
	return &PatientHandler{service: svc}
}

// Create godoc
// @Summary Register a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param payload body dto.PatientRequest true "Patient"
// @Success 201 {object} response.Envelope
// @Router /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var req dto.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	patient, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, patient)
}

// List godoc
// @Summary List patients
// @Tags Patients
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patients, nil)
}

// Get godoc
// @Summary Get a patient
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Envelope
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	patient, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patient, nil)
}

// Update godoc
// @Summary Update a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param payload body dto.PatientRequest true "Patient"
// @Success 200 {object} response.Envelope
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	patient, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patient, nil)
}

// Delete godoc
// @Summary Delete a patient
// @Tags Patients
// @Param id path int true "Patient ID"
// @Success 204
// @Router /patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
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

// pathID parses an integer path parameter, responding with a validation
// error on malformed input.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}
