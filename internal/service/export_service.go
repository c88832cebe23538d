package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medrost/clinsched-api/internal/models"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
	"github.com/medrost/clinsched-api/pkg/export"
)

type patientEventLister interface {
	ListByPatient(ctx context.Context, patientID int64, filter models.EventFilter) ([]models.Event, error)
}

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a patient's scheduled events as CSV or PDF.
type ExportService struct {
	patients patientReader
	events   patientEventLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService creates a service instance.
func NewExportService(patients patientReader, events patientEventLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		patients: patients,
		events:   events,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// PatientSchedule renders the patient's full event schedule in the requested
// format ("csv" or "pdf").
func (s *ExportService) PatientSchedule(ctx context.Context, patientID int64, format string, filter models.EventFilter) (*ExportFile, error) {
	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load patient")
	}

	events, err := s.events.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events")
	}

	table := export.Table{
		Title:   fmt.Sprintf("Schedule for %s %s", patient.FirstName, patient.LastName),
		Headers: []string{"Date", "Time", "Status", "Comments"},
	}
	for _, e := range events {
		table.Rows = append(table.Rows, []string{
			e.Date.Format("2006-01-02"), e.Time, e.Status, e.Comments,
		})
	}

	switch strings.ToLower(format) {
	case "csv":
		data, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%d.csv", patientID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%d.pdf", patientID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
