package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrost/clinsched-api/internal/dto"
	"github.com/medrost/clinsched-api/internal/models"
	appErrors "github.com/medrost/clinsched-api/pkg/errors"
)

type patientRepoStub struct {
	items  map[int64]*models.Patient
	nextID int64
}

func newPatientRepoStub() *patientRepoStub {
	return &patientRepoStub{items: make(map[int64]*models.Patient), nextID: 1}
}

func (s *patientRepoStub) Create(ctx context.Context, patient *models.Patient) error {
	patient.ID = s.nextID
	s.nextID++
	cp := *patient
	s.items[patient.ID] = &cp
	return nil
}

func (s *patientRepoStub) FindByID(ctx context.Context, id int64) (*models.Patient, error) {
	if p, ok := s.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *patientRepoStub) List(ctx context.Context) ([]models.Patient, error) {
	out := make([]models.Patient, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, *p)
	}
	return out, nil
}

func (s *patientRepoStub) Update(ctx context.Context, patient *models.Patient) error {
	if _, ok := s.items[patient.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *patient
	s.items[patient.ID] = &cp
	return nil
}

func (s *patientRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func TestPatientCreate(t *testing.T) {
	repo := newPatientRepoStub()
	svc := NewPatientService(repo, nil, nil)

	resp, err := svc.Create(context.Background(), dto.PatientRequest{FirstName: "Anna", LastName: "Larsen"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Larsen", resp.LastName)
}

func TestPatientCreateValidation(t *testing.T) {
	svc := NewPatientService(newPatientRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), dto.PatientRequest{FirstName: "Anna"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPatientGetByID(t *testing.T) {
	repo := newPatientRepoStub()
	svc := NewPatientService(repo, nil, nil)

	created, err := svc.Create(context.Background(), dto.PatientRequest{FirstName: "Anna", LastName: "Larsen"})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPatientUpdate(t *testing.T) {
	repo := newPatientRepoStub()
	svc := NewPatientService(repo, nil, nil)

	created, err := svc.Create(context.Background(), dto.PatientRequest{FirstName: "Anna", LastName: "Larsen"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, dto.PatientRequest{FirstName: "Anna", LastName: "Berg"})
	require.NoError(t, err)
	assert.Equal(t, "Berg", updated.LastName)
	assert.Equal(t, "Berg", repo.items[created.ID].LastName)

	_, err = svc.Update(context.Background(), 99, dto.PatientRequest{FirstName: "Anna", LastName: "Berg"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPatientDelete(t *testing.T) {
	repo := newPatientRepoStub()
	svc := NewPatientService(repo, nil, nil)

	created, err := svc.Create(context.Background(), dto.PatientRequest{FirstName: "Anna", LastName: "Larsen"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.items)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
