package dto

// PatientRequest is the wire shape for creating or updating a patient.
type PatientRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// PatientResponse is the wire shape returned for a patient.
type PatientResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
