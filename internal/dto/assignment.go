package dto

// AssignmentRequest is the wire shape for creating or replacing an
// assignment. Dates are calendar days ("2006-01-02"), weeks are ISO weekday
// numbers as strings ("1".."7"), and the three slot times are "HH:MM" with
// time2/time3 optional.
type AssignmentRequest struct {
	PatientID int64    `json:"patient_id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type" validate:"required"`
	DateFrom  string   `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo    string   `json:"date_to" validate:"required,datetime=2006-01-02"`
	Dose      string   `json:"dose"`
	Weeks     []string `json:"weeks" validate:"required,min=1,dive,oneof=1 2 3 4 5 6 7"`
	Time1     *string  `json:"time1" validate:"required,datetime=15:04"`
	Time2     *string  `json:"time2" validate:"omitempty,datetime=15:04"`
	Time3     *string  `json:"time3" validate:"omitempty,datetime=15:04"`
}

// AssignmentResponse is the wire shape returned for an assignment.
type AssignmentResponse struct {
	ID        int64    `json:"id"`
	PatientID int64    `json:"patient_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Period    string   `json:"period"`
	Dose      string   `json:"dose"`
	Weeks     []string `json:"weeks"`
	Time1     *string  `json:"time1,omitempty"`
	Time2     *string  `json:"time2,omitempty"`
	Time3     *string  `json:"time3,omitempty"`
	DateFrom  string   `json:"date_from"`
	DateTo    string   `json:"date_to"`
}

// MaterializeResponse reports how many events a (re)generation produced.
type MaterializeResponse struct {
	AssignmentID  int64 `json:"assignment_id"`
	EventsCreated int   `json:"events_created"`
}
