package dto

// EventResponse is the wire shape for one scheduled occurrence. Date is the
// ISO calendar day ("2006-01-02").
type EventResponse struct {
	ID           int64  `json:"id"`
	AssignmentID int64  `json:"assignment_id"`
	PatientName  string `json:"patient_name"`
	Status       string `json:"status"`
	Comments     string `json:"comments"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}
