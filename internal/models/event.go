package models

import "time"

// Event statuses. Every generated event starts out Scheduled.
const (
	EventStatusScheduled = "Scheduled"
)

// DefaultEventComments is the placeholder reason attached to generated events.
const DefaultEventComments = "reason"

// Event is one concrete occurrence derived from an assignment. Events are
// entirely derived data: they are created in bulk by materialization and
// purged in bulk whenever the owning assignment changes or is deleted.
type Event struct {
	ID           int64 `db:"id" json:"id"`
	AssignmentID int64 `db:"assignment_id" json:"assignment_id"`
	// PatientName is the patient's last name, denormalized for display lists.
	PatientName string    `db:"patient_name" json:"patient_name"`
	Status      string    `db:"status" json:"status"`
	Comments    string    `db:"comments" json:"comments"`
	Date        time.Time `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EventFilter narrows event listings to a date window. Nil bounds are open.
type EventFilter struct {
	From *time.Time
	To   *time.Time
}
