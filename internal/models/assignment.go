package models

import "time"

// Assignment is a prescribed recurring activity for a patient: a date range,
// a weekday pattern, and up to three daily time slots. Updates replace all
// fields wholesale, and every create or update regenerates the assignment's
// events.
type Assignment struct {
	ID        int64  `db:"id" json:"id"`
	PatientID int64  `db:"patient_id" json:"patient_id"`
	Name      string `db:"name" json:"name"`
	Type      string `db:"type" json:"type"`
	// Period is the display string "dateFrom - dateTo", derived at write time.
	Period string `db:"period" json:"period"`
	Dose   string `db:"dose" json:"dose"`
	// TimePattern stores the weekday set as space-joined ISO weekday numbers
	// ("1".."7"), the encoding the legacy store used.
	TimePattern string    `db:"time_pattern" json:"time_pattern"`
	Time1       *string   `db:"time1" json:"time1,omitempty"`
	Time2       *string   `db:"time2" json:"time2,omitempty"`
	Time3       *string   `db:"time3" json:"time3,omitempty"`
	DateFrom    time.Time `db:"date_from" json:"date_from"`
	DateTo      time.Time `db:"date_to" json:"date_to"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlots returns the non-null slots in slot order (time1, time2, time3).
func (a *Assignment) TimeSlots() []string {
	slots := make([]string, 0, 3)
	for _, t := range []*string{a.Time1, a.Time2, a.Time3} {
		if t != nil && *t != "" {
			slots = append(slots, *t)
		}
	}
	return slots
}
