// Package recurrence expands an assignment's date range, weekday pattern and
// daily time slots into concrete (date, time) occurrences. It is a pure
// package: no storage, no logging, no clocks.
package recurrence

import "time"

// Occurrence is a single scheduled (date, time) pair. Date carries only the
// calendar day (UTC midnight); Time is the slot value as stored ("HH:MM").
type Occurrence struct {
	Date time.Time
	Time string
}

// ISOWeekday returns the ISO-8601 weekday number for d: 1 (Monday) through
// 7 (Sunday).
func ISOWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Expand enumerates every occurrence for the range [from, to), in ascending
// date order with slots emitted in the given order within a date.
//
// The upper bound is exclusive: the end date itself never produces
// occurrences. That matches the behavior of the system this store was
// migrated from, and stored schedules depend on it; callers that want an
// inclusive range must extend the end date themselves.
//
// Degenerate inputs yield an empty result rather than an error: an empty
// weekday set, zero slots, from == to, or to before from all expand to
// nothing. Validation of user input belongs to the API boundary.
func Expand(from, to time.Time, days WeekdaySet, slots []string) []Occurrence {
	if len(days) == 0 || len(slots) == 0 {
		return nil
	}

	from = truncateToDay(from)
	to = truncateToDay(to)

	var out []Occurrence
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if !days.Contains(ISOWeekday(d)) {
			continue
		}
		for _, slot := range slots {
			out = append(out, Occurrence{Date: d, Time: slot})
		}
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
