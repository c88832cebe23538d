package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandMondayWednesdayWindow(t *testing.T) {
	// 2024-01-01 is a Monday. The end bound is exclusive, so 01-15 (also a
	// Monday) must not appear.
	got := Expand(day(2024, time.January, 1), day(2024, time.January, 15), NewWeekdaySet(1, 3), []string{"09:00"})

	want := []Occurrence{
		{Date: day(2024, time.January, 1), Time: "09:00"},
		{Date: day(2024, time.January, 3), Time: "09:00"},
		{Date: day(2024, time.January, 8), Time: "09:00"},
		{Date: day(2024, time.January, 10), Time: "09:00"},
	}
	assert.Equal(t, want, got)
}

func TestExpandMultipleSlotsKeepSlotOrder(t *testing.T) {
	got := Expand(day(2024, time.January, 1), day(2024, time.January, 3), NewWeekdaySet(1, 2), []string{"08:00", "12:30", "20:00"})

	require.Len(t, got, 6)
	assert.Equal(t, Occurrence{Date: day(2024, time.January, 1), Time: "08:00"}, got[0])
	assert.Equal(t, Occurrence{Date: day(2024, time.January, 1), Time: "12:30"}, got[1])
	assert.Equal(t, Occurrence{Date: day(2024, time.January, 1), Time: "20:00"}, got[2])
	assert.Equal(t, Occurrence{Date: day(2024, time.January, 2), Time: "08:00"}, got[3])
}

func TestExpandChronologicalOrder(t *testing.T) {
	got := Expand(day(2024, time.March, 1), day(2024, time.April, 1), NewWeekdaySet(1, 2, 3, 4, 5, 6, 7), []string{"06:00", "18:00"})

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		dateOrdered := prev.Date.Before(cur.Date) ||
			(prev.Date.Equal(cur.Date) && prev.Time <= cur.Time)
		assert.True(t, dateOrdered, "occurrence %d out of order: %v then %v", i, prev, cur)
	}
}

func TestExpandOnlyMatchingWeekdaysInRange(t *testing.T) {
	from := day(2024, time.February, 5)
	to := day(2024, time.February, 26)
	set := NewWeekdaySet(6, 7)

	got := Expand(from, to, set, []string{"10:00"})
	require.NotEmpty(t, got)
	for _, occ := range got {
		assert.True(t, !occ.Date.Before(from) && occ.Date.Before(to))
		assert.True(t, set.Contains(ISOWeekday(occ.Date)))
	}
}

func TestExpandDegenerateInputs(t *testing.T) {
	mon := day(2024, time.January, 1)

	t.Run("empty weekday set", func(t *testing.T) {
		assert.Empty(t, Expand(mon, day(2024, time.June, 1), NewWeekdaySet(), []string{"09:00"}))
	})
	t.Run("from equals to", func(t *testing.T) {
		assert.Empty(t, Expand(mon, mon, NewWeekdaySet(1), []string{"09:00"}))
	})
	t.Run("to before from", func(t *testing.T) {
		assert.Empty(t, Expand(day(2024, time.January, 10), mon, NewWeekdaySet(1), []string{"09:00"}))
	})
	t.Run("no slots", func(t *testing.T) {
		assert.Empty(t, Expand(mon, day(2024, time.June, 1), NewWeekdaySet(1), nil))
	})
}

func TestExpandDeterministic(t *testing.T) {
	from, to := day(2024, time.May, 1), day(2024, time.May, 31)
	set := NewWeekdaySet(2, 4, 6)
	slots := []string{"07:15", "19:45"}

	first := Expand(from, to, set, slots)
	second := Expand(from, to, set, slots)
	assert.Equal(t, first, second)
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(day(2024, time.January, 1))) // Monday
	assert.Equal(t, 7, ISOWeekday(day(2024, time.January, 7))) // Sunday
	assert.Equal(t, 4, ISOWeekday(day(2024, time.January, 4))) // Thursday
}
