package recurrence

import (
	"sort"
	"strconv"
	"strings"
)

// WeekdaySet is a set of ISO weekday numbers (1=Monday .. 7=Sunday).
type WeekdaySet map[int]struct{}

// NewWeekdaySet builds a set from the given weekday numbers, ignoring values
// outside 1..7.
func NewWeekdaySet(days ...int) WeekdaySet {
	set := make(WeekdaySet, len(days))
	for _, d := range days {
		if d >= 1 && d <= 7 {
			set[d] = struct{}{}
		}
	}
	return set
}

// Contains reports whether day is a member of the set.
func (s WeekdaySet) Contains(day int) bool {
	_, ok := s[day]
	return ok
}

// Days returns the members in ascending order.
func (s WeekdaySet) Days() []int {
	days := make([]int, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Tokens returns the members as decimal strings in ascending order, the form
// used on the wire.
func (s WeekdaySet) Tokens() []string {
	days := s.Days()
	tokens := make([]string, len(days))
	for i, d := range days {
		tokens[i] = strconv.Itoa(d)
	}
	return tokens
}

// ParseWeekdaySet builds a set from wire tokens. Tokens that are empty or not
// a number in 1..7 are skipped; duplicates collapse.
func ParseWeekdaySet(tokens []string) WeekdaySet {
	set := make(WeekdaySet, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := strconv.Atoi(tok)
		if err != nil || d < 1 || d > 7 {
			continue
		}
		set[d] = struct{}{}
	}
	return set
}

// EncodePattern renders the set into its stored form: ascending weekday
// numbers joined by single spaces. Stored rows written by the legacy system
// use the same delimiter, so existing data stays readable.
func (s WeekdaySet) EncodePattern() string {
	return strings.Join(s.Tokens(), " ")
}

// DecodePattern parses a stored pattern string. Splitting on arbitrary
// whitespace tolerates the trailing and doubled spaces the legacy writer
// produced.
func DecodePattern(pattern string) WeekdaySet {
	return ParseWeekdaySet(strings.Fields(pattern))
}
