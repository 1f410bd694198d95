package schedule

import "time"

// StartHour is the local hour every shift begins at.
const StartHour = 8

// Shift is one slot in the weekly rotation pattern. A multi-day shift
// (DurationHours > 24) consumes a single rotation turn but spans several
// calendar days.
type Shift struct {
	Number        int          // position within the cycle, 1-based
	StartDay      time.Weekday // first calendar day covered
	DurationHours int          // 24 for a single day, 48 for a double
}

// Pattern is the ordered weekly shift pattern. Slots are processed in this
// order within every cycle.
type Pattern []Shift

// DefaultPattern mirrors the standard six-slot week: single days except the
// Tuesday-Wednesday double.
func DefaultPattern() Pattern {
	return Pattern{
		{Number: 1, StartDay: time.Monday, DurationHours: 24},
		{Number: 2, StartDay: time.Tuesday, DurationHours: 48},
		{Number: 3, StartDay: time.Thursday, DurationHours: 24},
		{Number: 4, StartDay: time.Friday, DurationHours: 24},
		{Number: 5, StartDay: time.Saturday, DurationHours: 24},
		{Number: 6, StartDay: time.Sunday, DurationHours: 24},
	}
}

// WeekStart normalizes t to the Monday of its week at midnight, preserving
// the location.
func WeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -daysSinceMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayOffset returns the distance in days from Monday to the shift's start day.
func (s Shift) dayOffset() int {
	return (int(s.StartDay) + 6) % 7
}

// StartAt returns the concrete start of this shift within the week that
// begins at weekStart.
func (s Shift) StartAt(weekStart time.Time) time.Time {
	y, m, d := weekStart.AddDate(0, 0, s.dayOffset()).Date()
	return time.Date(y, m, d, StartHour, 0, 0, 0, weekStart.Location())
}
