package schedule

import "time"

// Assignment materializes one rotation turn: a member holding a shift slot
// over a concrete time window. Immutable once created; "notified" is derived
// from the notification attempt log rather than stored here.
type Assignment struct {
	ID          int64
	ShiftNumber int
	MemberID    int64
	MemberName  string // snapshot at generation time
	TurnIndex   int64
	StartAt     time.Time
	EndAt       time.Time
	CreatedAt   time.Time
}

// StartsOn reports whether the assignment's window opens on the given
// calendar day in the assignment's own location.
func (a *Assignment) StartsOn(day time.Time) bool {
	y1, m1, d1 := a.StartAt.Date()
	y2, m2, d2 := day.In(a.StartAt.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Ended reports whether the assignment's window has closed.
func (a *Assignment) Ended(now time.Time) bool {
	return a.EndAt.Before(now)
}

// DurationHours is the shift length in whole hours.
func (a *Assignment) DurationHours() int {
	return int(a.EndAt.Sub(a.StartAt).Hours())
}
