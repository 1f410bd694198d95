package override

import (
	"database/sql"
	"time"
)

// Status is the stored override state. "completed" is never written; it is
// derived from the assignment's end time on read.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Override substitutes a different member for one materialized assignment
// without touching the rotation state. Both names are snapshotted at
// creation so history stays readable if a member record changes later.
type Override struct {
	ID                 int64
	AssignmentID       int64
	MemberID           int64 // the replacement
	OriginalMemberName string
	OverrideMemberName string
	Reason             string
	Status             Status
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        sql.NullTime
}

// EffectiveStatus derives the display status: an active override whose
// shift has already ended reads as completed, without a write.
func (o *Override) EffectiveStatus(shiftEnd, now time.Time) Status {
	if o.Status == StatusActive && shiftEnd.Before(now) {
		return StatusCompleted
	}
	return o.Status
}
