package notification

import (
	"context"
	"time"
)

// Repository defines operations for the append-only attempt audit trail.
type Repository interface {
	Create(ctx context.Context, attempt *Attempt) error
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*Attempt, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Attempt, error)
	ListByOutcome(ctx context.Context, outcome Outcome, from, to time.Time) ([]*Attempt, error)
	// HasSent reports whether at least one sent attempt exists for the
	// assignment. The dispatcher uses this instead of a mutable flag on
	// the assignment itself.
	HasSent(ctx context.Context, assignmentID int64) (bool, error)
}
