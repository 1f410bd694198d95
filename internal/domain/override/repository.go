package override

import (
	"context"
	"time"
)

// Repository defines persistence operations for Override records.
type Repository interface {
	Create(ctx context.Context, o *Override) error
	GetByID(ctx context.Context, id int64) (*Override, error)
	// GetActiveForAssignment returns the single active override for an
	// assignment, or ErrOverrideNotFound when none exists.
	GetActiveForAssignment(ctx context.Context, assignmentID int64) (*Override, error)
	// Cancel transitions an active override to cancelled and records the
	// timestamp. Cancellation is irreversible.
	Cancel(ctx context.Context, id int64, at time.Time) (*Override, error)
	ListByStatus(ctx context.Context, status Status) ([]*Override, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Override, error)
}
