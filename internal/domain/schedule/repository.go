package schedule

import (
	"context"
	"time"
)

// Repository defines persistence operations for Assignment records.
type Repository interface {
	BulkCreate(ctx context.Context, assignments []*Assignment) error
	GetByID(ctx context.Context, id int64) (*Assignment, error)

	// ListByDateRange returns assignments whose start falls in [from, to),
	// ordered by start time.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Assignment, error)
	// ListFrom returns assignments starting at or after from.
	ListFrom(ctx context.Context, from time.Time) ([]*Assignment, error)
	// ListStartingOn returns assignments starting on the given calendar day.
	ListStartingOn(ctx context.Context, day time.Time) ([]*Assignment, error)
	ListByMember(ctx context.Context, memberID int64, from, to time.Time) ([]*Assignment, error)
	NextForMember(ctx context.Context, memberID int64, after time.Time) (*Assignment, error)

	// LatestEnd returns the end time of the furthest materialized assignment,
	// or the zero time when no assignments exist.
	LatestEnd(ctx context.Context) (time.Time, error)
	// DeleteFrom removes assignments starting at or after from and returns
	// the number removed. Callers check for audit conflicts first.
	DeleteFrom(ctx context.Context, from time.Time) (int64, error)
}
