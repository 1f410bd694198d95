package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"whoseonfirst/internal/domain/override"
)

// Custom errors specific to override repository
var ErrOverrideNotFound = fmt.Errorf("schedule override not found")
var ErrOverrideNotActive = fmt.Errorf("schedule override is not active")
var ErrDuplicateActiveOverride = fmt.Errorf("an active override already exists for this assignment")

type PostgresOverrideRepository struct {
	db *sql.DB
}

func NewPostgresOverrideRepository(db *sql.DB) *PostgresOverrideRepository {
	return &PostgresOverrideRepository{db: db}
}

func (r *PostgresOverrideRepository) Create(ctx context.Context, o *override.Override) error {
	query := `INSERT INTO schedule_overrides
               (assignment_id, member_id, original_member_name, override_member_name, reason, status, created_by)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		o.AssignmentID, o.MemberID, o.OriginalMemberName, o.OverrideMemberName, o.Reason, o.Status, o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		// Partial unique index: one active override per assignment.
		if strings.Contains(err.Error(), "overrides_one_active_per_assignment") {
			return ErrDuplicateActiveOverride
		}
		return fmt.Errorf("error creating schedule override: %w", err)
	}
	return nil
}

func (r *PostgresOverrideRepository) GetByID(ctx context.Context, id int64) (*override.Override, error) {
	query := selectOverride + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresOverrideRepository) GetActiveForAssignment(ctx context.Context, assignmentID int64) (*override.Override, error) {
	query := selectOverride + ` WHERE assignment_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, assignmentID, override.StatusActive))
}

func (r *PostgresOverrideRepository) Cancel(ctx context.Context, id int64, at time.Time) (*override.Override, error) {
	query := `UPDATE schedule_overrides
               SET status = $1, cancelled_at = $2, updated_at = NOW()
               WHERE id = $3 AND status = $4
               RETURNING id`
	var updatedID int64
	err := r.db.QueryRowContext(ctx, query, override.StatusCancelled, at, id, override.StatusActive).Scan(&updatedID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinguish missing from already-terminal.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrOverrideNotActive
			}
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("error cancelling schedule override: %w", err)
	}
	return r.GetByID(ctx, updatedID)
}

func (r *PostgresOverrideRepository) ListByStatus(ctx context.Context, status override.Status) ([]*override.Override, error) {
	query := selectOverride + ` WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, status)
}

// ListByDateRange windows on the shift start of the overridden
// assignment, not on when the override was created.
func (r *PostgresOverrideRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*override.Override, error) {
	query := `SELECT o.id, o.assignment_id, o.member_id, o.original_member_name, o.override_member_name,
               o.reason, o.status, o.created_by, o.created_at, o.updated_at, o.cancelled_at
               FROM schedule_overrides o
               JOIN assignments a ON a.id = o.assignment_id
               WHERE a.start_at >= $1 AND a.start_at < $2
               ORDER BY a.start_at, o.created_at`
	return r.list(ctx, query, from, to)
}

const selectOverride = `SELECT id, assignment_id, member_id, original_member_name, override_member_name,
               reason, status, created_by, created_at, updated_at, cancelled_at FROM schedule_overrides`

func (r *PostgresOverrideRepository) scanOne(row *sql.Row) (*override.Override, error) {
	o := &override.Override{}
	err := row.Scan(&o.ID, &o.AssignmentID, &o.MemberID, &o.OriginalMemberName, &o.OverrideMemberName,
		&o.Reason, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("error scanning schedule override: %w", err)
	}
	return o, nil
}

func (r *PostgresOverrideRepository) list(ctx context.Context, query string, args ...any) ([]*override.Override, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying schedule overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]*override.Override, 0)
	for rows.Next() {
		o := &override.Override{}
		if err := rows.Scan(&o.ID, &o.AssignmentID, &o.MemberID, &o.OriginalMemberName, &o.OverrideMemberName,
			&o.Reason, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt); err != nil {
			return nil, fmt.Errorf("error scanning schedule override row: %w", err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule override rows: %w", err)
	}
	return overrides, nil
}
