package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"whoseonfirst/internal/domain/schedule"
)

// Custom errors specific to assignment repository
var ErrAssignmentNotFound = fmt.Errorf("assignment not found")

type PostgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

func (r *PostgresAssignmentRepository) BulkCreate(ctx context.Context, assignments []*schedule.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO assignments (shift_number, member_id, member_name, turn_index, start_at, end_at, created_at)
                                         VALUES ($1, $2, $3, $4, $5, $6, NOW())
                                         RETURNING id, created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk create: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		err := stmt.QueryRowContext(ctx, a.ShiftNumber, a.MemberID, a.MemberName, a.TurnIndex, a.StartAt, a.EndAt).
			Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return fmt.Errorf("error in bulk create (assignment turn %d): %w", a.TurnIndex, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id int64) (*schedule.Assignment, error) {
	query := selectAssignment + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresAssignmentRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*schedule.Assignment, error) {
	query := selectAssignment + ` WHERE start_at >= $1 AND start_at < $2 ORDER BY start_at`
	return r.list(ctx, query, from, to)
}

func (r *PostgresAssignmentRepository) ListFrom(ctx context.Context, from time.Time) ([]*schedule.Assignment, error) {
	query := selectAssignment + ` WHERE start_at >= $1 ORDER BY start_at`
	return r.list(ctx, query, from)
}

func (r *PostgresAssignmentRepository) ListStartingOn(ctx context.Context, day time.Time) ([]*schedule.Assignment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.ListByDateRange(ctx, dayStart, dayStart.AddDate(0, 0, 1))
}

func (r *PostgresAssignmentRepository) ListByMember(ctx context.Context, memberID int64, from, to time.Time) ([]*schedule.Assignment, error) {
	query := selectAssignment + ` WHERE member_id = $1 AND start_at >= $2 AND start_at < $3 ORDER BY start_at`
	return r.list(ctx, query, memberID, from, to)
}

func (r *PostgresAssignmentRepository) NextForMember(ctx context.Context, memberID int64, after time.Time) (*schedule.Assignment, error) {
	query := selectAssignment + ` WHERE member_id = $1 AND start_at > $2 ORDER BY start_at LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, memberID, after))
}

func (r *PostgresAssignmentRepository) LatestEnd(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(end_at) FROM assignments`).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("error getting latest assignment end: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

func (r *PostgresAssignmentRepository) DeleteFrom(ctx context.Context, from time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE start_at >= $1`, from)
	if err != nil {
		return 0, fmt.Errorf("error deleting assignments from %s: %w", from.Format(time.RFC3339), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error counting deleted assignments: %w", err)
	}
	return n, nil
}

const selectAssignment = `SELECT id, shift_number, member_id, member_name, turn_index, start_at, end_at, created_at FROM assignments`

func (r *PostgresAssignmentRepository) scanOne(row *sql.Row) (*schedule.Assignment, error) {
	a := &schedule.Assignment{}
	err := row.Scan(&a.ID, &a.ShiftNumber, &a.MemberID, &a.MemberName, &a.TurnIndex, &a.StartAt, &a.EndAt, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error scanning assignment: %w", err)
	}
	return a, nil
}

func (r *PostgresAssignmentRepository) list(ctx context.Context, query string, args ...any) ([]*schedule.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*schedule.Assignment, 0)
	for rows.Next() {
		a := &schedule.Assignment{}
		if err := rows.Scan(&a.ID, &a.ShiftNumber, &a.MemberID, &a.MemberName, &a.TurnIndex, &a.StartAt, &a.EndAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}
	return assignments, nil
}
