package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"whoseonfirst/internal/domain/notification"
)

type PostgresAttemptRepository struct {
	db *sql.DB
}

func NewPostgresAttemptRepository(db *sql.DB) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

func (r *PostgresAttemptRepository) Create(ctx context.Context, a *notification.Attempt) error {
	query := `INSERT INTO notification_attempts
               (assignment_id, recipient, address, category, outcome, provider_id, error_detail, attempted_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id`
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		a.AssignmentID, a.Recipient, a.Address, a.Category, a.Outcome, a.ProviderID, a.ErrorDetail, a.AttemptedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("error creating notification attempt: %w", err)
	}
	return nil
}

func (r *PostgresAttemptRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*notification.Attempt, error) {
	query := selectAttempt + ` WHERE assignment_id = $1 ORDER BY attempted_at`
	return r.list(ctx, query, assignmentID)
}

func (r *PostgresAttemptRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*notification.Attempt, error) {
	query := selectAttempt + ` WHERE attempted_at >= $1 AND attempted_at < $2 ORDER BY attempted_at`
	return r.list(ctx, query, from, to)
}

func (r *PostgresAttemptRepository) ListByOutcome(ctx context.Context, outcome notification.Outcome, from, to time.Time) ([]*notification.Attempt, error) {
	query := selectAttempt + ` WHERE outcome = $1 AND attempted_at >= $2 AND attempted_at < $3 ORDER BY attempted_at`
	return r.list(ctx, query, outcome, from, to)
}

func (r *PostgresAttemptRepository) HasSent(ctx context.Context, assignmentID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM notification_attempts WHERE assignment_id = $1 AND outcome = $2`
	err := r.db.QueryRowContext(ctx, query, assignmentID, notification.OutcomeSent).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking sent attempts: %w", err)
	}
	return count > 0, nil
}

const selectAttempt = `SELECT id, assignment_id, recipient, address, category, outcome, provider_id, error_detail, attempted_at
               FROM notification_attempts`

func (r *PostgresAttemptRepository) list(ctx context.Context, query string, args ...any) ([]*notification.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notification attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*notification.Attempt, 0)
	for rows.Next() {
		a := &notification.Attempt{}
		if err := rows.Scan(&a.ID, &a.AssignmentID, &a.Recipient, &a.Address, &a.Category,
			&a.Outcome, &a.ProviderID, &a.ErrorDetail, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification attempt rows: %w", err)
	}
	return attempts, nil
}
