package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"whoseonfirst/internal/domain/roster"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrMemberNotFound = fmt.Errorf("team member not found")
var ErrDuplicatePhone = fmt.Errorf("team member with this phone number already exists")

type PostgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

func (r *PostgresMemberRepository) Create(ctx context.Context, m *roster.Member) error {
	query := `INSERT INTO team_members (name, phone, secondary_phone, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, m.Name, m.Phone, m.SecondaryPhone, m.IsActive).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "team_members_phone_key") {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("error creating team member: %w", err)
	}
	return nil
}

func (r *PostgresMemberRepository) GetByID(ctx context.Context, id int64) (*roster.Member, error) {
	query := `SELECT id, name, phone, secondary_phone, is_active, created_at, updated_at
               FROM team_members WHERE id = $1`
	m := &roster.Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Phone, &m.SecondaryPhone, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("error getting team member by ID: %w", err)
	}
	return m, nil
}

func (r *PostgresMemberRepository) Update(ctx context.Context, m *roster.Member) error {
	query := `UPDATE team_members
               SET name = $1, phone = $2, secondary_phone = $3, is_active = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, m.Name, m.Phone, m.SecondaryPhone, m.IsActive, m.ID).
		Scan(&m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrMemberNotFound
		}
		return fmt.Errorf("error updating team member: %w", err)
	}
	return nil
}

func (r *PostgresMemberRepository) ListActive(ctx context.Context) ([]roster.Member, error) {
	query := `SELECT id, name, phone, secondary_phone, is_active, created_at, updated_at
               FROM team_members WHERE is_active = TRUE ORDER BY id`
	return r.list(ctx, query)
}

func (r *PostgresMemberRepository) ListAll(ctx context.Context) ([]roster.Member, error) {
	query := `SELECT id, name, phone, secondary_phone, is_active, created_at, updated_at
               FROM team_members ORDER BY id`
	return r.list(ctx, query)
}

func (r *PostgresMemberRepository) list(ctx context.Context, query string) ([]roster.Member, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying team members: %w", err)
	}
	defer rows.Close()

	members := make([]roster.Member, 0)
	for rows.Next() {
		var m roster.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.SecondaryPhone, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning team member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team member rows: %w", err)
	}
	return members, nil
}
