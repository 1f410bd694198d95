package app

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"whoseonfirst/internal/domain/notification"
	"whoseonfirst/internal/domain/override"
	"whoseonfirst/internal/domain/roster"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/domain/transport"
	"whoseonfirst/internal/infra/database"
)

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[int64]roster.Member
	nextID  int64
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int64]roster.Member)}
}

func (r *fakeMemberRepo) Create(ctx context.Context, m *roster.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.members[m.ID] = *m
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id int64) (*roster.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, database.ErrMemberNotFound
	}
	copied := m
	return &copied, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, m *roster.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		return database.ErrMemberNotFound
	}
	r.members[m.ID] = *m
	return nil
}

func (r *fakeMemberRepo) ListActive(ctx context.Context) ([]roster.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []roster.Member
	for _, m := range r.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListAll(ctx context.Context) ([]roster.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []roster.Member
	for _, m := range r.members {
		out = append(out, m)
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[int64]schedule.Assignment
	nextID      int64
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[int64]schedule.Assignment)}
}

func (r *fakeAssignmentRepo) BulkCreate(ctx context.Context, assignments []*schedule.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assignments {
		r.nextID++
		a.ID = r.nextID
		a.CreatedAt = time.Now()
		r.assignments[a.ID] = *a
	}
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id int64) (*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, database.ErrAssignmentNotFound
	}
	copied := a
	return &copied, nil
}

func (r *fakeAssignmentRepo) sorted(filter func(schedule.Assignment) bool) []*schedule.Assignment {
	var out []*schedule.Assignment
	for _, a := range r.assignments {
		if filter(a) {
			copied := a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

func (r *fakeAssignmentRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a schedule.Assignment) bool {
		return !a.StartAt.Before(from) && a.StartAt.Before(to)
	}), nil
}

func (r *fakeAssignmentRepo) ListFrom(ctx context.Context, from time.Time) ([]*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a schedule.Assignment) bool { return !a.StartAt.Before(from) }), nil
}

func (r *fakeAssignmentRepo) ListStartingOn(ctx context.Context, day time.Time) ([]*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a schedule.Assignment) bool { return a.StartsOn(day) }), nil
}

func (r *fakeAssignmentRepo) ListByMember(ctx context.Context, memberID int64, from, to time.Time) ([]*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a schedule.Assignment) bool {
		return a.MemberID == memberID && !a.StartAt.Before(from) && a.StartAt.Before(to)
	}), nil
}

func (r *fakeAssignmentRepo) NextForMember(ctx context.Context, memberID int64, after time.Time) (*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := r.sorted(func(a schedule.Assignment) bool {
		return a.MemberID == memberID && a.StartAt.After(after)
	})
	if len(candidates) == 0 {
		return nil, database.ErrAssignmentNotFound
	}
	return candidates[0], nil
}

func (r *fakeAssignmentRepo) LatestEnd(ctx context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest time.Time
	for _, a := range r.assignments {
		if a.EndAt.After(latest) {
			latest = a.EndAt
		}
	}
	return latest, nil
}

func (r *fakeAssignmentRepo) DeleteFrom(ctx context.Context, from time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, a := range r.assignments {
		if !a.StartAt.Before(from) {
			delete(r.assignments, id)
			removed++
		}
	}
	return removed, nil
}

type fakeOverrideRepo struct {
	mu          sync.Mutex
	overrides   map[int64]override.Override
	assignments *fakeAssignmentRepo
	nextID      int64
}

func newFakeOverrideRepo(assignments *fakeAssignmentRepo) *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[int64]override.Override), assignments: assignments}
}

func (r *fakeOverrideRepo) Create(ctx context.Context, o *override.Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.overrides {
		if existing.AssignmentID == o.AssignmentID && existing.Status == override.StatusActive {
			return database.ErrDuplicateActiveOverride
		}
	}
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.overrides[o.ID] = *o
	return nil
}

func (r *fakeOverrideRepo) GetByID(ctx context.Context, id int64) (*override.Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overrides[id]
	if !ok {
		return nil, database.ErrOverrideNotFound
	}
	copied := o
	return &copied, nil
}

func (r *fakeOverrideRepo) GetActiveForAssignment(ctx context.Context, assignmentID int64) (*override.Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.overrides {
		if o.AssignmentID == assignmentID && o.Status == override.StatusActive {
			copied := o
			return &copied, nil
		}
	}
	return nil, database.ErrOverrideNotFound
}

func (r *fakeOverrideRepo) Cancel(ctx context.Context, id int64, at time.Time) (*override.Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overrides[id]
	if !ok {
		return nil, database.ErrOverrideNotFound
	}
	if o.Status != override.StatusActive {
		return nil, database.ErrOverrideNotActive
	}
	o.Status = override.StatusCancelled
	o.CancelledAt.Time = at
	o.CancelledAt.Valid = true
	o.UpdatedAt = at
	r.overrides[id] = o
	copied := o
	return &copied, nil
}

func (r *fakeOverrideRepo) ListByStatus(ctx context.Context, status override.Status) ([]*override.Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*override.Override
	for _, o := range r.overrides {
		if o.Status == status {
			copied := o
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOverrideRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*override.Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*override.Override
	for _, o := range r.overrides {
		a, err := r.assignments.GetByID(ctx, o.AssignmentID)
		if err != nil {
			continue
		}
		if !a.StartAt.Before(from) && a.StartAt.Before(to) {
			copied := o
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []notification.Attempt
	nextID   int64
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{}
}

func (r *fakeAttemptRepo) Create(ctx context.Context, a *notification.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now()
	}
	r.attempts = append(r.attempts, *a)
	return nil
}

func (r *fakeAttemptRepo) ListByAssignment(ctx context.Context, assignmentID int64) ([]*notification.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Attempt
	for i := range r.attempts {
		if r.attempts[i].AssignmentID.Valid && r.attempts[i].AssignmentID.Int64 == assignmentID {
			copied := r.attempts[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*notification.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Attempt
	for i := range r.attempts {
		at := r.attempts[i].AttemptedAt
		if !at.Before(from) && at.Before(to) {
			copied := r.attempts[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListByOutcome(ctx context.Context, outcome notification.Outcome, from, to time.Time) ([]*notification.Attempt, error) {
	inRange, err := r.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []*notification.Attempt
	for _, a := range inRange {
		if a.Outcome == outcome {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) HasSent(ctx context.Context, assignmentID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.attempts {
		a := r.attempts[i]
		if a.AssignmentID.Valid && a.AssignmentID.Int64 == assignmentID && a.Outcome == notification.OutcomeSent {
			return true, nil
		}
	}
	return false, nil
}

// fakeTransport replays scripted outcomes per address and records every
// send it receives.
type fakeTransport struct {
	mu      sync.Mutex
	scripts map[string][]error
	calls   []fakeSend
}

type fakeSend struct {
	Address string
	Body    string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{scripts: make(map[string][]error)}
}

func (t *fakeTransport) failWith(address string, errs ...error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[address] = append(t.scripts[address], errs...)
}

func (t *fakeTransport) Send(ctx context.Context, address, body string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, fakeSend{Address: address, Body: body})
	if queue := t.scripts[address]; len(queue) > 0 {
		next := queue[0]
		t.scripts[address] = queue[1:]
		if next != nil {
			return "", next
		}
	}
	return "SMfake", nil
}

func (t *fakeTransport) sendsTo(address string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.calls {
		if c.Address == address {
			n++
		}
	}
	return n
}

var _ transport.Client = (*fakeTransport)(nil)

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
