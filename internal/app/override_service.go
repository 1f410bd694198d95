package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"whoseonfirst/internal/domain/override"
	"whoseonfirst/internal/domain/roster"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/infra/database"
)

// Resolution names who actually covers an assignment once any active
// override is applied.
type Resolution struct {
	Assignment *schedule.Assignment
	MemberID   int64
	MemberName string
	Overridden bool
	OverrideID int64
}

type OverrideService struct {
	overrides   override.Repository
	assignments schedule.Repository
	members     roster.Repository
	logger      *logrus.Logger
	locks       *assignmentLocks
}

func NewOverrideService(
	overrides override.Repository,
	assignments schedule.Repository,
	members roster.Repository,
	logger *logrus.Logger,
) *OverrideService {
	return &OverrideService{
		overrides:   overrides,
		assignments: assignments,
		members:     members,
		logger:      logger,
		locks:       newAssignmentLocks(),
	}
}

// Create puts a substitute on an assignment. The scheduled assignment
// itself is never edited; resolution happens at read time. Member names
// are snapshotted so later roster edits do not rewrite override history.
func (s *OverrideService) Create(ctx context.Context, assignmentID, memberID int64, reason, createdBy string) (*override.Override, error) {
	unlock := s.locks.lock(assignmentID)
	defer unlock()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrInactiveMember, member.Name)
	}
	if member.ID == assignment.MemberID {
		return nil, fmt.Errorf("%w: %s is already scheduled", ErrSelfOverride, member.Name)
	}
	if _, err := s.overrides.GetActiveForAssignment(ctx, assignmentID); err == nil {
		return nil, fmt.Errorf("%w: assignment %d", ErrDuplicateOverride, assignmentID)
	} else if !errors.Is(err, database.ErrOverrideNotFound) {
		return nil, err
	}

	created := &override.Override{
		AssignmentID:       assignmentID,
		MemberID:           memberID,
		OriginalMemberName: assignment.MemberName,
		OverrideMemberName: member.Name,
		Reason:             reason,
		Status:             override.StatusActive,
		CreatedBy:          createdBy,
	}
	if err := s.overrides.Create(ctx, created); err != nil {
		// The partial unique index backstops the check above under
		// concurrent writers.
		if errors.Is(err, database.ErrDuplicateActiveOverride) {
			return nil, fmt.Errorf("%w: assignment %d", ErrDuplicateOverride, assignmentID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"override_id":   created.ID,
		"assignment_id": assignmentID,
		"member":        member.Name,
		"created_by":    createdBy,
	}).Info("Override created")
	return created, nil
}

// Cancel retires an active override; the original assignee covers the
// shift again. Cancelled and completed overrides cannot be cancelled.
func (s *OverrideService) Cancel(ctx context.Context, overrideID int64) error {
	existing, err := s.overrides.GetByID(ctx, overrideID)
	if err != nil {
		return err
	}
	assignment, err := s.assignments.GetByID(ctx, existing.AssignmentID)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(existing.AssignmentID)
	defer unlock()

	now := time.Now()
	if existing.EffectiveStatus(assignment.EndAt, now) != override.StatusActive {
		return fmt.Errorf("%w: override %d", database.ErrOverrideNotActive, overrideID)
	}
	if _, err := s.overrides.Cancel(ctx, overrideID, now); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"override_id":   overrideID,
		"assignment_id": existing.AssignmentID,
	}).Info("Override cancelled")
	return nil
}

// EffectiveAssignee resolves who covers the assignment right now. The
// per-assignment lock ensures a concurrent override create or cancel is
// observed either fully or not at all.
func (s *OverrideService) EffectiveAssignee(ctx context.Context, assignmentID int64) (Resolution, error) {
	unlock := s.locks.lock(assignmentID)
	defer unlock()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return Resolution{}, err
	}
	active, err := s.overrides.GetActiveForAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, database.ErrOverrideNotFound) {
			return Resolution{
				Assignment: assignment,
				MemberID:   assignment.MemberID,
				MemberName: assignment.MemberName,
			}, nil
		}
		return Resolution{}, err
	}
	return Resolution{
		Assignment: assignment,
		MemberID:   active.MemberID,
		MemberName: active.OverrideMemberName,
		Overridden: true,
		OverrideID: active.ID,
	}, nil
}

// ListByDateRange returns overrides whose assignments start in the
// range, with the completed state derived from each shift's end.
func (s *OverrideService) ListByDateRange(ctx context.Context, from, to time.Time) ([]*override.Override, error) {
	list, err := s.overrides.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, o := range list {
		assignment, err := s.assignments.GetByID(ctx, o.AssignmentID)
		if err != nil {
			return nil, err
		}
		o.Status = o.EffectiveStatus(assignment.EndAt, now)
	}
	return list, nil
}
