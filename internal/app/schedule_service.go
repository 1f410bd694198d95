package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"whoseonfirst/internal/domain/notification"
	"whoseonfirst/internal/domain/override"
	"whoseonfirst/internal/domain/roster"
	"whoseonfirst/internal/domain/rotation"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/infra/database"
)

type ScheduleService struct {
	assignments schedule.Repository
	members     roster.Repository
	overrides   override.Repository
	attempts    notification.Repository
	logger      *logrus.Logger

	location *time.Location
	pattern  schedule.Pattern

	renewThreshold time.Duration
	renewCycles    int
}

func NewScheduleService(
	assignments schedule.Repository,
	members roster.Repository,
	overrides override.Repository,
	attempts notification.Repository,
	logger *logrus.Logger,
	location *time.Location,
	renewThresholdWeeks int,
	renewCycles int,
) *ScheduleService {
	return &ScheduleService{
		assignments:    assignments,
		members:        members,
		overrides:      overrides,
		attempts:       attempts,
		logger:         logger,
		location:       location,
		pattern:        schedule.DefaultPattern(),
		renewThreshold: time.Duration(renewThresholdWeeks) * 7 * 24 * time.Hour,
		renewCycles:    renewCycles,
	}
}

// Generate materializes cycles weeks of assignments covering the week
// containing start. Without force it covers whole weeks, normalizing
// start to its Monday, and refuses to touch a range that already has
// assignments. With force it regenerates from start itself: assignments
// starting earlier, including earlier shifts in the same week, stay
// untouched, and nothing is deleted if the replaced tail has been
// notified or overridden.
func (s *ScheduleService) Generate(ctx context.Context, start time.Time, cycles int, force bool) ([]*schedule.Assignment, error) {
	if cycles <= 0 {
		return nil, fmt.Errorf("cycles must be positive, got %d", cycles)
	}
	local := start.In(s.location)
	weekStart := schedule.WeekStart(local)
	rangeEnd := weekStart.AddDate(0, 0, 7*cycles)

	cut := weekStart
	if force {
		cut = local
	}

	existing, err := s.assignments.ListByDateRange(ctx, cut, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("could not inspect existing schedule: %w", err)
	}
	if len(existing) > 0 {
		if !force {
			return nil, fmt.Errorf("%w: %d assignments between %s and %s",
				ErrScheduleExists, len(existing),
				cut.Format("2006-01-02"), rangeEnd.Format("2006-01-02"))
		}
		if err := s.clearFrom(ctx, cut); err != nil {
			return nil, err
		}
	}

	created, err := s.materialize(ctx, weekStart, cycles, cut)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"week_start": weekStart.Format("2006-01-02"),
		"cycles":     cycles,
		"count":      len(created),
	}).Info("Schedule generated")
	return created, nil
}

// RegenerateFrom rebuilds the schedule from a given instant forward.
// Assignments starting before it stay intact, even mid-week: a Wednesday
// cut-over keeps the week's Monday and Tuesday shifts as assigned.
// History stays immutable: if any assignment at or after the cut-over
// was already notified or carries an active override, nothing is
// deleted and ErrRegenerationConflict is returned.
func (s *ScheduleService) RegenerateFrom(ctx context.Context, from time.Time, cycles int) ([]*schedule.Assignment, error) {
	return s.Generate(ctx, from, cycles, true)
}

// AutoRenew extends the schedule when the furthest materialized
// assignment ends within the renewal threshold. It is a no-op while
// enough runway remains.
func (s *ScheduleService) AutoRenew(ctx context.Context, now time.Time) error {
	latest, err := s.assignments.LatestEnd(ctx)
	if err != nil {
		return fmt.Errorf("could not determine schedule horizon: %w", err)
	}
	if latest.IsZero() {
		return ErrNothingToRenew
	}
	remaining := latest.Sub(now)
	if remaining >= s.renewThreshold {
		s.logger.WithField("until", latest.Format("2006-01-02")).Debug("Schedule horizon sufficient, skipping renewal")
		return nil
	}

	// latest is a shift end inside the last materialized week, so its
	// containing week is that week and generation resumes the Monday
	// after via WeekStart of the end instant itself.
	created, err := s.Generate(ctx, latest, s.renewCycles, false)
	if err != nil {
		return fmt.Errorf("auto renewal failed: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"count": len(created),
		"until": created[len(created)-1].EndAt.Format("2006-01-02"),
	}).Info("Schedule auto renewed")
	return nil
}

// Upcoming lists assignments in [from, to) for display.
func (s *ScheduleService) Upcoming(ctx context.Context, from, to time.Time) ([]*schedule.Assignment, error) {
	return s.assignments.ListByDateRange(ctx, from, to)
}

func (s *ScheduleService) clearFrom(ctx context.Context, cut time.Time) error {
	tail, err := s.assignments.ListFrom(ctx, cut)
	if err != nil {
		return fmt.Errorf("could not load assignments for conflict check: %w", err)
	}
	for _, a := range tail {
		sent, err := s.attempts.HasSent(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("could not check notification state of assignment %d: %w", a.ID, err)
		}
		if sent {
			return fmt.Errorf("%w: assignment %d starting %s was already notified",
				ErrRegenerationConflict, a.ID, a.StartAt.Format("2006-01-02"))
		}
		if _, err := s.overrides.GetActiveForAssignment(ctx, a.ID); err == nil {
			return fmt.Errorf("%w: assignment %d starting %s has an active override",
				ErrRegenerationConflict, a.ID, a.StartAt.Format("2006-01-02"))
		} else if !errors.Is(err, database.ErrOverrideNotFound) {
			return fmt.Errorf("could not check override state of assignment %d: %w", a.ID, err)
		}
	}
	removed, err := s.assignments.DeleteFrom(ctx, cut)
	if err != nil {
		return fmt.Errorf("could not clear schedule from %s: %w", cut.Format("2006-01-02"), err)
	}
	s.logger.WithField("removed", removed).Info("Cleared schedule tail for regeneration")
	return nil
}

// materialize builds and persists assignments for cycles weeks starting
// at weekStart, dropping slots that start before cut. Turn indices are
// derived from the epoch, so the dropped prefix is exactly what an
// earlier full-week generation produced for those slots.
func (s *ScheduleService) materialize(ctx context.Context, weekStart time.Time, cycles int, cut time.Time) ([]*schedule.Assignment, error) {
	members, err := s.members.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load roster: %w", err)
	}
	if len(members) == 0 {
		return nil, rotation.ErrEmptyRoster
	}

	var batch []*schedule.Assignment
	for c := 0; c < cycles; c++ {
		cycleStart := weekStart.AddDate(0, 0, 7*c)
		cycleNumber := rotation.CycleNumber(cycleStart)
		for i, shift := range s.pattern {
			turn := rotation.TurnIndex(cycleNumber, len(s.pattern), i)
			member, err := rotation.Assign(turn, members)
			if err != nil {
				return nil, err
			}
			startAt := shift.StartAt(cycleStart)
			if startAt.Before(cut) {
				continue
			}
			batch = append(batch, &schedule.Assignment{
				ShiftNumber: shift.Number,
				MemberID:    member.ID,
				MemberName:  member.Name,
				TurnIndex:   turn,
				StartAt:     startAt,
				EndAt:       startAt.Add(time.Duration(shift.DurationHours) * time.Hour),
			})
		}
	}

	if err := s.assignments.BulkCreate(ctx, batch); err != nil {
		return nil, fmt.Errorf("could not persist schedule: %w", err)
	}
	return batch, nil
}
