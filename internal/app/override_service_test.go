package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whoseonfirst/internal/domain/override"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/infra/database"
)

type overrideFixture struct {
	*scheduleFixture
	svc        *OverrideService
	assignment *schedule.Assignment
}

// futureWeek is the Monday after the current week, so shifts have not
// ended and overrides on them are still cancellable.
func futureWeek(loc *time.Location) time.Time {
	return schedule.WeekStart(time.Now().In(loc)).AddDate(0, 0, 7)
}

// newOverrideFixture seeds three members, one generated future week, and
// returns the first assignment of that week.
func newOverrideFixture(t *testing.T) *overrideFixture {
	t.Helper()
	base := newScheduleFixture(t, "Alice", "Bob", "Carol")
	created, err := base.svc.Generate(context.Background(), futureWeek(base.loc), 1, false)
	require.NoError(t, err)

	return &overrideFixture{
		scheduleFixture: base,
		svc:             NewOverrideService(base.overrides, base.assignments, base.members, testLogger()),
		assignment:      created[0],
	}
}

// substitute picks a member other than the scheduled one.
func (f *overrideFixture) substitute() int64 {
	if f.assignment.MemberID == 1 {
		return 2
	}
	return 1
}

// thirdMember picks the member who is neither scheduled nor the
// substitute.
func (f *overrideFixture) thirdMember() int64 {
	for id := int64(1); id <= 3; id++ {
		if id != f.assignment.MemberID && id != f.substitute() {
			return id
		}
	}
	return 3
}

func TestOverrideCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots both names", func(t *testing.T) {
		f := newOverrideFixture(t)
		created, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "vacation", "admin")
		require.NoError(t, err)

		assert.Equal(t, f.assignment.MemberName, created.OriginalMemberName)
		assert.NotEqual(t, created.OriginalMemberName, created.OverrideMemberName)
		assert.Equal(t, override.StatusActive, created.Status)
		assert.Equal(t, "admin", created.CreatedBy)
	})

	t.Run("does not touch the assignment", func(t *testing.T) {
		f := newOverrideFixture(t)
		_, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "vacation", "admin")
		require.NoError(t, err)

		reloaded, err := f.assignments.GetByID(ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, f.assignment.MemberID, reloaded.MemberID)
		assert.Equal(t, f.assignment.MemberName, reloaded.MemberName)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		f := newOverrideFixture(t)
		_, err := f.svc.Create(ctx, 9999, f.substitute(), "", "admin")
		assert.ErrorIs(t, err, database.ErrAssignmentNotFound)
	})

	t.Run("unknown member", func(t *testing.T) {
		f := newOverrideFixture(t)
		_, err := f.svc.Create(ctx, f.assignment.ID, 9999, "", "admin")
		assert.ErrorIs(t, err, database.ErrMemberNotFound)
	})

	t.Run("inactive member rejected", func(t *testing.T) {
		f := newOverrideFixture(t)
		sub, err := f.members.GetByID(ctx, f.substitute())
		require.NoError(t, err)
		sub.IsActive = false
		require.NoError(t, f.members.Update(ctx, sub))

		_, err = f.svc.Create(ctx, f.assignment.ID, sub.ID, "", "admin")
		assert.ErrorIs(t, err, ErrInactiveMember)
	})

	t.Run("self override rejected", func(t *testing.T) {
		f := newOverrideFixture(t)
		_, err := f.svc.Create(ctx, f.assignment.ID, f.assignment.MemberID, "", "admin")
		assert.ErrorIs(t, err, ErrSelfOverride)
	})

	t.Run("second active override rejected", func(t *testing.T) {
		f := newOverrideFixture(t)
		_, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.assignment.ID, f.thirdMember(), "", "admin")
		assert.ErrorIs(t, err, ErrDuplicateOverride)
	})

	t.Run("new override allowed after cancellation", func(t *testing.T) {
		f := newOverrideFixture(t)
		first, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)
		require.NoError(t, f.svc.Cancel(ctx, first.ID))

		_, err = f.svc.Create(ctx, f.assignment.ID, f.thirdMember(), "", "admin")
		assert.NoError(t, err)
	})
}

func TestOverrideCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling twice fails", func(t *testing.T) {
		f := newOverrideFixture(t)
		created, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)

		require.NoError(t, f.svc.Cancel(ctx, created.ID))
		err = f.svc.Cancel(ctx, created.ID)
		assert.ErrorIs(t, err, database.ErrOverrideNotActive)
	})

	t.Run("unknown override", func(t *testing.T) {
		f := newOverrideFixture(t)
		err := f.svc.Cancel(ctx, 9999)
		assert.ErrorIs(t, err, database.ErrOverrideNotFound)
	})

	t.Run("records the cancellation time", func(t *testing.T) {
		f := newOverrideFixture(t)
		created, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)
		require.NoError(t, f.svc.Cancel(ctx, created.ID))

		reloaded, err := f.overrides.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, override.StatusCancelled, reloaded.Status)
		assert.True(t, reloaded.CancelledAt.Valid)
	})
}

func TestEffectiveAssignee(t *testing.T) {
	ctx := context.Background()

	t.Run("without override resolves the scheduled member", func(t *testing.T) {
		f := newOverrideFixture(t)
		res, err := f.svc.EffectiveAssignee(ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, f.assignment.MemberID, res.MemberID)
		assert.False(t, res.Overridden)
	})

	t.Run("active override wins", func(t *testing.T) {
		f := newOverrideFixture(t)
		created, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)

		res, err := f.svc.EffectiveAssignee(ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.True(t, res.Overridden)
		assert.Equal(t, created.MemberID, res.MemberID)
		assert.Equal(t, created.OverrideMemberName, res.MemberName)
		assert.Equal(t, created.ID, res.OverrideID)
	})

	t.Run("cancellation restores the original", func(t *testing.T) {
		f := newOverrideFixture(t)
		created, err := f.svc.Create(ctx, f.assignment.ID, f.substitute(), "", "admin")
		require.NoError(t, err)
		require.NoError(t, f.svc.Cancel(ctx, created.ID))

		res, err := f.svc.EffectiveAssignee(ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.False(t, res.Overridden)
		assert.Equal(t, f.assignment.MemberID, res.MemberID)
	})
}

func TestOverrideListByDateRange(t *testing.T) {
	ctx := context.Background()

	t.Run("derives completed for ended shifts", func(t *testing.T) {
		// Generate a week that lies entirely in the past.
		base := newScheduleFixture(t, "Alice", "Bob", "Carol")
		created, err := base.svc.Generate(ctx, anchorWeek(base.loc), 1, false)
		require.NoError(t, err)
		assignment := created[0]
		require.True(t, assignment.EndAt.Before(time.Now()))

		svc := NewOverrideService(base.overrides, base.assignments, base.members, testLogger())
		substituteID := int64(1)
		if assignment.MemberID == substituteID {
			substituteID = 2
		}
		o, err := svc.Create(ctx, assignment.ID, substituteID, "", "admin")
		require.NoError(t, err)
		require.Equal(t, override.StatusActive, o.Status)

		list, err := svc.ListByDateRange(ctx, anchorWeek(base.loc), anchorWeek(base.loc).AddDate(0, 0, 7))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, override.StatusCompleted, list[0].Status)

		// Derivation is read-side only; the stored row is still active.
		stored, err := base.overrides.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, override.StatusActive, stored.Status)
	})
}
