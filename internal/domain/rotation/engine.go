package rotation

import (
	"errors"
	"time"

	"whoseonfirst/internal/domain/roster"
)

// Epoch is the fixed Monday all turn indices are counted from. Changing it
// would reshuffle every generated assignment, so it never moves.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var ErrEmptyRoster = errors.New("no active members in roster")
var ErrNegativeTurn = errors.New("turn index must be non-negative")

// Assign maps one rotation turn to a member. The roster snapshot is ordered
// by stable ID before indexing, so the same turn always yields the same
// member for the same set of active IDs. A roster of one is valid: that
// member takes every turn.
func Assign(turnIndex int64, members []roster.Member) (roster.Member, error) {
	if turnIndex < 0 {
		return roster.Member{}, ErrNegativeTurn
	}
	if len(members) == 0 {
		return roster.Member{}, ErrEmptyRoster
	}
	sorted := roster.SortByID(members)
	position := turnIndex % int64(len(sorted))
	return sorted[position], nil
}

// TurnIndex computes the absolute turn for a shift slot: full cycles elapsed
// since Epoch times the pattern length, plus the slot's position within the
// cycle. Adding or removing a shift definition changes only future turns.
func TurnIndex(cycleNumber int64, patternLength, shiftIndex int) int64 {
	return cycleNumber*int64(patternLength) + int64(shiftIndex)
}

// CycleNumber returns the number of full weeks between Epoch and the given
// week start. weekStart must already be normalized to a Monday.
func CycleNumber(weekStart time.Time) int64 {
	y, m, d := weekStart.Date()
	normalized := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int64(normalized.Sub(Epoch).Hours()) / (24 * 7)
}
