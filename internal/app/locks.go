package app

import "sync"

// assignmentLocks serializes override writes and effective-assignee reads
// per assignment, so a reader never observes a half-applied override.
type assignmentLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAssignmentLocks() *assignmentLocks {
	return &assignmentLocks{locks: make(map[int64]*sync.Mutex)}
}

func (a *assignmentLocks) lock(assignmentID int64) func() {
	a.mu.Lock()
	l, ok := a.locks[assignmentID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[assignmentID] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}
