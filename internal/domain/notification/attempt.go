package notification

import (
	"database/sql"
	"time"
)

// Outcome is the terminal result of one delivery try.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
	// OutcomeUnknown marks a try that was cancelled mid-flight (process
	// shutdown) before the provider answered.
	OutcomeUnknown Outcome = "unknown"
)

// Category tags what kind of notification produced the attempt.
type Category string

const (
	CategoryDaily        Category = "daily"
	CategoryWeeklyDigest Category = "weekly-digest"
	CategoryManual       Category = "manual"
)

// Attempt is one delivery try against one (assignment, address) pair.
// Append-only audit record; never mutated after creation. Digest attempts
// carry no assignment reference.
type Attempt struct {
	ID           int64
	AssignmentID sql.NullInt64
	Recipient    string // recipient name snapshot
	Address      string
	Category     Category
	Outcome      Outcome
	ProviderID   sql.NullString // provider reference when sent
	ErrorDetail  sql.NullString // last error when failed
	AttemptedAt  time.Time
}
