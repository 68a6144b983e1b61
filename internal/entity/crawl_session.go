package entity

import "time"

// SessionStatus is the lifecycle state of a crawl session.
// COMPLETED and FAILED are terminal; a session never leaves them.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "RUNNING"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionFailed    SessionStatus = "FAILED"
)

// Outcome classifies the result of processing one item in a session.
type Outcome string

const (
	OutcomeNew       Outcome = "new"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// CrawlSession mirrors the `crawl_sessions` PostgreSQL table schema.
// Invariant: Status == RUNNING implies CompletedAt == nil, and
// TotalItems == NewItems + UpdatedItems + UnchangedItems + FailedItems.
type CrawlSession struct {
	SessionID      int64
	StartedAt      time.Time
	CompletedAt    *time.Time
	Status         SessionStatus
	TotalItems     int
	NewItems       int
	UpdatedItems   int
	UnchangedItems int
	FailedItems    int
	Notes          string
}
