package repository

import (
	"context"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// SessionRepository manages crawl session records.
type SessionRepository interface {
	// Create inserts a RUNNING session with zero counters and returns its id.
	Create(ctx context.Context) (int64, error)
	// Find retrieves a session. Returns ErrNotFound when absent.
	Find(ctx context.Context, sessionID int64) (*entity.CrawlSession, error)
	// IncrementOutcome bumps the counter matching the outcome and
	// total_items on a RUNNING session. Returns ErrSessionTerminal when the
	// session has already been closed.
	IncrementOutcome(ctx context.Context, sessionID int64, outcome entity.Outcome) error
	// Close transitions a RUNNING session to the given terminal status,
	// stamping completed_at. Returns ErrSessionTerminal when the session is
	// already terminal.
	Close(ctx context.Context, sessionID int64, status entity.SessionStatus, notes string) error
	// FailStale force-fails sessions that have been RUNNING longer than
	// olderThan and returns how many were closed. Used by cleanup sweeps
	// after interrupted crawls.
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}
