package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// SessionTracker wraps a batch of crawl operations in an auditable session
// record: RUNNING -> COMPLETED|FAILED, with per-outcome counters.
type SessionTracker interface {
	// Start creates a RUNNING session with zero counters.
	Start(ctx context.Context) (int64, error)
	// RecordOutcome increments the matching counter, once per processed
	// item.
	RecordOutcome(ctx context.Context, sessionID int64, outcome entity.Outcome) error
	// Complete closes the session as COMPLETED. Closing a session that is
	// already terminal fails with repository.ErrSessionTerminal.
	Complete(ctx context.Context, sessionID int64, notes string) error
	// Fail closes the session as FAILED, storing the reason in notes.
	Fail(ctx context.Context, sessionID int64, reason string) error
	// Get retrieves the session record.
	Get(ctx context.Context, sessionID int64) (*entity.CrawlSession, error)
	// FailStale force-fails sessions left RUNNING by interrupted crawls.
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type sessionTrackerUseCase struct {
	sessionRepo repository.SessionRepository
}

// NewSessionTracker creates a new SessionTracker use case.
func NewSessionTracker(sessionRepo repository.SessionRepository) SessionTracker {
	return &sessionTrackerUseCase{sessionRepo: sessionRepo}
}

func (uc *sessionTrackerUseCase) Start(ctx context.Context) (int64, error) {
	id, err := uc.sessionRepo.Create(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info("Crawl session started", "session_id", id)
	return id, nil
}

func (uc *sessionTrackerUseCase) RecordOutcome(ctx context.Context, sessionID int64, outcome entity.Outcome) error {
	return uc.sessionRepo.IncrementOutcome(ctx, sessionID, outcome)
}

func (uc *sessionTrackerUseCase) Complete(ctx context.Context, sessionID int64, notes string) error {
	if err := uc.sessionRepo.Close(ctx, sessionID, entity.SessionCompleted, notes); err != nil {
		return err
	}
	slog.Info("Crawl session completed", "session_id", sessionID)
	return nil
}

func (uc *sessionTrackerUseCase) Fail(ctx context.Context, sessionID int64, reason string) error {
	if err := uc.sessionRepo.Close(ctx, sessionID, entity.SessionFailed, reason); err != nil {
		return err
	}
	slog.Warn("Crawl session failed", "session_id", sessionID, "reason", reason)
	return nil
}

func (uc *sessionTrackerUseCase) Get(ctx context.Context, sessionID int64) (*entity.CrawlSession, error) {
	return uc.sessionRepo.Find(ctx, sessionID)
}

func (uc *sessionTrackerUseCase) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	closed, err := uc.sessionRepo.FailStale(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		slog.Warn("Force-failed stale crawl sessions", "count", closed, "older_than", olderThan.String())
	}
	return closed, nil
}
