package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// SessionRepo is an in-memory SessionRepository with the same lifecycle
// guarantees as the postgres implementation: counters only move on RUNNING
// sessions and terminal statuses are final.
type SessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*entity.CrawlSession
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]*entity.CrawlSession)}
}

func (r *SessionRepo) Create(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.sessions[r.nextID] = &entity.CrawlSession{
		SessionID: r.nextID,
		StartedAt: time.Now(),
		Status:    entity.SessionRunning,
	}
	return r.nextID, nil
}

func (r *SessionRepo) Find(ctx context.Context, sessionID int64) (*entity.CrawlSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *SessionRepo) IncrementOutcome(ctx context.Context, sessionID int64, outcome entity.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.Status != entity.SessionRunning {
		return repository.ErrSessionTerminal
	}
	switch outcome {
	case entity.OutcomeNew:
		s.NewItems++
	case entity.OutcomeUpdated:
		s.UpdatedItems++
	case entity.OutcomeUnchanged:
		s.UnchangedItems++
	case entity.OutcomeFailed:
		s.FailedItems++
	default:
		return fmt.Errorf("unknown outcome %q", outcome)
	}
	s.TotalItems++
	return nil
}

func (r *SessionRepo) Close(ctx context.Context, sessionID int64, status entity.SessionStatus, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.Status != entity.SessionRunning {
		return repository.ErrSessionTerminal
	}
	now := time.Now()
	s.Status = status
	s.CompletedAt = &now
	s.Notes = notes
	return nil
}

func (r *SessionRepo) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	closed := 0
	for _, s := range r.sessions {
		if s.Status == entity.SessionRunning && s.StartedAt.Before(cutoff) {
			now := time.Now()
			s.Status = entity.SessionFailed
			s.CompletedAt = &now
			s.Notes = "force-failed: session exceeded staleness threshold"
			closed++
		}
	}
	return closed, nil
}

func cloneSession(s *entity.CrawlSession) *entity.CrawlSession {
	c := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
