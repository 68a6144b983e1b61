package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// SessionRepoImpl provides a concrete implementation for the
// SessionRepository interface using PostgreSQL.
type SessionRepoImpl struct {
	db *pgxpool.Pool
}

// NewSessionRepo creates a new instance of SessionRepoImpl.
func NewSessionRepo(db *pgxpool.Pool) *SessionRepoImpl {
	return &SessionRepoImpl{db: db}
}

func (r *SessionRepoImpl) Create(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO crawl_sessions (status) VALUES ('RUNNING') RETURNING session_id`,
	).Scan(&id)
	return id, err
}

func (r *SessionRepoImpl) Find(ctx context.Context, sessionID int64) (*entity.CrawlSession, error) {
	var s entity.CrawlSession
	err := r.db.QueryRow(ctx,
		`SELECT session_id, started_at, completed_at, status,
		        total_items, new_items, updated_items, unchanged_items, failed_items, notes
		 FROM crawl_sessions
		 WHERE session_id = $1`,
		sessionID,
	).Scan(&s.SessionID, &s.StartedAt, &s.CompletedAt, &s.Status,
		&s.TotalItems, &s.NewItems, &s.UpdatedItems, &s.UnchangedItems, &s.FailedItems, &s.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var outcomeColumns = map[entity.Outcome]string{
	entity.OutcomeNew:       "new_items",
	entity.OutcomeUpdated:   "updated_items",
	entity.OutcomeUnchanged: "unchanged_items",
	entity.OutcomeFailed:    "failed_items",
}

// IncrementOutcome bumps one outcome counter and total_items in a single
// statement guarded on status, so counters never move on a closed session.
func (r *SessionRepoImpl) IncrementOutcome(ctx context.Context, sessionID int64, outcome entity.Outcome) error {
	col, ok := outcomeColumns[outcome]
	if !ok {
		return fmt.Errorf("unknown outcome %q", outcome)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_sessions
		 SET `+col+` = `+col+` + 1, total_items = total_items + 1
		 WHERE session_id = $1 AND status = 'RUNNING'`,
		sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrTerminal(ctx, sessionID)
	}
	return nil
}

func (r *SessionRepoImpl) Close(ctx context.Context, sessionID int64, status entity.SessionStatus, notes string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_sessions
		 SET status = $2, completed_at = NOW(), notes = $3
		 WHERE session_id = $1 AND status = 'RUNNING'`,
		sessionID, status, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrTerminal(ctx, sessionID)
	}
	return nil
}

func (r *SessionRepoImpl) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_sessions
		 SET status = 'FAILED', completed_at = NOW(),
		     notes = 'force-failed: session exceeded staleness threshold'
		 WHERE status = 'RUNNING' AND started_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// missOrTerminal distinguishes "no such session" from "session already
// closed" after a guarded update touched zero rows.
func (r *SessionRepoImpl) missOrTerminal(ctx context.Context, sessionID int64) error {
	if _, err := r.Find(ctx, sessionID); err != nil {
		return err
	}
	return repository.ErrSessionTerminal
}
