package repository

import (
	"context"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// CrawlURLRepository manages the one-row-per-URL crawl_url table.
type CrawlURLRepository interface {
	// FindByURL retrieves the row for a URL. Returns ErrNotFound when absent.
	FindByURL(ctx context.Context, url string) (*entity.CrawlURL, error)
	// GetOrCreate resolves the row for a URL, inserting a pending row with
	// priority 0 when the URL has never been seen. Idempotent.
	GetOrCreate(ctx context.Context, url string) (*entity.CrawlURL, error)
	// Create inserts a new row. The URL must not exist yet.
	Create(ctx context.Context, u *entity.CrawlURL) error
	// Requeue refreshes title and last_update_date, resets status to pending
	// and sets the given priority.
	Requeue(ctx context.Context, url, title string, updateDate *time.Time, priority int) error
	// SetStatus updates the crawl status of a URL.
	SetStatus(ctx context.Context, url string, status entity.CrawlURLStatus) error
	// MarkFailed sets status to failed and increments retry_count.
	MarkFailed(ctx context.Context, url string) error
	// FindPending returns up to limit pending URLs, highest priority first.
	FindPending(ctx context.Context, limit int) ([]*entity.CrawlURL, error)
}
