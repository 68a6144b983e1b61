package repository

import (
	"context"
	"time"
)

// VisitedRepository is the short-lived fetch gate: it remembers which URLs
// were fetched recently so a submitted URL is not re-fetched within the
// deduplication window. This is separate from the persistent two-tier
// re-crawl policy on the crawl_url table.
type VisitedRepository interface {
	// MarkVisited marks a URL as fetched with a specific expiry time.
	MarkVisited(ctx context.Context, url string, expiry time.Duration) error
	// IsVisited checks if a URL has been fetched within the window.
	IsVisited(ctx context.Context, url string) (bool, error)
	// RemoveVisited drops a URL from the gate, used for forced re-crawls.
	RemoveVisited(ctx context.Context, url string) error
}
