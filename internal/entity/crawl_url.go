package entity

import "time"

// CrawlURLStatus tracks where a URL is in its crawl cycle.
type CrawlURLStatus string

const (
	StatusPending   CrawlURLStatus = "pending"
	StatusCrawled   CrawlURLStatus = "crawled"
	StatusCompleted CrawlURLStatus = "completed"
	StatusFailed    CrawlURLStatus = "failed"
)

// CrawlURL mirrors the `crawl_url` PostgreSQL table schema.
// There is exactly one row per canonical URL ever discovered.
type CrawlURL struct {
	ID             int64
	URL            string
	DocID          string
	Title          string
	LastUpdateDate *time.Time // site-reported update date, nil when the site has none
	Status         CrawlURLStatus
	Priority       int
	RetryCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DiscoveredLink is a single hit from a search-result or listing page,
// before it has been reconciled against the crawl_url table.
type DiscoveredLink struct {
	URL                string
	Title              string
	ReportedUpdateDate *time.Time
}
