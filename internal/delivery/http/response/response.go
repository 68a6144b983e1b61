package response

import "time"

type UpsertLinksResponse struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

type SubmitCrawlResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	CrawlRequestID string `json:"crawl_request_id"`
}

type CrawlStatusResponse struct {
	URL            string     `json:"url"`
	DocID          string     `json:"doc_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	CurrentStatus  string     `json:"current_status"` // "pending", "crawled", "completed", "failed"
	LastUpdateDate *time.Time `json:"last_update_date,omitempty"`
	Priority       int        `json:"priority"`
	RetryCount     int        `json:"retry_count"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type DocumentVersionResponse struct {
	Version     int            `json:"version"`
	ContentHash string         `json:"content_hash"`
	ExtraData   map[string]any `json:"extra_data"`
	CreatedAt   time.Time      `json:"created_at"`
}

type DocumentVersionsResponse struct {
	URL      string                    `json:"url"`
	Versions []DocumentVersionResponse `json:"versions"`
}

type SessionResponse struct {
	SessionID      int64      `json:"session_id"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TotalItems     int        `json:"total_items"`
	NewItems       int        `json:"new_items"`
	UpdatedItems   int        `json:"updated_items"`
	UnchangedItems int        `json:"unchanged_items"`
	FailedItems    int        `json:"failed_items"`
	Notes          string     `json:"notes,omitempty"`
}

type DedupResponse struct {
	Deleted int `json:"deleted"`
}
