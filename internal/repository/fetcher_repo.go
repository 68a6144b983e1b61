package repository

import (
	"context"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// PageFetcher defines the contract for fetching the raw HTML of a URL.
// The core does not care how it is implemented (browser automation, HTTP
// client, cache).
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// DocumentExtractor maps a fetched page to a structured snapshot of its
// metadata fields, relation links and glossary terms.
type DocumentExtractor interface {
	Extract(url, html string) (*entity.DocumentSnapshot, error)
}
