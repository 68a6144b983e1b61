package repository

import (
	"context"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// CatalogRepository manages the glossary term catalog.
type CatalogRepository interface {
	// FindByURL retrieves the entry for a source URL. Returns ErrNotFound
	// when absent. When historic duplicates exist for the URL, the earliest
	// created row is returned.
	FindByURL(ctx context.Context, url string) (*entity.CatalogEntry, error)
	// Insert stores a new entry.
	Insert(ctx context.Context, e *entity.CatalogEntry) error
	// Update refreshes name, definition and updated_at of an existing entry.
	Update(ctx context.Context, e *entity.CatalogEntry) error
	// ListAll returns every entry, ordered by URL then created_at.
	ListAll(ctx context.Context) ([]*entity.CatalogEntry, error)
	// DeleteGroup deletes the given entries atomically: either all of them
	// are removed or, on error, none are.
	DeleteGroup(ctx context.Context, termIDs []int64) error
	// CompactSequence realigns id allocation with the surviving rows after a
	// round of dedup deletions.
	CompactSequence(ctx context.Context) error
}
