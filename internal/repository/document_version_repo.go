package repository

import (
	"context"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// DocumentVersionRepository manages the append-only version chain of a
// crawled document. Implementations must serialize AppendIfChanged per
// doc_url_id so that two concurrent writers cannot both insert version 1.
type DocumentVersionRepository interface {
	// Latest returns the highest-version row for a document.
	// Returns ErrNotFound when the document has no versions yet.
	Latest(ctx context.Context, docURLID int64) (*entity.DocumentVersion, error)
	// AppendIfChanged atomically compares contentHash against the latest
	// version's hash and inserts a new row with version = latest+1 (or 1)
	// when they differ. When the hash is unchanged it returns the existing
	// latest row and created=false, writing nothing.
	AppendIfChanged(ctx context.Context, docURLID int64, contentHash string, extraData map[string]any) (*entity.DocumentVersion, bool, error)
	// ListByDocURL returns the full version chain, oldest first.
	ListByDocURL(ctx context.Context, docURLID int64) ([]*entity.DocumentVersion, error)
}
