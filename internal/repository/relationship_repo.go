package repository

import (
	"context"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// RelationshipRepository manages directed edges between documents.
type RelationshipRepository interface {
	// RecordEdge inserts an edge. A duplicate
	// (sourceDocID, targetURL, relType) triple is a silent no-op.
	RecordEdge(ctx context.Context, sourceDocID int64, targetURL, relType string) error
	// FindUnresolved returns up to limit edges with a nil target reference,
	// with ID greater than afterID, in ID order.
	FindUnresolved(ctx context.Context, afterID int64, limit int) ([]*entity.Relationship, error)
	// Resolve sets the target document version id on an edge. Resolving an
	// already-resolved edge is a no-op.
	Resolve(ctx context.Context, id, targetDocID int64) error
}
