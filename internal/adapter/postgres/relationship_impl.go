package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/legaldoc-crawler/internal/entity"
)

// RelationshipRepoImpl provides a concrete implementation for the
// RelationshipRepository interface using PostgreSQL.
type RelationshipRepoImpl struct {
	db *pgxpool.Pool
}

// NewRelationshipRepo creates a new instance of RelationshipRepoImpl.
func NewRelationshipRepo(db *pgxpool.Pool) *RelationshipRepoImpl {
	return &RelationshipRepoImpl{db: db}
}

// RecordEdge inserts an edge; the unique constraint on
// (source_doc_id, target_doc_url, relationship_type) turns duplicates into
// silent no-ops.
func (r *RelationshipRepoImpl) RecordEdge(ctx context.Context, sourceDocID int64, targetURL, relType string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO relationships (source_doc_id, target_doc_url, relationship_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (source_doc_id, target_doc_url, relationship_type) DO NOTHING`,
		sourceDocID, targetURL, relType)
	return err
}

func (r *RelationshipRepoImpl) FindUnresolved(ctx context.Context, afterID int64, limit int) ([]*entity.Relationship, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_doc_id, target_doc_url, target_doc_id, relationship_type
		 FROM relationships
		 WHERE target_doc_id IS NULL AND id > $1
		 ORDER BY id ASC
		 LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*entity.Relationship
	for rows.Next() {
		var e entity.Relationship
		if err := rows.Scan(&e.ID, &e.SourceDocID, &e.TargetDocURL, &e.TargetDocID, &e.Type); err != nil {
			return nil, err
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// Resolve fills in the target reference exactly once; an already-resolved
// edge is left untouched.
func (r *RelationshipRepoImpl) Resolve(ctx context.Context, id, targetDocID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE relationships SET target_doc_id = $2
		 WHERE id = $1 AND target_doc_id IS NULL`,
		id, targetDocID)
	return err
}
