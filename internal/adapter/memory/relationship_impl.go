package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/legaldoc-crawler/internal/entity"
)

// RelationshipRepo is an in-memory RelationshipRepository.
type RelationshipRepo struct {
	mu     sync.Mutex
	nextID int64
	edges  []*entity.Relationship
	seen   map[string]struct{}
}

func NewRelationshipRepo() *RelationshipRepo {
	return &RelationshipRepo{seen: make(map[string]struct{})}
}

func (r *RelationshipRepo) RecordEdge(ctx context.Context, sourceDocID int64, targetURL, relType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%d|%s|%s", sourceDocID, targetURL, relType)
	if _, dup := r.seen[key]; dup {
		return nil
	}
	r.seen[key] = struct{}{}

	r.nextID++
	r.edges = append(r.edges, &entity.Relationship{
		ID:           r.nextID,
		SourceDocID:  sourceDocID,
		TargetDocURL: targetURL,
		Type:         relType,
	})
	return nil
}

func (r *RelationshipRepo) FindUnresolved(ctx context.Context, afterID int64, limit int) ([]*entity.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Relationship
	for _, e := range r.edges {
		if e.TargetDocID != nil || e.ID <= afterID {
			continue
		}
		out = append(out, cloneEdge(e))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *RelationshipRepo) Resolve(ctx context.Context, id, targetDocID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.ID == id {
			if e.TargetDocID == nil {
				e.TargetDocID = &targetDocID
			}
			return nil
		}
	}
	return nil
}

// All returns every edge; test helper.
func (r *RelationshipRepo) All() []*entity.Relationship {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Relationship, 0, len(r.edges))
	for _, e := range r.edges {
		out = append(out, cloneEdge(e))
	}
	return out
}

func cloneEdge(e *entity.Relationship) *entity.Relationship {
	c := *e
	if e.TargetDocID != nil {
		id := *e.TargetDocID
		c.TargetDocID = &id
	}
	return &c
}
