package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// CatalogRepo is an in-memory CatalogRepository. Unlike the production
// table it enforces nothing about URL uniqueness, which makes it usable for
// seeding the historic duplicate rows the dedup utilities exist to clean up.
type CatalogRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []*entity.CatalogEntry
}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{}
}

func (r *CatalogRepo) FindByURL(ctx context.Context, url string) (*entity.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var earliest *entity.CatalogEntry
	for _, e := range r.entries {
		if e.URL != url {
			continue
		}
		if earliest == nil || e.CreatedAt.Before(earliest.CreatedAt) {
			earliest = e
		}
	}
	if earliest == nil {
		return nil, repository.ErrNotFound
	}
	c := *earliest
	return &c, nil
}

func (r *CatalogRepo) Insert(ctx context.Context, e *entity.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *e
	stored.TermID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	r.entries = append(r.entries, &stored)
	e.TermID = stored.TermID
	return nil
}

func (r *CatalogRepo) Update(ctx context.Context, e *entity.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.entries {
		if stored.TermID == e.TermID {
			stored.Name = e.Name
			stored.Definition = e.Definition
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *CatalogRepo) ListAll(ctx context.Context) ([]*entity.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.CatalogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].URL != out[j].URL {
			return out[i].URL < out[j].URL
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CompactSequence resets the id counter to the highest surviving id.
func (r *CatalogRepo) CompactSequence(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, e := range r.entries {
		if e.TermID > max {
			max = e.TermID
		}
	}
	r.nextID = max
	return nil
}

func (r *CatalogRepo) DeleteGroup(ctx context.Context, termIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[int64]struct{}, len(termIDs))
	for _, id := range termIDs {
		drop[id] = struct{}{}
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if _, gone := drop[e.TermID]; !gone {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}
