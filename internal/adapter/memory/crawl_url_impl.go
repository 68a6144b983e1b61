package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/utils"
)

// CrawlURLRepo is an in-memory CrawlURLRepository backed by a mutex-guarded
// map. It is the test backing for the store contracts; the production
// implementation lives in the postgres adapter.
type CrawlURLRepo struct {
	mu     sync.Mutex
	nextID int64
	byURL  map[string]*entity.CrawlURL
}

func NewCrawlURLRepo() *CrawlURLRepo {
	return &CrawlURLRepo{byURL: make(map[string]*entity.CrawlURL)}
}

func (r *CrawlURLRepo) FindByURL(ctx context.Context, url string) (*entity.CrawlURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byURL[url]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCrawlURL(u), nil
}

func (r *CrawlURLRepo) GetOrCreate(ctx context.Context, url string) (*entity.CrawlURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byURL[url]; ok {
		return cloneCrawlURL(u), nil
	}
	u := r.insertLocked(&entity.CrawlURL{
		URL:    url,
		DocID:  utils.ExtractDocID(url),
		Status: entity.StatusPending,
	})
	return cloneCrawlURL(u), nil
}

func (r *CrawlURLRepo) Create(ctx context.Context, u *entity.CrawlURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.insertLocked(cloneCrawlURL(u))
	u.ID = stored.ID
	return nil
}

func (r *CrawlURLRepo) insertLocked(u *entity.CrawlURL) *entity.CrawlURL {
	r.nextID++
	u.ID = r.nextID
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = entity.StatusPending
	}
	r.byURL[u.URL] = u
	return u
}

func (r *CrawlURLRepo) Requeue(ctx context.Context, url, title string, updateDate *time.Time, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byURL[url]
	if !ok {
		return repository.ErrNotFound
	}
	u.Title = title
	u.LastUpdateDate = updateDate
	u.Status = entity.StatusPending
	u.Priority = priority
	u.UpdatedAt = time.Now()
	return nil
}

func (r *CrawlURLRepo) SetStatus(ctx context.Context, url string, status entity.CrawlURLStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byURL[url]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

func (r *CrawlURLRepo) MarkFailed(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byURL[url]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = entity.StatusFailed
	u.RetryCount++
	u.UpdatedAt = time.Now()
	return nil
}

func (r *CrawlURLRepo) FindPending(ctx context.Context, limit int) ([]*entity.CrawlURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*entity.CrawlURL
	for _, u := range r.byURL {
		if u.Status == entity.StatusPending {
			pending = append(pending, cloneCrawlURL(u))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		return pending[i].ID < pending[j].ID
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func cloneCrawlURL(u *entity.CrawlURL) *entity.CrawlURL {
	c := *u
	if u.LastUpdateDate != nil {
		d := *u.LastUpdateDate
		c.LastUpdateDate = &d
	}
	return &c
}
