package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/legaldoc-crawler/pkg/utils"
)

const fetchedKeyPrefix = "lawdocs:fetched:"

// VisitedRepoImpl implements the VisitedRepository fetch gate using Redis
// keys with a TTL. URLs are hashed so arbitrary document URLs make safe keys.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

func (r *VisitedRepoImpl) key(url string) string {
	return fmt.Sprintf("%s%s", fetchedKeyPrefix, utils.HashURL(url))
}

// MarkVisited marks a URL as fetched for the duration of the dedup window.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, url string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.key(url), "1", expiry).Err()
}

// IsVisited reports whether a URL was fetched within the dedup window.
func (r *VisitedRepoImpl) IsVisited(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.key(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// RemoveVisited drops the gate entry, used when a re-crawl is forced.
func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.key(url)).Err()
}
