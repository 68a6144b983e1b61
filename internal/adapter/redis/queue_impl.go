package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const fetchQueueKey = "lawdocs:fetch_queue"

// QueueRepoImpl implements the QueueRepository interface using a Redis list.
// Producers push on the left, the crawl driver pops from the right, so
// directly submitted URLs are served in submission order.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a URL to the left side of the list.
func (r *QueueRepoImpl) Push(ctx context.Context, url string) error {
	return r.client.LPush(ctx, fetchQueueKey, url).Err()
}

// Pop removes and returns a URL from the right side of the list. An empty
// queue yields an empty string, not an error.
func (r *QueueRepoImpl) Pop(ctx context.Context) (string, error) {
	url, err := r.client.RPop(ctx, fetchQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return url, err
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, fetchQueueKey).Result()
}
