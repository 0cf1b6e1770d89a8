package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/user/report-service/internal/repository"
)

const reportQueueKey = "reports:queue"

// QueueRepoImpl provides a concrete implementation for the
// QueueRepository interface using a Redis list.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a report ID to the left side of the list.
func (r *QueueRepoImpl) Push(ctx context.Context, reportID int64) error {
	return r.client.LPush(ctx, reportQueueKey, strconv.FormatInt(reportID, 10)).Err()
}

// Pop removes and returns a report ID from the right side of the list.
// An empty list maps to repository.ErrQueueEmpty.
func (r *QueueRepoImpl) Pop(ctx context.Context) (int64, error) {
	raw, err := r.client.RPop(ctx, reportQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, repository.ErrQueueEmpty
		}
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, reportQueueKey).Result()
}
