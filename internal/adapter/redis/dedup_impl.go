package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const recentRequestPrefix = "reports:recent:"

// DedupRepoImpl provides a concrete implementation for the
// DedupRepository interface using Redis keys with expiry.
type DedupRepoImpl struct {
	client *redis.Client
}

// NewDedupRepo creates a new instance of DedupRepoImpl.
func NewDedupRepo(client *redis.Client) *DedupRepoImpl {
	return &DedupRepoImpl{client: client}
}

func (r *DedupRepoImpl) key(requestHash string) string {
	return fmt.Sprintf("%s%s", recentRequestPrefix, requestHash)
}

// MarkRequested remembers the report produced for this request hash.
// SETEX is atomic and sets the key with an expiry.
func (r *DedupRepoImpl) MarkRequested(ctx context.Context, requestHash string, reportID int64, ttl time.Duration) error {
	return r.client.SetEx(ctx, r.key(requestHash), strconv.FormatInt(reportID, 10), ttl).Err()
}

// RecentReport returns the report ID remembered for the request hash.
func (r *DedupRepoImpl) RecentReport(ctx context.Context, requestHash string) (int64, bool, error) {
	raw, err := r.client.Get(ctx, r.key(requestHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Clear forgets the request hash, used for forced resubmission.
func (r *DedupRepoImpl) Clear(ctx context.Context, requestHash string) error {
	return r.client.Del(ctx, r.key(requestHash)).Err()
}
