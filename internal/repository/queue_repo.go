package repository

import (
	"context"
	"time"
)

// QueueRepository defines the interface for the FIFO queue of report jobs.
type QueueRepository interface {
	// Push adds a report ID to the end of the queue.
	Push(ctx context.Context, reportID int64) error
	// Pop removes and returns a report ID from the front of the queue, or
	// ErrQueueEmpty.
	Pop(ctx context.Context) (int64, error)
	// Size returns the current number of queued jobs.
	Size(ctx context.Context) (int64, error)
}

// DedupRepository defines the interface for the duplicate-request guard:
// an identical report request within the guard window is answered with
// the already-queued report instead of a new job.
type DedupRepository interface {
	// MarkRequested remembers that a request with this key produced the
	// given report, for ttl.
	MarkRequested(ctx context.Context, key string, reportID int64, ttl time.Duration) error
	// RecentReport returns the report ID remembered for the key, if any.
	RecentReport(ctx context.Context, key string) (int64, bool, error)
	// Clear forgets the key, used for forced resubmission.
	Clear(ctx context.Context, key string) error
}
