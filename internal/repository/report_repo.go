package repository

import (
	"context"
	"time"

	"github.com/user/report-service/internal/entity"
)

// ReportRepository defines the interface for persisting report jobs and
// their status transitions.
type ReportRepository interface {
	// Create inserts a new pending report and fills in its ID.
	Create(ctx context.Context, report *entity.Report) error
	// GetByID retrieves a report, or ErrReportNotFound.
	GetByID(ctx context.Context, id int64) (*entity.Report, error)
	// GetSite resolves a site owned by the given user, or ErrSiteAccess.
	GetSite(ctx context.Context, siteID, userID int64) (*entity.Site, error)
	// MarkProcessing transitions a report to processing.
	MarkProcessing(ctx context.Context, id int64) error
	// MarkCompleted stores the artifact location and transitions to
	// completed.
	MarkCompleted(ctx context.Context, id int64, filePath, publicURL string) error
	// MarkFailed transitions to failed with the last error message. Safe to
	// call more than once for the same report.
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	// ScheduleRetry puts a report back to pending with the attempt count
	// and the time it becomes due again.
	ScheduleRetry(ctx context.Context, id int64, errorMessage string, attempts int, nextAttemptAt time.Time) error
	// FindRetryable claims up to limit reports whose retry is due and
	// returns their IDs. Claimed reports are not returned twice.
	FindRetryable(ctx context.Context, limit int) ([]int64, error)
}
