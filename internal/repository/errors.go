package repository

import "errors"

var (
	// ErrDataSource covers any upstream fetch failure of the position API:
	// network, non-2xx status, or an undecodable body. Retryable at the
	// job level.
	ErrDataSource = errors.New("position data source unavailable")

	// ErrSiteAccess means the report's site is missing or not owned by the
	// report's user.
	ErrSiteAccess = errors.New("site not found or not owned by user")

	// ErrEmptyArtifact means an exporter finalized into a missing or
	// zero-byte file.
	ErrEmptyArtifact = errors.New("exported artifact is missing or empty")

	// ErrAggregationLimit means a scan accumulated more distinct keywords
	// than the configured cap allows.
	ErrAggregationLimit = errors.New("aggregation exceeded keyword limit")

	ErrReportNotFound = errors.New("report not found")

	ErrQueueEmpty = errors.New("report queue is empty")
)
