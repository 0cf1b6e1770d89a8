package repository

import (
	"context"

	"github.com/user/report-service/internal/entity"
)

// CollectorRepository defines the contract for fetching tracked position
// data from the upstream position service.
//
// The upstream guarantees that every record for a given
// keyword/date/source combination appears in exactly one page of a scan.
// No per-keyword page locality is assumed: rows for one keyword may be
// spread over several pages.
type CollectorRepository interface {
	// CollectStatistics fetches the aggregate counters for a filter spec in
	// a single call.
	CollectStatistics(ctx context.Context, spec entity.PositionFilterSpec) (*entity.StatisticsSummary, error)
	// CollectPositionsBatch fetches one page of matching records. Pages
	// start at 1; HasMore=false on the returned batch ends the scan.
	CollectPositionsBatch(ctx context.Context, spec entity.PositionFilterSpec, page, perPage int) (*entity.PositionBatch, error)
}
