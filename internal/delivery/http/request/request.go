package request

import "github.com/user/report-service/internal/entity"

// SubmitReportRequest is the payload for queueing a new report. UserID is
// filled in by the upstream auth gateway, which this service trusts.
type SubmitReportRequest struct {
	UserID  int64               `json:"user_id"`
	SiteID  int64               `json:"site_id"`
	Format  string              `json:"format"` // "xlsx" (default) or "html"
	Force   bool                `json:"force"`
	Filters entity.FilterParams `json:"filters"`
}
