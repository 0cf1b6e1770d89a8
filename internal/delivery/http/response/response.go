package response

import "time"

type SubmitReportResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ReportID int64  `json:"report_id"`
}

// ReportStatusResponse is a DTO for report status, mirroring entity.Report.
type ReportStatusResponse struct {
	ID          int64      `json:"id"`
	SiteID      int64      `json:"site_id"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	FilePath    string     `json:"file_path,omitempty"`
	PublicURL   string     `json:"public_url,omitempty"`
	Attempts    int        `json:"attempts,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
