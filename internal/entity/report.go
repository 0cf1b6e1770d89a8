package entity

import "time"

type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

type ReportFormat string

const (
	FormatXLSX ReportFormat = "xlsx"
	FormatHTML ReportFormat = "html"
)

// Report mirrors the `reports` PostgreSQL table schema. Status moves
// pending → processing → completed|failed; a retryable failure goes back
// to pending with NextAttemptAt set.
type Report struct {
	ID            int64
	UserID        int64
	SiteID        int64
	Format        ReportFormat
	Filters       FilterParams
	Status        ReportStatus
	FilePath      string
	PublicURL     string
	ErrorMessage  string
	Attempts      int
	NextAttemptAt *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Site mirrors the `sites` PostgreSQL table schema. Only the fields the
// ownership check needs are modeled here.
type Site struct {
	ID     int64
	UserID int64
	Domain string
}
