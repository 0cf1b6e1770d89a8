package repository

import (
	"context"

	"github.com/user/report-service/internal/entity"
)

// SpreadsheetSession is an in-progress workbook owned by exactly one job.
// The column set is frozen by WriteHeaders: rows may only fill columns
// that exist at that point, and dates outside the frozen set are dropped.
// Every session must end in exactly one Finalize or Discard.
type SpreadsheetSession interface {
	// WriteSummary fills the summary sheet with the scan's aggregate
	// counters. A nil summary is a no-op.
	WriteSummary(summary *entity.StatisticsSummary) error
	// WriteHeaders emits the header row: keyword, search volume, then the
	// given dates in order. Must be called once, before any rows.
	WriteHeaders(dates []string) error
	// WriteRows appends one data row per keyword row.
	WriteRows(rows []entity.KeywordRow) error
	// Finalize saves the workbook and returns its file path, or
	// ErrEmptyArtifact if nothing usable was written to disk.
	Finalize() (string, error)
	// Discard releases the session without producing an artifact.
	Discard() error
}

// SpreadsheetExporter opens workbook sessions for xlsx reports.
type SpreadsheetExporter interface {
	Create(ctx context.Context, report *entity.Report) (SpreadsheetSession, error)
}

// HTMLExporter renders a finished aggregation into one flat published
// document and returns its public URL.
type HTMLExporter interface {
	Export(ctx context.Context, report *entity.Report, data *entity.ReportData) (string, error)
}
