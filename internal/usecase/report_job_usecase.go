package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
	"github.com/user/report-service/pkg/metrics"
)

// JobConfig holds the orchestration knobs of a report job attempt.
type JobConfig struct {
	// PageSize is the fixed per-page record count requested from the
	// collector. Distinct from the filter's limit cap, which bounds the
	// upstream source itself.
	PageSize int
	// MaxKeywords bounds the in-memory aggregation of one scan.
	MaxKeywords int
	// AttemptTimeout aborts a whole attempt, collection included.
	AttemptTimeout time.Duration
	// MaxAttempts is the total attempt budget per report.
	MaxAttempts int
	// Backoff holds the delays between attempts; the last entry repeats.
	Backoff []time.Duration
}

// ReportProcessor defines the interface for the worker-facing side of the
// report pipeline.
type ReportProcessor interface {
	// ProcessNextReport pops one job from the queue and runs a full
	// attempt. It reports whether a job was found; an empty queue is a
	// normal state, not an error.
	ProcessNextReport(ctx context.Context) (bool, error)
}

type reportJobUseCase struct {
	reports     repository.ReportRepository
	queue       repository.QueueRepository
	collector   repository.CollectorRepository
	spreadsheet repository.SpreadsheetExporter
	html        repository.HTMLExporter
	cfg         JobConfig
}

// NewReportProcessor creates the report pipeline use case.
func NewReportProcessor(
	reports repository.ReportRepository,
	queue repository.QueueRepository,
	collector repository.CollectorRepository,
	spreadsheet repository.SpreadsheetExporter,
	html repository.HTMLExporter,
	cfg JobConfig,
) ReportProcessor {
	return &reportJobUseCase{
		reports:     reports,
		queue:       queue,
		collector:   collector,
		spreadsheet: spreadsheet,
		html:        html,
		cfg:         cfg,
	}
}

func (uc *reportJobUseCase) ProcessNextReport(ctx context.Context) (bool, error) {
	reportID, err := uc.queue.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop report from queue: %w", err)
	}

	report, err := uc.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			slog.Warn("Queued report no longer exists", "report_id", reportID)
			return true, nil
		}
		return true, fmt.Errorf("failed to load report %d: %w", reportID, err)
	}

	slog.Info("Processing report", "report_id", report.ID, "site_id", report.SiteID, "format", report.Format, "attempt", report.Attempts+1)

	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(ctx, uc.cfg.AttemptTimeout)
	runErr := uc.runAttempt(attemptCtx, report)
	cancel()
	metrics.ReportJobDuration.WithLabelValues(string(report.Format)).Observe(time.Since(start).Seconds())

	if runErr != nil {
		slog.Error("Report attempt failed", "report_id", report.ID, "site_id", report.SiteID, "error", runErr)
		uc.handleFailure(ctx, report, runErr)
		return true, nil
	}

	metrics.ReportJobsTotal.WithLabelValues("success", "").Inc()
	slog.Info("Report completed", "report_id", report.ID, "duration_ms", time.Since(start).Milliseconds())
	return true, nil
}

// runAttempt executes one full pipeline pass: collect, aggregate, export,
// persist. Pagination is strictly sequential; the aggregation state and
// exporter session are owned by this attempt alone.
func (uc *reportJobUseCase) runAttempt(ctx context.Context, report *entity.Report) error {
	if err := uc.reports.MarkProcessing(ctx, report.ID); err != nil {
		return fmt.Errorf("failed to mark report %d processing: %w", report.ID, err)
	}

	if _, err := uc.reports.GetSite(ctx, report.SiteID, report.UserID); err != nil {
		return err
	}

	spec := entity.NewPositionFilterSpec(report.SiteID, report.Filters)

	summary, err := uc.collector.CollectStatistics(ctx, spec)
	if err != nil {
		return err
	}

	state := NewAggregationState(uc.cfg.MaxKeywords)
	for page := 1; ; page++ {
		batch, err := uc.collector.CollectPositionsBatch(ctx, spec, page, uc.cfg.PageSize)
		if err != nil {
			return err
		}
		metrics.PagesFetchedTotal.Inc()

		if err := state.Consume(batch.Records); err != nil {
			return err
		}
		if !batch.HasMore {
			break
		}
	}

	emptyKeywords, malformedDates := state.Skipped()
	if emptyKeywords > 0 {
		metrics.RowsSkippedTotal.WithLabelValues("empty_keyword").Add(float64(emptyKeywords))
	}
	if malformedDates > 0 {
		metrics.RowsSkippedTotal.WithLabelValues("malformed_date").Add(float64(malformedDates))
		slog.Warn("Skipped records with malformed dates", "report_id", report.ID, "count", malformedDates)
	}

	data := &entity.ReportData{
		Summary:     summary,
		Dates:       state.Dates(),
		Rows:        state.Rows(),
		GeneratedAt: time.Now().UTC(),
	}

	switch report.Format {
	case entity.FormatHTML:
		publicURL, err := uc.html.Export(ctx, report, data)
		if err != nil {
			return err
		}
		return uc.reports.MarkCompleted(ctx, report.ID, "", publicURL)
	default:
		filePath, err := uc.exportSpreadsheet(ctx, report, data)
		if err != nil {
			return err
		}
		return uc.reports.MarkCompleted(ctx, report.ID, filePath, "")
	}
}

func (uc *reportJobUseCase) exportSpreadsheet(ctx context.Context, report *entity.Report, data *entity.ReportData) (string, error) {
	session, err := uc.spreadsheet.Create(ctx, report)
	if err != nil {
		return "", err
	}

	finalized := false
	defer func() {
		if !finalized {
			if err := session.Discard(); err != nil {
				slog.Warn("Failed to discard spreadsheet session", "report_id", report.ID, "error", err)
			}
		}
	}()

	if err := session.WriteSummary(data.Summary); err != nil {
		return "", err
	}
	if err := session.WriteHeaders(data.Dates); err != nil {
		return "", err
	}
	if err := session.WriteRows(data.Rows); err != nil {
		return "", err
	}

	filePath, err := session.Finalize()
	if err != nil {
		return "", err
	}
	finalized = true
	return filePath, nil
}

// handleFailure stores the error verbatim and either schedules a retry or
// marks the report failed once the attempt budget is spent. The report's
// Attempts field counts attempts finished before this one.
func (uc *reportJobUseCase) handleFailure(ctx context.Context, report *entity.Report, jobErr error) {
	errorType := classifyError(jobErr)
	metrics.ReportJobsTotal.WithLabelValues("failure", errorType).Inc()

	attempts := report.Attempts + 1
	if attempts >= uc.cfg.MaxAttempts {
		if err := uc.reports.MarkFailed(ctx, report.ID, jobErr.Error()); err != nil {
			slog.Error("Failed to mark report failed", "report_id", report.ID, "error", err)
		}
		slog.Error("Report failed permanently", "report_id", report.ID, "attempts", attempts, "error_type", errorType)
		return
	}

	delay := uc.cfg.Backoff[min(attempts-1, len(uc.cfg.Backoff)-1)]
	nextAttemptAt := time.Now().Add(delay)
	if err := uc.reports.ScheduleRetry(ctx, report.ID, jobErr.Error(), attempts, nextAttemptAt); err != nil {
		slog.Error("Failed to schedule report retry", "report_id", report.ID, "error", err)
		return
	}
	slog.Info("Report retry scheduled", "report_id", report.ID, "attempt", attempts, "next_attempt_in", delay.String(), "error_type", errorType)
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, repository.ErrDataSource):
		return "data_source"
	case errors.Is(err, repository.ErrSiteAccess):
		return "site_access"
	case errors.Is(err, repository.ErrEmptyArtifact):
		return "empty_artifact"
	case errors.Is(err, repository.ErrAggregationLimit):
		return "aggregation_limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unknown"
	}
}
