package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
	"github.com/user/report-service/pkg/utils"
)

var (
	ErrDuplicateReport = errors.New("an identical report was requested recently")
)

// SubmitReport carries everything needed to queue a new report job. The
// user identity comes from the upstream auth layer and is trusted here.
type SubmitReport struct {
	UserID  int64
	SiteID  int64
	Format  entity.ReportFormat
	Filters entity.FilterParams
	Force   bool
}

// ReportManager defines the interface for submitting report jobs and
// checking their status.
type ReportManager interface {
	// Submit queues a new report job. If an identical request is still
	// inside the dedup window and force is false, the already-queued report
	// is returned together with ErrDuplicateReport.
	Submit(ctx context.Context, req SubmitReport) (*entity.Report, error)
	GetStatus(ctx context.Context, id int64) (*entity.Report, error)
}

type reportManagerUseCase struct {
	reports  repository.ReportRepository
	queue    repository.QueueRepository
	dedup    repository.DedupRepository
	dedupTTL time.Duration
}

// NewReportManager creates a new ReportManager use case.
func NewReportManager(
	reports repository.ReportRepository,
	queue repository.QueueRepository,
	dedup repository.DedupRepository,
	dedupTTL time.Duration,
) ReportManager {
	return &reportManagerUseCase{
		reports:  reports,
		queue:    queue,
		dedup:    dedup,
		dedupTTL: dedupTTL,
	}
}

func (uc *reportManagerUseCase) Submit(ctx context.Context, req SubmitReport) (*entity.Report, error) {
	if _, err := uc.reports.GetSite(ctx, req.SiteID, req.UserID); err != nil {
		return nil, err
	}

	spec := entity.NewPositionFilterSpec(req.SiteID, req.Filters)
	key := utils.HashRequest(req.UserID, req.SiteID, string(req.Format), spec.QueryParams())

	if req.Force {
		if err := uc.dedup.Clear(ctx, key); err != nil {
			slog.Warn("Failed to clear dedup key for forced report", "site_id", req.SiteID, "error", err)
			// Continue anyway, as this is not a critical failure
		}
	} else {
		existingID, ok, err := uc.dedup.RecentReport(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			existing, err := uc.reports.GetByID(ctx, existingID)
			if err == nil {
				return existing, ErrDuplicateReport
			}
			// The remembered report is gone; fall through and queue a new one.
			slog.Warn("Dedup key pointed at a missing report", "report_id", existingID, "error", err)
		}
	}

	report := &entity.Report{
		UserID:  req.UserID,
		SiteID:  req.SiteID,
		Format:  req.Format,
		Filters: req.Filters,
		Status:  entity.StatusPending,
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	if err := uc.queue.Push(ctx, report.ID); err != nil {
		return nil, fmt.Errorf("failed to queue report %d: %w", report.ID, err)
	}

	if err := uc.dedup.MarkRequested(ctx, key, report.ID, uc.dedupTTL); err != nil {
		// Non-critical: the report is queued, a duplicate might just slip
		// through before this one finishes.
		slog.Error("Failed to mark report request in dedup guard", "report_id", report.ID, "error", err)
	}

	return report, nil
}

func (uc *reportManagerUseCase) GetStatus(ctx context.Context, id int64) (*entity.Report, error) {
	return uc.reports.GetByID(ctx, id)
}
