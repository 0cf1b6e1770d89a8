package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

// ReportRepoImpl provides a concrete implementation for the
// ReportRepository interface using PostgreSQL.
type ReportRepoImpl struct {
	db *pgxpool.Pool
}

// NewReportRepo creates a new instance of ReportRepoImpl.
func NewReportRepo(db *pgxpool.Pool) *ReportRepoImpl {
	return &ReportRepoImpl{db: db}
}

// Create inserts a new pending report and fills in its ID and timestamps.
func (r *ReportRepoImpl) Create(ctx context.Context, report *entity.Report) error {
	filtersJSON, err := json.Marshal(report.Filters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reports (user_id, site_id, format, filters, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`
	return r.db.QueryRow(ctx, query,
		report.UserID,
		report.SiteID,
		string(report.Format),
		filtersJSON,
		string(entity.StatusPending),
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

// GetByID retrieves a report by its primary key.
func (r *ReportRepoImpl) GetByID(ctx context.Context, id int64) (*entity.Report, error) {
	query := `
		SELECT id, user_id, site_id, format, filters, status, file_path, public_url,
		       error_message, attempts, next_attempt_at, completed_at, created_at, updated_at
		FROM reports
		WHERE id = $1;
	`
	row := r.db.QueryRow(ctx, query, id)

	var report entity.Report
	var format, status string
	var filtersJSON []byte

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.SiteID,
		&format,
		&filtersJSON,
		&status,
		&report.FilePath,
		&report.PublicURL,
		&report.ErrorMessage,
		&report.Attempts,
		&report.NextAttemptAt,
		&report.CompletedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrReportNotFound
		}
		return nil, err
	}

	report.Format = entity.ReportFormat(format)
	report.Status = entity.ReportStatus(status)
	if err := json.Unmarshal(filtersJSON, &report.Filters); err != nil {
		return nil, err
	}

	return &report, nil
}

// GetSite resolves a site owned by the given user.
func (r *ReportRepoImpl) GetSite(ctx context.Context, siteID, userID int64) (*entity.Site, error) {
	query := `SELECT id, user_id, domain FROM sites WHERE id = $1 AND user_id = $2;`

	var site entity.Site
	err := r.db.QueryRow(ctx, query, siteID, userID).Scan(&site.ID, &site.UserID, &site.Domain)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrSiteAccess
		}
		return nil, err
	}
	return &site, nil
}

// MarkProcessing transitions a report to processing.
func (r *ReportRepoImpl) MarkProcessing(ctx context.Context, id int64) error {
	query := `
		UPDATE reports
		SET status = 'processing', next_attempt_at = NULL, updated_at = NOW()
		WHERE id = $1;
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// MarkCompleted stores the artifact location and transitions to completed.
func (r *ReportRepoImpl) MarkCompleted(ctx context.Context, id int64, filePath, publicURL string) error {
	query := `
		UPDATE reports
		SET status = 'completed', file_path = $2, public_url = $3,
		    error_message = '', next_attempt_at = NULL,
		    completed_at = NOW(), updated_at = NOW()
		WHERE id = $1;
	`
	_, err := r.db.Exec(ctx, query, id, filePath, publicURL)
	return err
}

// MarkFailed transitions to failed with the last error message. The
// update is a plain idempotent write so the in-handler failure path and
// the exhausted-retries path can both call it in any order.
func (r *ReportRepoImpl) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE reports
		SET status = 'failed', error_message = $2, next_attempt_at = NULL,
		    completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE id = $1;
	`
	_, err := r.db.Exec(ctx, query, id, errorMessage)
	return err
}

// ScheduleRetry puts a report back to pending until nextAttemptAt is due.
func (r *ReportRepoImpl) ScheduleRetry(ctx context.Context, id int64, errorMessage string, attempts int, nextAttemptAt time.Time) error {
	query := `
		UPDATE reports
		SET status = 'pending', error_message = $2, attempts = $3,
		    next_attempt_at = $4, updated_at = NOW()
		WHERE id = $1;
	`
	_, err := r.db.Exec(ctx, query, id, errorMessage, attempts, nextAttemptAt)
	return err
}

// FindRetryable claims up to limit due reports and returns their IDs.
// Clearing next_attempt_at inside the same statement keeps concurrent
// re-queuers from claiming the same report twice.
func (r *ReportRepoImpl) FindRetryable(ctx context.Context, limit int) ([]int64, error) {
	query := `
		UPDATE reports
		SET next_attempt_at = NULL, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM reports
			WHERE status = 'pending' AND next_attempt_at IS NOT NULL AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
