package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) Create(ctx context.Context, report *entity.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id int64) (*entity.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Report), args.Error(1)
}

func (m *mockReportRepo) GetSite(ctx context.Context, siteID, userID int64) (*entity.Site, error) {
	args := m.Called(ctx, siteID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Site), args.Error(1)
}

func (m *mockReportRepo) MarkProcessing(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReportRepo) MarkCompleted(ctx context.Context, id int64, filePath, publicURL string) error {
	args := m.Called(ctx, id, filePath, publicURL)
	return args.Error(0)
}

func (m *mockReportRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)
	return args.Error(0)
}

func (m *mockReportRepo) ScheduleRetry(ctx context.Context, id int64, errorMessage string, attempts int, nextAttemptAt time.Time) error {
	args := m.Called(ctx, id, errorMessage, attempts, nextAttemptAt)
	return args.Error(0)
}

func (m *mockReportRepo) FindRetryable(ctx context.Context, limit int) ([]int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockQueueRepo struct {
	mock.Mock
}

func (m *mockQueueRepo) Push(ctx context.Context, reportID int64) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *mockQueueRepo) Pop(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQueueRepo) Size(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockDedupRepo struct {
	mock.Mock
}

func (m *mockDedupRepo) MarkRequested(ctx context.Context, key string, reportID int64, ttl time.Duration) error {
	args := m.Called(ctx, key, reportID, ttl)
	return args.Error(0)
}

func (m *mockDedupRepo) RecentReport(ctx context.Context, key string) (int64, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockDedupRepo) Clear(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockCollectorRepo struct {
	mock.Mock
}

func (m *mockCollectorRepo) CollectStatistics(ctx context.Context, spec entity.PositionFilterSpec) (*entity.StatisticsSummary, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatisticsSummary), args.Error(1)
}

func (m *mockCollectorRepo) CollectPositionsBatch(ctx context.Context, spec entity.PositionFilterSpec, page, perPage int) (*entity.PositionBatch, error) {
	args := m.Called(ctx, spec, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PositionBatch), args.Error(1)
}

type mockHTMLExporter struct {
	mock.Mock
}

func (m *mockHTMLExporter) Export(ctx context.Context, report *entity.Report, data *entity.ReportData) (string, error) {
	args := m.Called(ctx, report, data)
	return args.String(0), args.Error(1)
}

// fakeSpreadsheet is a capturing exporter: it records everything written to
// the session so tests can assert on headers and rows without touching disk.
type fakeSpreadsheet struct {
	path string
	err  error

	summary   *entity.StatisticsSummary
	headers   []string
	rows      []entity.KeywordRow
	finalized bool
	discarded bool
}

func (f *fakeSpreadsheet) Create(ctx context.Context, report *entity.Report) (repository.SpreadsheetSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f, nil
}

func (f *fakeSpreadsheet) WriteSummary(summary *entity.StatisticsSummary) error {
	f.summary = summary
	return nil
}

func (f *fakeSpreadsheet) WriteHeaders(dates []string) error {
	f.headers = dates
	return nil
}

func (f *fakeSpreadsheet) WriteRows(rows []entity.KeywordRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeSpreadsheet) Finalize() (string, error) {
	f.finalized = true
	return f.path, nil
}

func (f *fakeSpreadsheet) Discard() error {
	f.discarded = true
	return nil
}
