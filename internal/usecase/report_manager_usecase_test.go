package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

func newManagerFixture() (*mockReportRepo, *mockQueueRepo, *mockDedupRepo, ReportManager) {
	reports := new(mockReportRepo)
	queue := new(mockQueueRepo)
	dedup := new(mockDedupRepo)
	return reports, queue, dedup, NewReportManager(reports, queue, dedup, 10*time.Minute)
}

func submitRequest() SubmitReport {
	return SubmitReport{
		UserID: 10,
		SiteID: 20,
		Format: entity.FormatXLSX,
	}
}

func TestSubmitQueuesReport(t *testing.T) {
	reports, queue, dedup, manager := newManagerFixture()

	reports.On("GetSite", mock.Anything, int64(20), int64(10)).Return(&entity.Site{ID: 20, UserID: 10}, nil)
	dedup.On("RecentReport", mock.Anything, mock.Anything).Return(int64(0), false, nil)
	reports.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Report).ID = 77
	}).Return(nil)
	queue.On("Push", mock.Anything, int64(77)).Return(nil)
	dedup.On("MarkRequested", mock.Anything, mock.Anything, int64(77), 10*time.Minute).Return(nil)

	report, err := manager.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(77), report.ID)
	assert.Equal(t, entity.StatusPending, report.Status)
	reports.AssertExpectations(t)
	queue.AssertExpectations(t)
	dedup.AssertExpectations(t)
}

func TestSubmitReturnsExistingDuplicate(t *testing.T) {
	reports, queue, dedup, manager := newManagerFixture()

	existing := &entity.Report{ID: 55, Status: entity.StatusProcessing}
	reports.On("GetSite", mock.Anything, int64(20), int64(10)).Return(&entity.Site{ID: 20}, nil)
	dedup.On("RecentReport", mock.Anything, mock.Anything).Return(int64(55), true, nil)
	reports.On("GetByID", mock.Anything, int64(55)).Return(existing, nil)

	report, err := manager.Submit(context.Background(), submitRequest())
	assert.ErrorIs(t, err, ErrDuplicateReport)
	require.NotNil(t, report)
	assert.Equal(t, int64(55), report.ID)
	reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestSubmitForceBypassesDedup(t *testing.T) {
	reports, queue, dedup, manager := newManagerFixture()

	reports.On("GetSite", mock.Anything, int64(20), int64(10)).Return(&entity.Site{ID: 20}, nil)
	dedup.On("Clear", mock.Anything, mock.Anything).Return(nil)
	reports.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Report).ID = 88
	}).Return(nil)
	queue.On("Push", mock.Anything, int64(88)).Return(nil)
	dedup.On("MarkRequested", mock.Anything, mock.Anything, int64(88), 10*time.Minute).Return(nil)

	req := submitRequest()
	req.Force = true

	report, err := manager.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(88), report.ID)
	dedup.AssertNotCalled(t, "RecentReport", mock.Anything, mock.Anything)
	dedup.AssertExpectations(t)
}

func TestSubmitStaleDedupKeyFallsThrough(t *testing.T) {
	reports, queue, dedup, manager := newManagerFixture()

	reports.On("GetSite", mock.Anything, int64(20), int64(10)).Return(&entity.Site{ID: 20}, nil)
	dedup.On("RecentReport", mock.Anything, mock.Anything).Return(int64(55), true, nil)
	reports.On("GetByID", mock.Anything, int64(55)).Return(nil, repository.ErrReportNotFound)
	reports.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Report).ID = 99
	}).Return(nil)
	queue.On("Push", mock.Anything, int64(99)).Return(nil)
	dedup.On("MarkRequested", mock.Anything, mock.Anything, int64(99), 10*time.Minute).Return(nil)

	report, err := manager.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(99), report.ID)
}

func TestSubmitDeniedForForeignSite(t *testing.T) {
	reports, queue, dedup, manager := newManagerFixture()

	reports.On("GetSite", mock.Anything, int64(20), int64(10)).Return(nil, repository.ErrSiteAccess)

	report, err := manager.Submit(context.Background(), submitRequest())
	assert.ErrorIs(t, err, repository.ErrSiteAccess)
	assert.Nil(t, report)
	reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	dedup.AssertNotCalled(t, "RecentReport", mock.Anything, mock.Anything)
}

func TestGetStatus(t *testing.T) {
	reports, _, _, manager := newManagerFixture()

	reports.On("GetByID", mock.Anything, int64(5)).Return(&entity.Report{ID: 5, Status: entity.StatusCompleted}, nil)

	report, err := manager.GetStatus(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, report.Status)
}
