package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/user/report-service/internal/repository"
	"github.com/user/report-service/internal/usecase"
	"github.com/user/report-service/pkg/metrics"
)

const retryClaimBatch = 50

// Pool runs the report workers and the retry re-queuer. Workers pull jobs
// from the queue sequentially; the re-queuer moves due retries from the
// database back onto the queue.
type Pool struct {
	processor usecase.ReportProcessor
	reports   repository.ReportRepository
	queue     repository.QueueRepository

	workers           int
	queuePollInterval time.Duration
	retryPollInterval time.Duration

	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPool creates a worker pool. Start must be called before Stop.
func NewPool(
	processor usecase.ReportProcessor,
	reports repository.ReportRepository,
	queue repository.QueueRepository,
	workers int,
	queuePollInterval, retryPollInterval time.Duration,
) *Pool {
	return &Pool{
		processor:         processor,
		reports:           reports,
		queue:             queue,
		workers:           workers,
		queuePollInterval: queuePollInterval,
		retryPollInterval: retryPollInterval,
		stopChan:          make(chan struct{}),
	}
}

// Start launches the workers and the retry re-queuer.
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.wg.Add(1)
	go p.requeueLoop(ctx)

	slog.Info("Report workers started", "workers", p.workers)
}

// Stop signals all loops and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("Report workers stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		default:
		}

		processed, err := p.processor.ProcessNextReport(ctx)
		if err != nil {
			slog.Error("Worker failed to process report", "worker", id, "error", err)
		}
		if processed {
			continue
		}

		// Queue empty, back off before polling again.
		select {
		case <-p.stopChan:
			return
		case <-time.After(p.queuePollInterval):
		}
	}
}

// requeueLoop periodically claims reports whose retry is due and pushes
// them back onto the queue, and keeps the queue-size gauge fresh.
func (p *Pool) requeueLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.retryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.requeueDue(ctx)
			p.updateQueueGauge(ctx)
		}
	}
}

func (p *Pool) requeueDue(ctx context.Context) {
	ids, err := p.reports.FindRetryable(ctx, retryClaimBatch)
	if err != nil {
		slog.Error("Failed to find retryable reports", "error", err)
		return
	}
	for _, id := range ids {
		if err := p.queue.Push(ctx, id); err != nil {
			slog.Error("Failed to re-queue report", "report_id", id, "error", err)
			continue
		}
		slog.Info("Re-queued report for retry", "report_id", id)
	}
}

func (p *Pool) updateQueueGauge(ctx context.Context) {
	size, err := p.queue.Size(ctx)
	if err != nil {
		return
	}
	metrics.JobsInQueue.Set(float64(size))
}
