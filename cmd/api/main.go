package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/report-service/internal/adapter/excel"
	"github.com/user/report-service/internal/adapter/htmlreport"
	"github.com/user/report-service/internal/adapter/positionapi"
	"github.com/user/report-service/internal/adapter/postgres"
	redis_adapter "github.com/user/report-service/internal/adapter/redis"
	"github.com/user/report-service/internal/delivery/http/handler"
	"github.com/user/report-service/internal/delivery/http/router"
	"github.com/user/report-service/internal/usecase"
	"github.com/user/report-service/internal/worker"
	"github.com/user/report-service/pkg/config"
	"github.com/user/report-service/pkg/logger"
	"github.com/user/report-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	backoff, err := cfg.Backoff()
	if err != nil {
		slog.Error("Invalid retry backoff configuration", "error", err)
		os.Exit(1)
	}

	// --- Database Connections ---
	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		slog.Error("Unable to ensure database schema", "error", err)
		os.Exit(1)
	}
	slog.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	reportRepo := postgres.NewReportRepo(dbpool)
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	dedupRepo := redis_adapter.NewDedupRepo(rdb)
	collector := positionapi.NewClient(cfg.PositionAPIURL, time.Duration(cfg.PositionAPITimeout)*time.Second)
	spreadsheetExporter := excel.NewExporter(cfg.ExportDir)
	htmlExporter := htmlreport.NewExporter(cfg.PublicDir, cfg.PublicBaseURL)

	// --- Use Cases ---
	manager := usecase.NewReportManager(
		reportRepo, queueRepo, dedupRepo,
		time.Duration(cfg.DedupTTLMinutes)*time.Minute,
	)
	processor := usecase.NewReportProcessor(
		reportRepo, queueRepo, collector, spreadsheetExporter, htmlExporter,
		usecase.JobConfig{
			PageSize:       cfg.ReportPageSize,
			MaxKeywords:    cfg.ReportMaxKeywords,
			AttemptTimeout: time.Duration(cfg.ReportAttemptTimeout) * time.Second,
			MaxAttempts:    cfg.ReportMaxAttempts,
			Backoff:        backoff,
		},
	)

	// --- Workers ---
	pool := worker.NewPool(
		processor, reportRepo, queueRepo,
		cfg.ReportWorkers,
		time.Duration(cfg.QueuePollInterval)*time.Second,
		time.Duration(cfg.RetryPollInterval)*time.Second,
	)
	pool.Start()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(
		manager,
		handler.PingerFunc(dbpool.Ping),
		handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	)
	httpRouter := router.New(apiHandler, cfg.PublicDir)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	pool.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}
