package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/app"
	jobmetrics "github.com/salesdash/salesdash/internal/jobs"
	platformcache "github.com/salesdash/salesdash/internal/platform/cache"
	"github.com/salesdash/salesdash/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if !cfg.CacheEnabled() {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	source, err := analytics.NewStaticSource(analytics.SampleDataset())
	if err != nil {
		logger.Error("load dataset", slog.Any("error", err))
		os.Exit(1)
	}
	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(source, analyticsCache, cfg.SalesTarget)

	registry := prometheus.NewRegistry()
	warmupJob := jobs.NewDashboardWarmupJob(analyticsService, analyticsCache, logger, jobmetrics.NewMetrics(registry))

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Unique(time.Minute)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.WorkerMetricsAddr != "" {
		go func() {
			logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
