package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/salesdash/salesdash/cmd/salesdash/cli"
	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/analytics/export"
	analytichttp "github.com/salesdash/salesdash/internal/analytics/http"
	"github.com/salesdash/salesdash/internal/analytics/svg"
	"github.com/salesdash/salesdash/internal/app"
	"github.com/salesdash/salesdash/internal/observability"
	platformcache "github.com/salesdash/salesdash/internal/platform/cache"
	"github.com/salesdash/salesdash/internal/view"
	"github.com/salesdash/salesdash/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, os.Args[1], os.Args[2:]))
	}

	metrics := observability.NewMetrics()

	source, err := analytics.NewStaticSource(analytics.SampleDataset())
	if err != nil {
		logger.Error("load dataset", slog.Any("error", err))
		os.Exit(1)
	}

	var (
		cache       *analytics.Cache
		jobHandler  *jobs.Handler
		redisClient *redis.Client
	)
	if cfg.CacheEnabled() {
		redisClient, err = platformcache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", slog.Any("error", err))
		}
	} else {
		logger.Info("redis disabled, serving dashboard without cache")
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		cache = analytics.NewCache(redisClient, cfg.CacheTTL).WithObserver(metrics)
		if err := cache.ListenForInvalidation(ctx, "", func(version int64) {
			logger.Info("dashboard cache invalidated", slog.Int64("version", version))
		}); err != nil {
			logger.Warn("subscribe cache invalidation", slog.Any("error", err))
		}

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)

		enqueueStartupWarmup(ctx, redisOpts, logger)
	}

	service := analytics.NewService(source, cache, cfg.SalesTarget)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	var pdfExporter analytichttp.PDFService
	if cfg.GotenbergURL != "" {
		exporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: &http.Client{Timeout: 30 * time.Second}}
		if err := exporter.Ping(ctx); err != nil {
			logger.Warn("gotenberg unreachable, pdf export will fail until it recovers", slog.Any("error", err))
		}
		pdfExporter = exporter
	}
	analyticsHandler := analytichttp.NewHandler(
		logger,
		service,
		templates,
		svg.Renderer{},
		pdfExporter,
		export.PNGRenderer{},
	)
	analyticsHandler.WithMetrics(metrics)
	analyticsHandler.WithTimeout(cfg.DashboardTimeout)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func enqueueStartupWarmup(ctx context.Context, opts asynq.RedisClientOpt, logger *slog.Logger) {
	client, err := jobs.NewClient(opts)
	if err != nil {
		logger.Warn("init job client", slog.Any("error", err))
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	info, err := client.EnqueueDashboardWarmup(ctx, jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
		return
	}
	logger.Info("enqueued startup warmup", slog.String("task_id", info.ID))
}

func runCommand(ctx context.Context, cfg *app.Config, name string, args []string) int {
	switch name {
	case "summary":
		fs := flag.NewFlagSet("summary", flag.ContinueOnError)
		metric := fs.String("metric", "", "dimension to report: revenue, orders or visitors")
		target := fs.Int64("target", cfg.SalesTarget, "sales plan in roubles")
		asJSON := fs.Bool("json", false, "print JSON instead of text")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		source, err := analytics.NewStaticSource(analytics.SampleDataset())
		if err != nil {
			fmt.Fprintf(os.Stderr, "summary: %v\n", err)
			return 1
		}
		return cli.SummaryCommand(ctx, source, cli.SummaryOptions{Metric: *metric, Target: *target, JSONOutput: *asJSON})
	case "jobs":
		fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
		refresh := fs.Bool("refresh", false, "bump the cache version before warming")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return runJobsCommand(ctx, cfg, fs.Args(), *refresh)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected summary or jobs)\n", name)
		return 2
	}
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string, refresh bool) int {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() { _ = jobsCLI.Close() }()

	action := "stats"
	if len(args) > 0 {
		action = args[0]
	}
	switch action {
	case "warmup":
		info, err := jobsCLI.Trigger(ctx, jobs.TaskDashboardWarmup, refresh)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs warmup: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s as %s\n", info.Type, info.ID)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown action %q (expected warmup or stats)\n", action)
		return 2
	}
	return 0
}
