package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/salesdash/salesdash/internal/analytics"
	jobmetrics "github.com/salesdash/salesdash/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// WarmupService is the slice of the analytics service the warmup touches.
type WarmupService interface {
	GetMeta(ctx context.Context) (analytics.DatasetMeta, error)
	GetKPISummary(ctx context.Context) (analytics.KPISummary, error)
	GetDailySeries(ctx context.Context) ([]analytics.DailyRecord, error)
	GetCategoryBreakdown(ctx context.Context) ([]analytics.CategoryRecord, error)
	GetTopProducts(ctx context.Context) ([]analytics.ProductRecord, error)
	GetFunnel(ctx context.Context) ([]analytics.FunnelStage, error)
	GetTrafficSources(ctx context.Context) ([]analytics.TrafficSource, error)
	GetRegions(ctx context.Context) ([]analytics.RegionRecord, error)
	GetDataset(ctx context.Context) (analytics.Dataset, error)
}

// CacheBumper invalidates cached dashboard sections.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// DashboardWarmupJob loads every dashboard section so the first page view
// after a deploy or invalidation is served from Redis.
type DashboardWarmupJob struct {
	Service WarmupService
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(service WarmupService, cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Service: service,
		Cache:   cache,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	sections, err := selectSections(payload.Sections)
	if err != nil {
		return fmt.Errorf("dashboard warmup: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Bool("refresh", payload.Refresh))
	logger.Info("starting dashboard warmup")
	start := j.now()

	if payload.Refresh && j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			resultErr = fmt.Errorf("bump cache: %w", err)
			logger.Error("bump cache", slog.Any("error", resultErr))
			return resultErr
		}
	}

	// Bound the run so a stuck Redis cannot hold a worker slot.
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	for _, s := range sections {
		if err := s.load(runCtx, j.Service); err != nil {
			resultErr = fmt.Errorf("warm %s: %w", s.name, err)
			logger.Error("warm section", slog.String("section", s.name), slog.Any("error", err))
			return resultErr
		}
		j.metrics().AddWarmed(s.name, 1)
	}

	logger.Info("completed dashboard warmup", slog.Int("sections", len(sections)), slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

type warmupSection struct {
	name string
	load func(ctx context.Context, svc WarmupService) error
}

func discard[T any](_ T, err error) error {
	return err
}

var warmupSections = []warmupSection{
	{name: "meta", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetMeta(ctx))
	}},
	{name: "kpi", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetKPISummary(ctx))
	}},
	{name: "daily", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetDailySeries(ctx))
	}},
	{name: "categories", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetCategoryBreakdown(ctx))
	}},
	{name: "products", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetTopProducts(ctx))
	}},
	{name: "funnel", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetFunnel(ctx))
	}},
	{name: "traffic", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetTrafficSources(ctx))
	}},
	{name: "regions", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetRegions(ctx))
	}},
	{name: "dataset", load: func(ctx context.Context, svc WarmupService) error {
		return discard(svc.GetDataset(ctx))
	}},
}

// WarmupSectionNames lists the sections a warmup can target, in load order.
func WarmupSectionNames() []string {
	names := make([]string, 0, len(warmupSections))
	for _, s := range warmupSections {
		names = append(names, s.name)
	}
	return names
}

func selectSections(names []string) ([]warmupSection, error) {
	if len(names) == 0 {
		return warmupSections, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make([]warmupSection, 0, len(names))
	for _, s := range warmupSections {
		if wanted[s.name] {
			out = append(out, s)
			delete(wanted, s.name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("unknown section %q", n)
	}
	return out, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
