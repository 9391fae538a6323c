package analytics

import (
	"context"
)

// Source exposes the records the dashboard renders.
type Source interface {
	Dataset() Dataset
}

// Service coordinates aggregate computation with the cache layer.
type Service struct {
	source Source
	cache  *Cache
	target int64
}

// NewService wires a Source with a Cache helper. A non-positive target falls
// back to DefaultSalesTarget.
func NewService(source Source, cache *Cache, target int64) *Service {
	if target <= 0 {
		target = DefaultSalesTarget
	}
	return &Service{source: source, cache: cache, target: target}
}

// SalesTarget returns the configured revenue plan.
func (s *Service) SalesTarget() int64 {
	return s.target
}

// Cache exposes the cache helper for invalidation hooks.
func (s *Service) Cache() *Cache {
	return s.cache
}

// GetDataset returns a copy of every record sequence.
func (s *Service) GetDataset(ctx context.Context) (Dataset, error) {
	return fetchCached(ctx, s, keySection("dataset"), func(d Dataset) Dataset { return d })
}

// GetMeta returns the dashboard heading and data timestamp.
func (s *Service) GetMeta(ctx context.Context) (DatasetMeta, error) {
	return fetchCached(ctx, s, keySection("meta"), func(d Dataset) DatasetMeta {
		return DatasetMeta{Title: d.Title, Subtitle: d.Subtitle, UpdatedAt: d.UpdatedAt}
	})
}

// GetKPISummary resolves the KPI cards using cache-aware lookups.
func (s *Service) GetKPISummary(ctx context.Context) (KPISummary, error) {
	return fetchCached(ctx, s, keyKPI(s.target), func(d Dataset) KPISummary {
		return BuildKPISummary(d.Daily, s.target)
	})
}

// GetDailySeries returns the chronological daily records.
func (s *Service) GetDailySeries(ctx context.Context) ([]DailyRecord, error) {
	return fetchCached(ctx, s, keySection("daily"), func(d Dataset) []DailyRecord { return d.Daily })
}

// GetCategoryBreakdown returns revenue per category in display order.
func (s *Service) GetCategoryBreakdown(ctx context.Context) ([]CategoryRecord, error) {
	return fetchCached(ctx, s, keySection("categories"), func(d Dataset) []CategoryRecord { return d.Categories })
}

// GetTopProducts returns the best sellers ordered by revenue.
func (s *Service) GetTopProducts(ctx context.Context) ([]ProductRecord, error) {
	return fetchCached(ctx, s, keySection("products"), func(d Dataset) []ProductRecord { return d.Products })
}

// GetFunnel returns the funnel stages in funnel order.
func (s *Service) GetFunnel(ctx context.Context) ([]FunnelStage, error) {
	return fetchCached(ctx, s, keySection("funnel"), func(d Dataset) []FunnelStage { return d.Funnel })
}

// GetTrafficSources returns visitors per acquisition channel.
func (s *Service) GetTrafficSources(ctx context.Context) ([]TrafficSource, error) {
	return fetchCached(ctx, s, keySection("traffic"), func(d Dataset) []TrafficSource { return d.Traffic })
}

// GetRegions returns sales per region.
func (s *Service) GetRegions(ctx context.Context) ([]RegionRecord, error) {
	return fetchCached(ctx, s, keySection("regions"), func(d Dataset) []RegionRecord { return d.Regions })
}

func fetchCached[T any](ctx context.Context, s *Service, keyBase string, pick func(Dataset) T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		var d Dataset
		if s.source != nil {
			d = s.source.Dataset()
		}
		return pick(d), nil
	}

	if !s.cache.Enabled() {
		value, err := loader(ctx)
		if err != nil {
			return zero, err
		}
		return value.(T), nil
	}

	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return zero, err
	}
	var out T
	if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
		return zero, err
	}
	return out, nil
}
