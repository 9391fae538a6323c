package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingSource struct {
	dataset Dataset
	calls   int
}

func (c *countingSource) Dataset() Dataset {
	c.calls++
	return c.dataset.Clone()
}

func newTestService(t *testing.T, source Source) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(source, cache, DefaultSalesTarget)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestGetKPISummaryCaches(t *testing.T) {
	source := &countingSource{dataset: SampleDataset()}
	svc, cleanup := newTestService(t, source)
	defer cleanup()

	ctx := context.Background()
	summary, err := svc.GetKPISummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalRevenue != 6_479_000 {
		t.Fatalf("expected revenue 6479000 got %d", summary.TotalRevenue)
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", source.calls)
	}

	// Second call should hit cache.
	if _, err := svc.GetKPISummary(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cached result, source called %d times", source.calls)
	}

	// Bumping the cache should trigger reload.
	if err := svc.Cache().Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	source.dataset.Daily = source.dataset.Daily[:2]
	summary, err = svc.GetKPISummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalRevenue != 277_000 {
		t.Fatalf("expected refreshed revenue 277000 got %d", summary.TotalRevenue)
	}
	if source.calls != 2 {
		t.Fatalf("expected source to refresh, calls %d", source.calls)
	}
}

func TestSectionsRoundTripThroughCache(t *testing.T) {
	source := &countingSource{dataset: SampleDataset()}
	svc, cleanup := newTestService(t, source)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		daily, err := svc.GetDailySeries(ctx)
		if err != nil {
			t.Fatalf("daily error: %v", err)
		}
		if len(daily) != 30 || daily[0].Date != "01.12" || daily[29].Date != "30.12" {
			t.Fatalf("unexpected daily series %#v", daily)
		}
		funnel, err := svc.GetFunnel(ctx)
		if err != nil {
			t.Fatalf("funnel error: %v", err)
		}
		if len(funnel) != 5 || funnel[4].Value != 1928 {
			t.Fatalf("unexpected funnel %#v", funnel)
		}
		regions, err := svc.GetRegions(ctx)
		if err != nil {
			t.Fatalf("regions error: %v", err)
		}
		if len(regions) != 8 {
			t.Fatalf("expected 8 regions got %d", len(regions))
		}
	}
	if source.calls != 3 {
		t.Fatalf("expected one source call per section, got %d", source.calls)
	}
}

func TestServiceWithoutCache(t *testing.T) {
	source := &countingSource{dataset: SampleDataset()}
	svc := NewService(source, nil, 0)
	if svc.SalesTarget() != DefaultSalesTarget {
		t.Fatalf("expected default target, got %d", svc.SalesTarget())
	}
	ctx := context.Background()
	products, err := svc.GetTopProducts(ctx)
	if err != nil {
		t.Fatalf("products error: %v", err)
	}
	if len(products) != 10 || products[0].Product != "iPhone 15 Pro" {
		t.Fatalf("unexpected products %#v", products)
	}
	if _, err := svc.GetTopProducts(ctx); err != nil {
		t.Fatalf("products error: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected uncached service to hit source each time, got %d", source.calls)
	}
}

func TestServiceHonoursCancelledContext(t *testing.T) {
	svc := NewService(&countingSource{dataset: SampleDataset()}, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.GetCategoryBreakdown(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestListenForInvalidationAppliesVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bumped := make(chan int64, 1)
	if err := cache.ListenForInvalidation(ctx, "", func(v int64) {
		select {
		case bumped <- v:
		default:
		}
	}); err != nil {
		t.Fatalf("listen error: %v", err)
	}

	pubClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = pubClient.Close() }()
	publisher := NewCache(pubClient, time.Minute)
	deadline := time.After(2 * time.Second)
	for {
		if err := publisher.Bump(ctx); err != nil {
			t.Fatalf("bump error: %v", err)
		}
		select {
		case v := <-bumped:
			if v < 1 {
				t.Fatalf("expected positive version got %d", v)
			}
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for invalidation")
		}
	}
}

type recordingObserver struct {
	hits   map[string]int
	misses map[string]int
}

func (r *recordingObserver) ObserveCache(section string, hit bool) {
	if hit {
		r.hits[section]++
		return
	}
	r.misses[section]++
}

func TestCacheObserverSeesHitsAndMisses(t *testing.T) {
	source := &countingSource{dataset: SampleDataset()}
	svc, cleanup := newTestService(t, source)
	defer cleanup()

	obs := &recordingObserver{hits: map[string]int{}, misses: map[string]int{}}
	svc.Cache().WithObserver(obs)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.GetFunnel(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if obs.misses["funnel"] != 1 || obs.hits["funnel"] != 1 {
		t.Fatalf("unexpected observations hits=%v misses=%v", obs.hits, obs.misses)
	}
}

func TestSectionLabel(t *testing.T) {
	cases := map[string]string{
		"analytics:section:daily:3": "daily",
		"analytics:kpi:7000000:12":  "kpi",
		"analytics:kpi:8000000:3":   "kpi",
		"analytics:kpi:7000000":     "kpi",
		"analytics:section:funnel":  "funnel",
		"custom":                    "custom",
	}
	for key, want := range cases {
		if got := sectionLabel(key); got != want {
			t.Fatalf("sectionLabel(%q)=%q want %q", key, got, want)
		}
	}
}

func TestGetMetaAndDataset(t *testing.T) {
	source := &countingSource{dataset: SampleDataset()}
	svc, cleanup := newTestService(t, source)
	defer cleanup()

	ctx := context.Background()
	meta, err := svc.GetMeta(ctx)
	if err != nil {
		t.Fatalf("meta error: %v", err)
	}
	if meta.Title != "E-commerce Аналитика" || meta.UpdatedAt != "30 декабря 2024" {
		t.Fatalf("unexpected meta %#v", meta)
	}
	d, err := svc.GetDataset(ctx)
	if err != nil {
		t.Fatalf("dataset error: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("cached dataset no longer valid: %v", err)
	}
	if len(d.Traffic) != 5 || d.Traffic[0].Source != "organic" {
		t.Fatalf("unexpected traffic %#v", d.Traffic)
	}
}
