package climate

import (
	"context"
	"fmt"

	"github.com/hazardscope/api/internal/cache"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
)

// CachedProvider wraps a Provider with the in-process response cache.
// Only successful non-empty series are cached, so transient failures and
// no-data outcomes are retried on the next request. Keys include the
// coordinate, the date range, and the scenario, so distinct parameter sets
// never collide.
type CachedProvider struct {
	inner   Provider
	cache   *cache.LRU
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a series provider.
func NewCachedProvider(inner Provider, c *cache.LRU, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, metrics: metrics}
}

func (p *CachedProvider) Baseline(ctx context.Context, coord models.Coordinate, window models.PeriodWindow) (models.ScenarioSeries, error) {
	key := fmt.Sprintf("baseline:%s:%s:%s", coord, window.Start, window.End)
	return p.lookup(ctx, sourceArchive, key, func() (models.ScenarioSeries, error) {
		return p.inner.Baseline(ctx, coord, window)
	})
}

func (p *CachedProvider) Projection(ctx context.Context, coord models.Coordinate, scenario models.Scenario, start, end models.Date) (models.ScenarioSeries, error) {
	key := fmt.Sprintf("proj:%s:%s:%s:%s", scenario.Key, coord, start, end)
	return p.lookup(ctx, sourceProjection, key, func() (models.ScenarioSeries, error) {
		return p.inner.Projection(ctx, coord, scenario, start, end)
	})
}

func (p *CachedProvider) lookup(_ context.Context, source, key string, fetch func() (models.ScenarioSeries, error)) (models.ScenarioSeries, error) {
	if cached, ok := p.cache.Get(key); ok {
		if series, ok := cached.(models.ScenarioSeries); ok {
			p.countCache(source, "hit")
			return series, nil
		}
	}
	p.countCache(source, "miss")

	series, err := fetch()
	if err != nil {
		return series, err
	}
	if !series.Empty() {
		p.cache.Put(key, series)
	}
	return series, nil
}

func (p *CachedProvider) countCache(source, result string) {
	if p.metrics != nil {
		p.metrics.CacheLookups.WithLabelValues(source, result).Inc()
	}
}
