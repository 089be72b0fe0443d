package climate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazardscope/api/internal/cache"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/upstream"
)

// countingProvider returns a canned series (or error) and counts calls.
type countingProvider struct {
	calls  int
	series models.ScenarioSeries
	err    error
}

func (p *countingProvider) Baseline(ctx context.Context, coord models.Coordinate, window models.PeriodWindow) (models.ScenarioSeries, error) {
	p.calls++
	return p.series, p.err
}

func (p *countingProvider) Projection(ctx context.Context, coord models.Coordinate, scenario models.Scenario, start, end models.Date) (models.ScenarioSeries, error) {
	p.calls++
	return p.series, p.err
}

func seriesWithOnePoint() models.ScenarioSeries {
	temp := 12.0
	return models.ScenarioSeries{
		Points: []models.TimePoint{
			{Date: models.NewDate(2021, time.June, 1), Temperature: &temp},
		},
	}
}

func TestCachedProvider_SecondFetchServedFromCache(t *testing.T) {
	// Arrange
	inner := &countingProvider{series: seriesWithOnePoint()}
	cached := NewCachedProvider(inner, cache.New(16, time.Hour), observability.NewMetricsForTesting())
	ctx := context.Background()

	// Act
	first, err := cached.Baseline(ctx, testCoord(), models.BaselineWindow())
	require.NoError(t, err)
	second, err := cached.Baseline(ctx, testCoord(), models.BaselineWindow())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachedProvider_DistinctParamsDistinctEntries(t *testing.T) {
	inner := &countingProvider{series: seriesWithOnePoint()}
	cached := NewCachedProvider(inner, cache.New(16, time.Hour), observability.NewMetricsForTesting())
	ctx := context.Background()
	start := models.NewDate(2021, time.January, 1)
	end := models.NewDate(2050, time.December, 31)

	_, err := cached.Projection(ctx, testCoord(), models.DefaultScenarios()[0], start, end)
	require.NoError(t, err)
	_, err = cached.Projection(ctx, testCoord(), models.DefaultScenarios()[1], start, end)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	// Arrange: the first fetch fails, the second succeeds
	inner := &countingProvider{err: upstream.ErrUnavailable}
	cached := NewCachedProvider(inner, cache.New(16, time.Hour), observability.NewMetricsForTesting())
	ctx := context.Background()

	// Act
	_, err := cached.Baseline(ctx, testCoord(), models.BaselineWindow())
	assert.ErrorIs(t, err, upstream.ErrUnavailable)

	inner.err = nil
	inner.series = seriesWithOnePoint()
	series, err := cached.Baseline(ctx, testCoord(), models.BaselineWindow())

	// Assert: retried, not served a cached failure
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.False(t, series.Empty())
}

func TestCachedProvider_EmptySeriesNotCached(t *testing.T) {
	inner := &countingProvider{series: models.ScenarioSeries{}}
	cached := NewCachedProvider(inner, cache.New(16, time.Hour), observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.Baseline(ctx, testCoord(), models.BaselineWindow())
	require.NoError(t, err)
	_, err = cached.Baseline(ctx, testCoord(), models.BaselineWindow())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
