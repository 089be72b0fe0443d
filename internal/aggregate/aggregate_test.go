package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazardscope/api/internal/models"
)

func fptr(f float64) *float64 {
	return &f
}

func point(date models.Date, temp, precip *float64) models.TimePoint {
	return models.TimePoint{Date: date, Temperature: temp, Precipitation: precip}
}

func decade2021() models.PeriodWindow {
	return models.PeriodWindow{
		Label:      "2020s (2021-30)",
		Start:      models.NewDate(2021, time.January, 1),
		End:        models.NewDate(2030, time.December, 31),
		Convention: models.AnnualizedTotal,
	}
}

func TestSummarizeWindow_EmptyIntersection_ReturnsAbsent(t *testing.T) {
	// Arrange: series entirely before the window
	series := models.ScenarioSeries{
		Scenario: "ssp2_4_5",
		Points: []models.TimePoint{
			point(models.NewDate(2015, time.June, 1), fptr(10), fptr(2)),
			point(models.NewDate(2016, time.June, 1), fptr(11), fptr(1)),
		},
	}

	// Act
	summary := SummarizeWindow(series, decade2021())

	// Assert: absent, not numeric zero
	assert.True(t, summary.Absent())
	assert.False(t, summary.MeanTemperature.Valid)
	assert.False(t, summary.Precipitation.Valid)
	assert.Equal(t, "ssp2_4_5", summary.Scenario)
}

func TestSummarizeWindow_AllNullValues_ReturnsAbsent(t *testing.T) {
	// Arrange: points inside the window but every value null
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(models.NewDate(2022, time.March, 1), nil, nil),
			point(models.NewDate(2023, time.March, 1), nil, nil),
		},
	}

	// Act
	summary := SummarizeWindow(series, decade2021())

	// Assert
	assert.True(t, summary.Absent())
}

func TestSummarizeWindow_InclusiveBounds(t *testing.T) {
	// Arrange: single points dated exactly on the window's start and end
	window := decade2021()
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(window.Start, fptr(10), nil),
			point(window.End, fptr(14), nil),
		},
	}

	// Act
	summary := SummarizeWindow(series, window)

	// Assert: both boundary points count toward the mean
	require.True(t, summary.MeanTemperature.Valid)
	assert.InDelta(t, 12.0, summary.MeanTemperature.Float, 1e-9)
}

func TestSummarizeWindow_NullsExcludedFromMean(t *testing.T) {
	// Arrange: a null temperature between two real observations
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(models.NewDate(2022, time.June, 1), fptr(10), nil),
			point(models.NewDate(2022, time.June, 2), nil, nil),
			point(models.NewDate(2022, time.June, 3), fptr(14), nil),
		},
	}

	// Act
	summary := SummarizeWindow(series, decade2021())

	// Assert: the null is excluded, not averaged in as zero
	require.True(t, summary.MeanTemperature.Valid)
	assert.InDelta(t, 12.0, summary.MeanTemperature.Float, 1e-9)
	assert.False(t, summary.Precipitation.Valid)
}

func TestSummarizeWindow_FullDecade_AnnualizesPrecipitation(t *testing.T) {
	// Arrange: series spanning the whole decade, 120mm total
	window := decade2021()
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(window.Start, fptr(12), fptr(50)),
			point(models.NewDate(2025, time.July, 1), fptr(13), fptr(30)),
			point(window.End, fptr(14), fptr(40)),
		},
	}

	// Act
	summary := SummarizeWindow(series, window)

	// Assert: sum 120 over a nominal 10-year decade
	require.True(t, summary.Precipitation.Valid)
	assert.InDelta(t, 12.0, summary.Precipitation.Float, 1e-9)
	assert.True(t, summary.PrecipAnnualized)
	assert.False(t, summary.Partial)
}

func TestSummarizeWindow_Baseline_AnnualAverageOverThirtyYears(t *testing.T) {
	// Arrange
	window := models.BaselineWindow()
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(window.Start, fptr(11), fptr(300)),
			point(models.NewDate(2005, time.July, 1), fptr(12), fptr(300)),
			point(window.End, fptr(13), fptr(300)),
		},
	}

	// Act
	summary := SummarizeWindow(series, window)

	// Assert: 900mm over 30 nominal years
	require.True(t, summary.Precipitation.Valid)
	assert.InDelta(t, 30.0, summary.Precipitation.Float, 1e-9)
	assert.True(t, summary.PrecipAnnualized)
}

func TestSummarizeWindow_PartialCoverage_ReportsRawSumUnscaled(t *testing.T) {
	// Arrange: upstream series stops mid-decade
	window := decade2021()
	series := models.ScenarioSeries{
		Points: []models.TimePoint{
			point(window.Start, fptr(12), fptr(100)),
			point(models.NewDate(2024, time.December, 31), fptr(13), fptr(80)),
		},
	}

	// Act
	summary := SummarizeWindow(series, window)

	// Assert: observed sum as-is, flagged partial, not divided by ten
	require.True(t, summary.Precipitation.Valid)
	assert.InDelta(t, 180.0, summary.Precipitation.Float, 1e-9)
	assert.False(t, summary.PrecipAnnualized)
	assert.True(t, summary.Partial)
}

func TestSummarize_OneSummaryPerWindow(t *testing.T) {
	// Arrange: series covering only the first of three decades
	windows := models.FutureWindows()
	series := models.ScenarioSeries{
		Scenario: "ssp3_7_0",
		Points: []models.TimePoint{
			point(models.NewDate(2021, time.January, 1), fptr(12), fptr(10)),
			point(models.NewDate(2030, time.December, 31), fptr(13), fptr(20)),
		},
	}

	// Act
	summaries := Summarize(series, windows)

	// Assert: absent windows still occupy their slot
	require.Len(t, summaries, len(windows))
	assert.False(t, summaries[0].Absent())
	assert.True(t, summaries[1].Absent())
	assert.True(t, summaries[2].Absent())
	for i, summary := range summaries {
		assert.Equal(t, windows[i].Label, summary.Window.Label)
		assert.Equal(t, "ssp3_7_0", summary.Scenario)
	}
}
