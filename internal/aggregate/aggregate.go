// Package aggregate reduces a daily climate series into period-level
// summaries: mean temperature and total-or-annualized precipitation per
// calendar window. All functions are pure; the aggregator holds no state
// between calls.
package aggregate

import (
	"github.com/hazardscope/api/internal/models"
)

// Summarize computes one PeriodSummary per window. Windows with no
// intersecting points (or only null points) yield an absent summary rather
// than being skipped, so downstream tables show the gap explicitly.
//
// Window bounds are inclusive: a point dated exactly on Start or End counts.
// Null temperature or precipitation entries are excluded from their
// aggregate, never counted as zero.
//
// Precipitation follows the window's convention when the series fully
// covers the window (sum divided by the window's nominal years). When
// coverage is partial the observed sum is reported as-is and the summary is
// flagged Partial; partial sums are never rescaled to look like full
// windows.
func Summarize(series models.ScenarioSeries, windows []models.PeriodWindow) []models.PeriodSummary {
	summaries := make([]models.PeriodSummary, 0, len(windows))
	for _, window := range windows {
		summaries = append(summaries, summarizeWindow(series, window))
	}
	return summaries
}

// SummarizeWindow computes the summary for a single window.
func SummarizeWindow(series models.ScenarioSeries, window models.PeriodWindow) models.PeriodSummary {
	return summarizeWindow(series, window)
}

func summarizeWindow(series models.ScenarioSeries, window models.PeriodWindow) models.PeriodSummary {
	summary := models.PeriodSummary{
		Window:   window,
		Scenario: series.Scenario,
	}

	var (
		tempSum     float64
		tempCount   int
		precipSum   float64
		precipCount int
		pointCount  int
	)

	for _, point := range series.Points {
		if !window.Contains(point.Date.Time) {
			continue
		}
		pointCount++
		if point.Temperature != nil {
			tempSum += *point.Temperature
			tempCount++
		}
		if point.Precipitation != nil {
			precipSum += *point.Precipitation
			precipCount++
		}
	}

	// Zero intersecting points, or points with no usable values: absent.
	if pointCount == 0 || (tempCount == 0 && precipCount == 0) {
		return summary
	}

	if tempCount > 0 {
		summary.MeanTemperature = models.Some(tempSum / float64(tempCount))
	}

	complete := covers(series, window)
	summary.Partial = !complete

	if precipCount > 0 {
		if complete {
			summary.Precipitation = models.Some(precipSum / float64(window.NominalYears()))
			summary.PrecipAnnualized = true
		} else {
			// Observed sum, unscaled. Rescaling a partial window would
			// fabricate a full-period rate from incomplete data.
			summary.Precipitation = models.Some(precipSum)
			summary.PrecipAnnualized = false
		}
	}

	return summary
}

// covers reports whether the series' date range spans the whole window.
// Series points arrive ordered by date from the upstream API, so the first
// and last points bound the range.
func covers(series models.ScenarioSeries, window models.PeriodWindow) bool {
	if len(series.Points) == 0 {
		return false
	}
	first := series.Points[0].Date.Time
	last := series.Points[len(series.Points)-1].Date.Time
	return !first.After(window.Start.Time) && !last.Before(window.End.Time)
}
