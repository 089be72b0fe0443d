// Package report flattens aggregated summaries, locally computed risk
// labels, and externally supplied hazard labels into the final ordered
// table. Assembly is deterministic: the same input produces a byte-identical
// row sequence.
package report

import (
	"sort"

	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/hazard"
	"github.com/hazardscope/api/internal/models"
)

// HazardHorizons are the projection years the hazard datasets are bucketed
// at. Climate decades are paired against these via HorizonForWindow.
var HazardHorizons = []int{2030, 2040, 2050}

// HorizonForWindow maps a climate window to the hazard horizon year nearest
// to the window's end year, breaking ties toward the later horizon. So
// 2021–2030 pairs with 2030, 2031–2040 with 2040, and 2041–2050 with 2050.
// A baseline-convention window pairs with the hazard baseline slice.
func HorizonForWindow(w models.PeriodWindow) int {
	if w.Convention == models.AnnualAverage {
		return hazard.BaselineHorizon
	}

	endYear := w.End.Year()
	best := HazardHorizons[0]
	bestDist := abs(endYear - best)
	for _, h := range HazardHorizons[1:] {
		d := abs(endYear - h)
		// <= prefers the later horizon on a tie.
		if d <= bestDist {
			best = h
			bestDist = d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Input carries everything the assembler needs. Hazards and Reference are
// optional: missing entries surface as not-available fields, never as
// substituted defaults.
type Input struct {
	// Baseline is the historical summary; BaselineHazards the hazard
	// labels for the baseline slice.
	Baseline        models.PeriodSummary
	BaselineHazards models.HazardLabels

	// Scenarios, in declaration order, define row grouping. Futures maps
	// scenario key to that scenario's period summaries.
	Scenarios []models.Scenario
	Futures   map[string][]models.PeriodSummary

	// Hazards maps horizon year → labels. The hazard datasets are bucketed
	// by horizon only; every scenario row for the same horizon shows the
	// same external labels.
	Hazards map[int]models.HazardLabels

	// Reference maps scenario key → horizon year → region-level water
	// stress index from the static table. BaselineHorizon keys the
	// baseline row's entry under the baseline scenario key.
	Reference map[string]map[int]models.Value

	Thresholds classify.Thresholds
}

// Assemble produces the ordered rows: the baseline row first, then one row
// per (scenario, period) sorted by scenario declaration order and period
// chronology.
func Assemble(in Input) []models.ReportRow {
	rows := make([]models.ReportRow, 0, 1+len(in.Scenarios)*3)

	baseline := buildRow(in.Baseline, models.BaselineScenarioKey, "Historical baseline", in.BaselineHazards, in.Thresholds)
	baseline.WaterStressIndex = in.referenceFor(models.BaselineScenarioKey, hazard.BaselineHorizon)
	rows = append(rows, baseline)

	for _, scenario := range in.Scenarios {
		summaries := append([]models.PeriodSummary(nil), in.Futures[scenario.Key]...)
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Window.Start.Before(summaries[j].Window.Start.Time)
		})

		for _, summary := range summaries {
			horizon := HorizonForWindow(summary.Window)
			row := buildRow(summary, scenario.Key, scenario.Name, in.Hazards[horizon], in.Thresholds)
			row.WaterStressIndex = in.referenceFor(scenario.Key, horizon)
			rows = append(rows, row)
		}
	}

	return rows
}

func (in Input) referenceFor(scenarioKey string, horizon int) models.Value {
	if byHorizon, ok := in.Reference[scenarioKey]; ok {
		return byHorizon[horizon]
	}
	return models.Value{}
}

func buildRow(summary models.PeriodSummary, scenarioKey, scenarioName string, hazards models.HazardLabels, thresholds classify.Thresholds) models.ReportRow {
	labels := classify.Classify(summary, thresholds)

	return models.ReportRow{
		Scenario:         scenarioKey,
		ScenarioName:     scenarioName,
		Period:           summary.Window.Label,
		MeanTemperature:  summary.MeanTemperature,
		Precipitation:    summary.Precipitation,
		PrecipAnnualized: summary.PrecipAnnualized,
		Partial:          summary.Partial,
		DroughtRisk:      labels.Drought,
		FloodRisk:        labels.Flood,
		WildfireRisk:     labels.Wildfire,
		Hazard:           hazards,
	}
}
