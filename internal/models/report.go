package models

import "time"

// RiskLabel is a locally computed ordinal risk level. The ordering is
// Low < Medium < High < Extreme; RiskNotAvailable sits outside the order
// and marks a dimension that could not be classified.
type RiskLabel string

const (
	RiskNotAvailable RiskLabel = NotAvailableMarker
	RiskLow          RiskLabel = "Low"
	RiskMedium       RiskLabel = "Medium"
	RiskHigh         RiskLabel = "High"
	RiskExtreme      RiskLabel = "Extreme"
)

// Rank returns the ordinal position of the label, with RiskNotAvailable
// below every real level.
func (r RiskLabel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskExtreme:
		return 4
	default:
		return 0
	}
}

// HazardLabels are the externally supplied labels from the spatial hazard
// service. They are opaque pass-through strings in the service's own
// vocabulary and are never mixed with locally computed RiskLabels; an empty
// field means the service had no data for that dimension at the location.
type HazardLabels struct {
	WaterStress string `json:"water_stress,omitempty"`
	Drought     string `json:"drought,omitempty"`
	RiverFlood  string `json:"river_flood,omitempty"`
}

// Empty reports whether no hazard dimension returned a label.
func (h HazardLabels) Empty() bool {
	return h.WaterStress == "" && h.Drought == "" && h.RiverFlood == ""
}

// ReportRow is one flattened line of the final table: a (scenario, period)
// cell with its climate aggregates, the locally computed risk labels, and
// the externally supplied hazard labels kept in visibly distinct fields.
type ReportRow struct {
	Scenario     string `json:"scenario"`      // scenario key, "baseline" for the historical row
	ScenarioName string `json:"scenario_name"` // human-readable pathway name
	Period       string `json:"period"`        // window label

	MeanTemperature  Value `json:"mean_temperature_c"`
	Precipitation    Value `json:"precipitation_mm"`
	PrecipAnnualized bool  `json:"precip_annualized"`
	Partial          bool  `json:"partial"`

	// Locally computed labels (fixed thresholds on the aggregates above).
	DroughtRisk  RiskLabel `json:"drought_risk"`
	FloodRisk    RiskLabel `json:"flood_risk"`
	WildfireRisk RiskLabel `json:"wildfire_risk"`

	// Externally supplied labels for the nearest matching hazard horizon.
	Hazard HazardLabels `json:"hazard"`

	// WaterStressIndex is the optional region-level score from the static
	// reference table; absent when no region id was supplied or the table
	// has no entry.
	WaterStressIndex Value `json:"water_stress_index"`
}

// BaselineScenarioKey tags the historical row in report output.
const BaselineScenarioKey = "baseline"

// LocationReport is the full per-request result: one baseline row followed
// by one row per (scenario, future period), in stable order. It is built
// fresh per request and never persisted.
type LocationReport struct {
	Location    Coordinate  `json:"location"`
	RegionID    string      `json:"region_id,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        []ReportRow `json:"rows"`
}
