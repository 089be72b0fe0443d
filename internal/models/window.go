package models

import "time"

// PrecipConvention selects how a window's precipitation aggregate is
// expressed. The two conventions are numerically related but must never be
// mixed silently: a 30-year baseline reports the long-run annual average,
// while a decade window reports its total annualized over the nominal decade
// length. The convention travels with the window, not with the aggregator.
type PrecipConvention int

const (
	// AnnualAverage divides the window total by the nominal window years.
	// Used for the multi-decade historical baseline.
	AnnualAverage PrecipConvention = iota
	// AnnualizedTotal divides the decade total by the nominal decade
	// length. Used for the short future windows.
	AnnualizedTotal
)

// String returns the convention name used in report output.
func (p PrecipConvention) String() string {
	if p == AnnualAverage {
		return "annual_average"
	}
	return "annualized_total"
}

// PeriodWindow is a fixed calendar window with inclusive start and end
// dates. A TimePoint dated exactly on Start or End belongs to the window.
type PeriodWindow struct {
	Label      string           `json:"label"`
	Start      Date             `json:"start"`
	End        Date             `json:"end"`
	Convention PrecipConvention `json:"-"`
}

// Contains reports whether t falls inside the window, bounds inclusive.
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start.Time) && !t.After(w.End.Time)
}

// NominalYears is the number of calendar years the window spans by
// definition, independent of how much data a series actually covers.
func (w PeriodWindow) NominalYears() int {
	return w.End.Year() - w.Start.Year() + 1
}

// BaselineWindow returns the fixed historical reference period.
func BaselineWindow() PeriodWindow {
	return PeriodWindow{
		Label:      "1991-2020",
		Start:      NewDate(1991, time.January, 1),
		End:        NewDate(2020, time.December, 31),
		Convention: AnnualAverage,
	}
}

// FutureWindows returns the fixed decade windows, in chronological order.
func FutureWindows() []PeriodWindow {
	return []PeriodWindow{
		{
			Label:      "2020s (2021-30)",
			Start:      NewDate(2021, time.January, 1),
			End:        NewDate(2030, time.December, 31),
			Convention: AnnualizedTotal,
		},
		{
			Label:      "2030s (2031-40)",
			Start:      NewDate(2031, time.January, 1),
			End:        NewDate(2040, time.December, 31),
			Convention: AnnualizedTotal,
		},
		{
			Label:      "2040s (2041-50)",
			Start:      NewDate(2041, time.January, 1),
			End:        NewDate(2050, time.December, 31),
			Convention: AnnualizedTotal,
		},
	}
}

// PeriodSummary is the aggregate of one ScenarioSeries over one window.
// An absent summary (both values invalid) means the window had no usable
// points; it is carried through to the report rather than dropped, so the
// final table shows the gap explicitly.
type PeriodSummary struct {
	Window   PeriodWindow `json:"window"`
	Scenario string       `json:"scenario"`

	MeanTemperature Value `json:"mean_temperature"`
	Precipitation   Value `json:"precipitation"`

	// PrecipAnnualized is false when the series only partially covered the
	// window: the precipitation value is then the raw observed sum, not a
	// per-year rate, and must not be compared against annualized values.
	PrecipAnnualized bool `json:"precip_annualized"`

	// Partial marks a window whose series coverage stopped short of the
	// window bounds. Partial sums are reported as observed, never rescaled.
	Partial bool `json:"partial"`
}

// Absent reports whether the summary carries no usable aggregate at all.
func (s PeriodSummary) Absent() bool {
	return !s.MeanTemperature.Valid && !s.Precipitation.Valid
}
