package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String renders the coordinate as "lat,lon" with four decimal places,
// which is also used as the cache key prefix.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Date wraps time.Time but marshals/unmarshals as YYYY-MM-DD, matching the
// daily timestamps returned by the climate archive and projection APIs.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimePoint is a single daily observation. Nil temperature or precipitation
// means the upstream series has no observation for that day; nil entries are
// excluded from aggregates, never treated as zero.
type TimePoint struct {
	Date          Date     `json:"date"`
	Temperature   *float64 `json:"temperature,omitempty"`   // °C, daily mean
	Precipitation *float64 `json:"precipitation,omitempty"` // mm, daily sum
}

// Scenario identifies a future emissions pathway. Key is the upstream API
// identifier; Name is the human-readable form shown in reports. Declaration
// order in a scenario list is the report ordering.
type Scenario struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// DefaultScenarios returns the fixed pathway set, in report order.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Key: "ssp1_2_6", Name: "SSP1-2.6 (Ambitious)"},
		{Key: "ssp2_4_5", Name: "SSP2-4.5 (Optimistic)"},
		{Key: "ssp3_7_0", Name: "SSP3-7.0 (BAU)"},
	}
}

// ScenarioSeries is an ordered daily series for one (coordinate, scenario)
// fetch. It is read-only after creation and never merged across scenarios.
// The baseline series uses an empty scenario key.
type ScenarioSeries struct {
	Scenario string      `json:"scenario"`
	Model    string      `json:"model"`
	Points   []TimePoint `json:"points"`
}

// Empty reports whether the series holds no points at all.
func (s ScenarioSeries) Empty() bool {
	return len(s.Points) == 0
}
