package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hazardscope/api/internal/models"
)

// InputRow is one line of the batch input table.
type InputRow struct {
	Lat      float64
	Lon      float64
	RegionID string
}

// FlatRow is one line of the batch output table: the input coordinate plus
// one flattened ReportRow. Absent numeric values and missing labels are
// serialized as the not-available marker and parse back to absent.
type FlatRow struct {
	Lat      float64
	Lon      float64
	RegionID string
	Row      models.ReportRow
}

// outputHeader is the fixed column order of the flat output table.
var outputHeader = []string{
	"lat", "lon", "region",
	"scenario", "scenario_name", "period",
	"mean_temperature_c", "precipitation_mm", "precip_annualized", "partial",
	"drought_risk", "flood_risk", "wildfire_risk",
	"hazard_water_stress", "hazard_drought", "hazard_river_flood",
	"water_stress_index",
}

// ParseInput reads the batch input table: lat, lon, and an optional region
// id per line. A leading header line is detected and skipped.
func ParseInput(r io.Reader) ([]InputRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input csv: %w", err)
	}

	rows := make([]InputRow, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("input line %d: need at least lat,lon", i+1)
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if latErr != nil || lonErr != nil {
			// Non-numeric first line is a header.
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("input line %d: bad coordinate %q,%q", i+1, record[0], record[1])
		}

		row := InputRow{Lat: lat, Lon: lon}
		if len(record) > 2 {
			row.RegionID = strings.TrimSpace(record[2])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteOutput writes the flat output table with a header line.
func WriteOutput(w io.Writer, rows []FlatRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(outputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, flat := range rows {
		if err := writer.Write(flat.record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (f FlatRow) record() []string {
	row := f.Row
	return []string{
		strconv.FormatFloat(f.Lat, 'f', 4, 64),
		strconv.FormatFloat(f.Lon, 'f', 4, 64),
		f.RegionID,
		row.Scenario,
		row.ScenarioName,
		row.Period,
		row.MeanTemperature.String(),
		row.Precipitation.String(),
		strconv.FormatBool(row.PrecipAnnualized),
		strconv.FormatBool(row.Partial),
		string(row.DroughtRisk),
		string(row.FloodRisk),
		string(row.WildfireRisk),
		labelOut(row.Hazard.WaterStress),
		labelOut(row.Hazard.Drought),
		labelOut(row.Hazard.RiverFlood),
		row.WaterStressIndex.String(),
	}
}

// ParseOutput reads a flat output table back, recovering the same
// scenario/period/value structure the writer produced. Not-available
// markers parse back to absent values and empty labels.
func ParseOutput(r io.Reader) ([]FlatRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(outputHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read output csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("output csv is empty")
	}

	// Skip the header line.
	rows := make([]FlatRow, 0, len(records)-1)
	for i, record := range records[1:] {
		flat, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("output line %d: %w", i+2, err)
		}
		rows = append(rows, flat)
	}
	return rows, nil
}

func parseRecord(record []string) (FlatRow, error) {
	lat, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad lat %q", record[0])
	}
	lon, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad lon %q", record[1])
	}

	meanTemp, err := models.ParseValue(record[6])
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad temperature %q", record[6])
	}
	precip, err := models.ParseValue(record[7])
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad precipitation %q", record[7])
	}
	annualized, err := strconv.ParseBool(record[8])
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad precip_annualized %q", record[8])
	}
	partial, err := strconv.ParseBool(record[9])
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad partial %q", record[9])
	}
	stressIndex, err := models.ParseValue(record[16])
	if err != nil {
		return FlatRow{}, fmt.Errorf("bad water_stress_index %q", record[16])
	}

	return FlatRow{
		Lat:      lat,
		Lon:      lon,
		RegionID: record[2],
		Row: models.ReportRow{
			Scenario:         record[3],
			ScenarioName:     record[4],
			Period:           record[5],
			MeanTemperature:  meanTemp,
			Precipitation:    precip,
			PrecipAnnualized: annualized,
			Partial:          partial,
			DroughtRisk:      models.RiskLabel(record[10]),
			FloodRisk:        models.RiskLabel(record[11]),
			WildfireRisk:     models.RiskLabel(record[12]),
			Hazard: models.HazardLabels{
				WaterStress: labelIn(record[13]),
				Drought:     labelIn(record[14]),
				RiverFlood:  labelIn(record[15]),
			},
			WaterStressIndex: stressIndex,
		},
	}, nil
}

// labelOut renders a pass-through hazard label, making absence explicit.
func labelOut(label string) string {
	if label == "" {
		return models.NotAvailableMarker
	}
	return label
}

func labelIn(field string) string {
	if field == models.NotAvailableMarker {
		return ""
	}
	return field
}
