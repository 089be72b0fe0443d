package batch

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/report"
	"github.com/hazardscope/api/internal/services"
)

// MockReportService is a mock implementation of services.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ReportAtPoint(ctx context.Context, lat, lon float64, regionID string) (*models.LocationReport, error) {
	args := m.Called(ctx, lat, lon, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationReport), args.Error(1)
}

func newTestRunner(service services.ReportService, rowDelay time.Duration) *Runner {
	return NewRunner(service, rowDelay, logger.New("test"), observability.NewMetricsForTesting())
}

// populatedReport builds a fully populated standard report for a coordinate.
func populatedReport(lat, lon float64) *models.LocationReport {
	scenarios := models.DefaultScenarios()
	futures := make(map[string][]models.PeriodSummary, len(scenarios))
	for _, scenario := range scenarios {
		var summaries []models.PeriodSummary
		for _, window := range models.FutureWindows() {
			summaries = append(summaries, models.PeriodSummary{
				Window:           window,
				Scenario:         scenario.Key,
				MeanTemperature:  models.Some(14),
				Precipitation:    models.Some(620),
				PrecipAnnualized: true,
			})
		}
		futures[scenario.Key] = summaries
	}

	rows := report.Assemble(report.Input{
		Baseline: models.PeriodSummary{
			Window:           models.BaselineWindow(),
			MeanTemperature:  models.Some(12),
			Precipitation:    models.Some(650),
			PrecipAnnualized: true,
		},
		BaselineHazards: models.HazardLabels{WaterStress: "Medium-High"},
		Scenarios:       scenarios,
		Futures:         futures,
		Hazards: map[int]models.HazardLabels{
			2030: {WaterStress: "High"},
		},
		Thresholds: classify.DefaultThresholds(),
	})

	return &models.LocationReport{
		Location:    models.Coordinate{Lat: lat, Lon: lon},
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
	}
}

func TestRunner_Run_FlattensRowsInInputOrder(t *testing.T) {
	// Arrange
	service := new(MockReportService)
	service.On("ReportAtPoint", mock.Anything, 30.3477, -95.4502, "USA.43").
		Return(populatedReport(30.3477, -95.4502), nil)
	service.On("ReportAtPoint", mock.Anything, 52.52, 13.405, "").
		Return(populatedReport(52.52, 13.405), nil)
	runner := newTestRunner(service, 0)
	inputs := []InputRow{
		{Lat: 30.3477, Lon: -95.4502, RegionID: "USA.43"},
		{Lat: 52.52, Lon: 13.405},
	}

	// Act
	flat, err := runner.Run(context.Background(), inputs)

	// Assert: 2 inputs x 10 report rows, input coordinate carried on each
	require.NoError(t, err)
	require.Len(t, flat, 20)
	for _, row := range flat[:10] {
		assert.Equal(t, 30.3477, row.Lat)
		assert.Equal(t, "USA.43", row.RegionID)
	}
	for _, row := range flat[10:] {
		assert.Equal(t, 52.52, row.Lat)
		assert.Empty(t, row.RegionID)
	}
	service.AssertExpectations(t)
}

func TestRunner_Run_FailedRowEmitsAbsentRowsAndContinues(t *testing.T) {
	// Arrange: the middle row is rejected by the service
	service := new(MockReportService)
	service.On("ReportAtPoint", mock.Anything, 30.3477, -95.4502, "").
		Return(populatedReport(30.3477, -95.4502), nil)
	service.On("ReportAtPoint", mock.Anything, 95.0, 10.0, "").
		Return(nil, services.ErrInvalidCoordinates)
	service.On("ReportAtPoint", mock.Anything, 52.52, 13.405, "").
		Return(populatedReport(52.52, 13.405), nil)
	runner := newTestRunner(service, 0)
	inputs := []InputRow{
		{Lat: 30.3477, Lon: -95.4502},
		{Lat: 95.0, Lon: 10.0},
		{Lat: 52.52, Lon: 13.405},
	}

	// Act
	flat, err := runner.Run(context.Background(), inputs)

	// Assert: every input keeps its full row set
	require.NoError(t, err)
	require.Len(t, flat, 30)

	failed := flat[10:20]
	assert.Equal(t, models.BaselineScenarioKey, failed[0].Row.Scenario)
	for _, row := range failed {
		assert.Equal(t, 95.0, row.Lat)
		assert.False(t, row.Row.MeanTemperature.Valid)
		assert.Equal(t, models.RiskNotAvailable, row.Row.DroughtRisk)
		assert.True(t, row.Row.Hazard.Empty())
	}

	// Surrounding rows are unaffected.
	assert.True(t, flat[0].Row.MeanTemperature.Valid)
	assert.True(t, flat[20].Row.MeanTemperature.Valid)
}

func TestRunner_Run_CancellationStopsBeforeNextRow(t *testing.T) {
	// Arrange: cancel while the first row is being processed
	ctx, cancel := context.WithCancel(context.Background())
	service := new(MockReportService)
	service.On("ReportAtPoint", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(populatedReport(30.3477, -95.4502), nil)
	runner := newTestRunner(service, time.Millisecond)
	inputs := []InputRow{
		{Lat: 30.3477, Lon: -95.4502},
		{Lat: 52.52, Lon: 13.405},
	}

	// Act
	flat, err := runner.Run(ctx, inputs)

	// Assert: the first row's output survives, the second never starts
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, flat, 10)
	service.AssertNumberOfCalls(t, "ReportAtPoint", 1)
}

func TestParseInput_SkipsHeaderLine(t *testing.T) {
	input := "lat,lon,region\n30.3477,-95.4502,USA.43\n52.52,13.405\n"

	rows, err := ParseInput(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, InputRow{Lat: 30.3477, Lon: -95.4502, RegionID: "USA.43"}, rows[0])
	assert.Equal(t, InputRow{Lat: 52.52, Lon: 13.405}, rows[1])
}

func TestParseInput_HeaderlessInput(t *testing.T) {
	rows, err := ParseInput(strings.NewReader("30.3477,-95.4502\n"))

	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseInput_BadCoordinateMidFile(t *testing.T) {
	_, err := ParseInput(strings.NewReader("30.3477,-95.4502\nnorth,west\n"))

	assert.Error(t, err)
}

func TestParseInput_TooFewColumns(t *testing.T) {
	_, err := ParseInput(strings.NewReader("30.3477\n"))

	assert.Error(t, err)
}

func TestOutput_RoundTrip(t *testing.T) {
	// Arrange: one populated row set, one all-absent set, so the marker
	// serialization is exercised in both directions
	populated := flatten(InputRow{Lat: 30.3477, Lon: -95.4502, RegionID: "USA.43"}, populatedReport(30.3477, -95.4502).Rows)
	absent := flatten(InputRow{Lat: 0.01, Lon: -140.0}, allAbsentRows())
	rows := append(populated, absent...)

	// Act
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, rows))
	parsed, err := ParseOutput(&buf)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}

func TestWriteOutput_AbsentValuesUseMarker(t *testing.T) {
	// Arrange
	rows := flatten(InputRow{Lat: 0.01, Lon: -140.0}, allAbsentRows())

	// Act
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, rows))

	// Assert: header plus marker columns on the first data line
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, strings.Join(outputHeader, ","), lines[0])
	assert.Contains(t, lines[1], models.NotAvailableMarker)
}

func TestParseOutput_EmptyInput(t *testing.T) {
	_, err := ParseOutput(strings.NewReader(""))

	assert.Error(t, err)
}
