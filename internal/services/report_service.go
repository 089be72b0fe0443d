package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hazardscope/api/internal/aggregate"
	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/climate"
	"github.com/hazardscope/api/internal/hazard"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/reference"
	"github.com/hazardscope/api/internal/report"
	"github.com/hazardscope/api/internal/upstream"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Service-level errors
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ReportService defines the interface for climate-hazard report generation.
type ReportService interface {
	// ReportAtPoint builds the full report for one coordinate: a baseline
	// row plus one row per (scenario, future decade), with locally
	// computed risk labels and externally supplied hazard labels.
	//
	// Returns ErrInvalidCoordinates when lat/lon are out of range.
	// Upstream failures never fail the report: each failed data point
	// degrades to its not-available marker while the rest of the row
	// populates. regionID is optional and only feeds the static
	// reference-table column.
	ReportAtPoint(ctx context.Context, lat, lon float64, regionID string) (*models.LocationReport, error)
}

// reportService is the concrete implementation of ReportService.
type reportService struct {
	series     climate.Provider
	hazards    hazard.Provider
	refTable   *reference.Table // nil when no table is configured
	scenarios  []models.Scenario
	baseline   models.PeriodWindow
	futures    []models.PeriodWindow
	thresholds classify.Thresholds
	log        *logger.Logger
	metrics    *observability.Metrics
}

// NewReportService creates a ReportService with the fixed default window
// and scenario sets.
func NewReportService(series climate.Provider, hazards hazard.Provider, refTable *reference.Table, thresholds classify.Thresholds, log *logger.Logger, metrics *observability.Metrics) ReportService {
	return &reportService{
		series:     series,
		hazards:    hazards,
		refTable:   refTable,
		scenarios:  models.DefaultScenarios(),
		baseline:   models.BaselineWindow(),
		futures:    models.FutureWindows(),
		thresholds: thresholds,
		log:        log,
		metrics:    metrics,
	}
}

// ReportAtPoint validates the coordinate, fetches every data source with
// per-source failure isolation, aggregates, classifies, and assembles the
// final table. The remote calls run strictly sequentially; no source's
// failure aborts retrieval of the others.
func (s *reportService) ReportAtPoint(ctx context.Context, lat, lon float64, regionID string) (*models.LocationReport, error) {
	coord := models.Coordinate{Lat: lat, Lon: lon}
	if err := validateCoordinate(coord); err != nil {
		s.log.Warn("Invalid coordinates provided", map[string]interface{}{
			"lat": lat,
			"lon": lon,
		})
		return nil, err
	}

	s.log.Info("Building location report", map[string]interface{}{
		"lat":    lat,
		"lon":    lon,
		"region": regionID,
	})

	baselineSummary := s.fetchBaseline(ctx, coord)
	futures := s.fetchFutures(ctx, coord)
	baselineHazards, horizonHazards := s.fetchHazards(ctx, coord)

	rows := report.Assemble(report.Input{
		Baseline:        baselineSummary,
		BaselineHazards: baselineHazards,
		Scenarios:       s.scenarios,
		Futures:         futures,
		Hazards:         horizonHazards,
		Reference:       s.referenceScores(regionID),
		Thresholds:      s.thresholds,
	})

	if s.metrics != nil {
		s.metrics.ReportsGenerated.Inc()
	}

	s.log.Info("Location report assembled", map[string]interface{}{
		"lat":  lat,
		"lon":  lon,
		"rows": len(rows),
	})

	return &models.LocationReport{
		Location:    coord,
		RegionID:    regionID,
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
	}, nil
}

// fetchBaseline retrieves and aggregates the historical series. A failed
// fetch degrades to an absent summary for the baseline window.
func (s *reportService) fetchBaseline(ctx context.Context, coord models.Coordinate) models.PeriodSummary {
	series, err := s.series.Baseline(ctx, coord, s.baseline)
	if err != nil {
		s.logUpstream("baseline series fetch failed", err, map[string]interface{}{
			"coord":  coord.String(),
			"window": s.baseline.Label,
		})
		return models.PeriodSummary{Window: s.baseline}
	}
	return aggregate.SummarizeWindow(series, s.baseline)
}

// fetchFutures retrieves one projection series per scenario and aggregates
// it over every future window. One scenario's failure leaves only that
// scenario's summaries absent.
func (s *reportService) fetchFutures(ctx context.Context, coord models.Coordinate) map[string][]models.PeriodSummary {
	start := s.futures[0].Start
	end := s.futures[len(s.futures)-1].End

	futures := make(map[string][]models.PeriodSummary, len(s.scenarios))
	for _, scenario := range s.scenarios {
		series, err := s.series.Projection(ctx, coord, scenario, start, end)
		if err != nil {
			s.logUpstream("projection series fetch failed", err, map[string]interface{}{
				"coord":    coord.String(),
				"scenario": scenario.Key,
			})
			futures[scenario.Key] = absentSummaries(s.futures, scenario.Key)
			continue
		}
		futures[scenario.Key] = aggregate.Summarize(series, s.futures)
	}
	return futures
}

// fetchHazards looks up every hazard dimension for the baseline slice and
// each projection horizon. Every lookup is independent; a timeout on one
// (dimension, horizon) leaves only that label empty.
func (s *reportService) fetchHazards(ctx context.Context, coord models.Coordinate) (models.HazardLabels, map[int]models.HazardLabels) {
	baseline := s.hazardsAtHorizon(ctx, coord, hazard.BaselineHorizon)

	horizons := make(map[int]models.HazardLabels, len(report.HazardHorizons))
	for _, horizon := range report.HazardHorizons {
		horizons[horizon] = s.hazardsAtHorizon(ctx, coord, horizon)
	}
	return baseline, horizons
}

func (s *reportService) hazardsAtHorizon(ctx context.Context, coord models.Coordinate, horizon int) models.HazardLabels {
	return models.HazardLabels{
		WaterStress: s.lookupHazard(ctx, hazard.DimWaterStress, horizon, coord),
		Drought:     s.lookupHazard(ctx, hazard.DimDrought, horizon, coord),
		RiverFlood:  s.lookupHazard(ctx, hazard.DimRiverFlood, horizon, coord),
	}
}

// lookupHazard returns the label or the empty string when the lookup failed
// or found nothing. No-data is logged at debug level only: it is the normal
// outcome for ocean coordinates, not a service problem.
func (s *reportService) lookupHazard(ctx context.Context, dim hazard.Dimension, horizon int, coord models.Coordinate) string {
	label, err := s.hazards.Lookup(ctx, dim, horizon, coord)
	if err != nil {
		fields := map[string]interface{}{
			"coord":     coord.String(),
			"dimension": string(dim),
			"horizon":   horizon,
		}
		if errors.Is(err, upstream.ErrNoData) {
			s.log.Debug("No hazard data at location", fields)
		} else {
			s.log.Warn("Hazard lookup failed", mergeErr(fields, err))
		}
		return ""
	}
	return label
}

// referenceScores reads the static table for the region, one value per
// (scenario, horizon) plus the baseline cell. A nil table or missing keys
// yield absent values.
func (s *reportService) referenceScores(regionID string) map[string]map[int]models.Value {
	if regionID == "" {
		return nil
	}

	scores := make(map[string]map[int]models.Value, len(s.scenarios)+1)
	scores[models.BaselineScenarioKey] = map[int]models.Value{
		hazard.BaselineHorizon: s.refTable.Lookup(reference.VarWaterStress, "baseline", models.BaselineScenarioKey, regionID),
	}
	for _, scenario := range s.scenarios {
		byHorizon := make(map[int]models.Value, len(report.HazardHorizons))
		for _, horizon := range report.HazardHorizons {
			byHorizon[horizon] = s.refTable.Lookup(reference.VarWaterStress, strconv.Itoa(horizon), scenario.Key, regionID)
		}
		scores[scenario.Key] = byHorizon
	}
	return scores
}

// logUpstream logs an upstream failure at a level matching its class:
// no-data is expected absence, everything else is a degraded data source.
func (s *reportService) logUpstream(msg string, err error, fields map[string]interface{}) {
	if errors.Is(err, upstream.ErrNoData) {
		s.log.Debug(msg, fields)
		return
	}
	s.log.Warn(msg, mergeErr(fields, err))
}

func mergeErr(fields map[string]interface{}, err error) map[string]interface{} {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["error"] = err.Error()
	return merged
}

func absentSummaries(windows []models.PeriodWindow, scenario string) []models.PeriodSummary {
	summaries := make([]models.PeriodSummary, 0, len(windows))
	for _, window := range windows {
		summaries = append(summaries, models.PeriodSummary{Window: window, Scenario: scenario})
	}
	return summaries
}

func validateCoordinate(coord models.Coordinate) error {
	if coord.Valid() {
		return nil
	}
	if coord.Lat < MinLatitude || coord.Lat > MaxLatitude {
		return fmt.Errorf("%w: latitude must be between %.0f and %.0f, got %f",
			ErrInvalidCoordinates, MinLatitude, MaxLatitude, coord.Lat)
	}
	return fmt.Errorf("%w: longitude must be between %.0f and %.0f, got %f",
		ErrInvalidCoordinates, MinLongitude, MaxLongitude, coord.Lon)
}
