// Package batch runs the report pipeline over a table of coordinates,
// strictly sequentially, with a fixed inter-row delay to respect upstream
// rate limits. Rows are isolated: one row's total failure yields an
// all-not-available row set instead of halting the batch.
package batch

import (
	"context"
	"time"

	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/report"
	"github.com/hazardscope/api/internal/services"
)

// Runner executes the report pipeline row by row.
type Runner struct {
	service  services.ReportService
	rowDelay time.Duration
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewRunner creates a batch runner.
func NewRunner(service services.ReportService, rowDelay time.Duration, log *logger.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		service:  service,
		rowDelay: rowDelay,
		log:      log,
		metrics:  metrics,
	}
}

// Run processes every input row in order and returns one flattened row set
// per input row, in input order. The only early exit is context
// cancellation, which stops before the next row rather than mid-row.
func (r *Runner) Run(ctx context.Context, inputs []InputRow) ([]FlatRow, error) {
	out := make([]FlatRow, 0, len(inputs)*(1+len(models.DefaultScenarios())*len(models.FutureWindows())))

	for i, input := range inputs {
		if i > 0 && r.rowDelay > 0 {
			if err := sleepCtx(ctx, r.rowDelay); err != nil {
				return out, err
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		start := time.Now()
		out = append(out, r.processRow(ctx, input)...)
		if r.metrics != nil {
			r.metrics.BatchRows.Inc()
			r.metrics.BatchRowDuration.Observe(time.Since(start).Seconds())
		}

		r.log.Info("Batch row processed", map[string]interface{}{
			"row":   i + 1,
			"total": len(inputs),
			"lat":   input.Lat,
			"lon":   input.Lon,
		})
	}

	return out, nil
}

// processRow builds one row's report. Service-level failures (invalid
// coordinates are the only case) degrade to an all-not-available row set,
// keeping the batch's row count equal to the input's.
func (r *Runner) processRow(ctx context.Context, input InputRow) []FlatRow {
	result, err := r.service.ReportAtPoint(ctx, input.Lat, input.Lon, input.RegionID)
	if err != nil {
		r.log.Warn("Batch row failed, emitting not-available rows", map[string]interface{}{
			"lat":   input.Lat,
			"lon":   input.Lon,
			"error": err.Error(),
		})
		return flatten(input, allAbsentRows())
	}
	return flatten(input, result.Rows)
}

func flatten(input InputRow, rows []models.ReportRow) []FlatRow {
	flat := make([]FlatRow, 0, len(rows))
	for _, row := range rows {
		flat = append(flat, FlatRow{
			Lat:      input.Lat,
			Lon:      input.Lon,
			RegionID: input.RegionID,
			Row:      row,
		})
	}
	return flat
}

// allAbsentRows assembles the standard row structure with every value
// absent, so a failed input row still occupies its full place in the output
// table.
func allAbsentRows() []models.ReportRow {
	scenarios := models.DefaultScenarios()
	futures := make(map[string][]models.PeriodSummary, len(scenarios))
	for _, scenario := range scenarios {
		summaries := make([]models.PeriodSummary, 0, len(models.FutureWindows()))
		for _, window := range models.FutureWindows() {
			summaries = append(summaries, models.PeriodSummary{Window: window, Scenario: scenario.Key})
		}
		futures[scenario.Key] = summaries
	}

	return report.Assemble(report.Input{
		Baseline:   models.PeriodSummary{Window: models.BaselineWindow()},
		Scenarios:  scenarios,
		Futures:    futures,
		Thresholds: classify.DefaultThresholds(),
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
