// Command batch runs the climate-hazard report pipeline over a CSV of
// coordinates and writes the flattened report table to a CSV output.
//
// Usage:
//
//	batch -input locations.csv [-output reports.csv] [-delay 500ms]
//
// The input is lat,lon[,region] per line (optional header). Rows are
// processed strictly sequentially with the configured inter-row delay.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazardscope/api/internal/batch"
	"github.com/hazardscope/api/internal/cache"
	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/climate"
	"github.com/hazardscope/api/internal/config"
	"github.com/hazardscope/api/internal/hazard"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/reference"
	"github.com/hazardscope/api/internal/services"
)

func main() {
	inputPath := flag.String("input", "", "path to the input CSV (lat,lon[,region] per line)")
	outputPath := flag.String("output", "", "path to the output CSV (default: stdout)")
	delay := flag.Duration("delay", 0, "inter-row delay override (default: BATCH_ROW_DELAY)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "batch: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)

	rowDelay := cfg.Batch.RowDelay
	if *delay > 0 {
		rowDelay = *delay
	}

	inputFile, err := os.Open(*inputPath)
	if err != nil {
		log.Fatal("Failed to open input", err, map[string]interface{}{"path": *inputPath})
	}
	defer inputFile.Close()

	rows, err := batch.ParseInput(inputFile)
	if err != nil {
		log.Fatal("Failed to parse input", err, map[string]interface{}{"path": *inputPath})
	}
	if len(rows) == 0 {
		log.Fatal("Input contains no rows", nil, map[string]interface{}{"path": *inputPath})
	}

	var refTable *reference.Table
	if cfg.Reference.Path != "" {
		refTable, err = reference.Load(cfg.Reference.Path)
		if err != nil {
			log.Fatal("Failed to load reference table", err, map[string]interface{}{
				"path": cfg.Reference.Path,
			})
		}
	}

	metrics := observability.NewMetrics()
	responseCache := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	climateClient := climate.NewClient(cfg.Climate, log, metrics)
	cachedSeries := climate.NewCachedProvider(climateClient, responseCache, metrics)
	hazardClient := hazard.NewClient(cfg.Hazard, log, metrics)

	service := services.NewReportService(
		cachedSeries,
		hazardClient,
		refTable,
		classify.DefaultThresholds(),
		log,
		metrics,
	)
	runner := batch.NewRunner(service, rowDelay, log, metrics)

	// Ctrl-C stops the batch before the next row; completed rows are
	// still written out.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	flatRows, runErr := runner.Run(ctx, rows)
	if runErr != nil {
		log.Warn("Batch interrupted", map[string]interface{}{
			"error":     runErr.Error(),
			"completed": len(flatRows),
		})
	}

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		outputFile, err := os.Create(*outputPath)
		if err != nil {
			log.Fatal("Failed to create output", err, map[string]interface{}{"path": *outputPath})
		}
		defer outputFile.Close()
		out = outputFile
	}

	if err := batch.WriteOutput(out, flatRows); err != nil {
		log.Fatal("Failed to write output", err, nil)
	}

	log.Info("Batch complete", map[string]interface{}{
		"input_rows":  len(rows),
		"output_rows": len(flatRows),
		"duration":    time.Since(start).String(),
	})
}
