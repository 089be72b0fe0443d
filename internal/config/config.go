package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Climate   ClimateConfig
	Hazard    HazardConfig
	Reference ReferenceConfig
	Cache     CacheConfig
	Batch     BatchConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// ClimateConfig holds the climate series API configuration: the historical
// archive endpoint, the projection endpoint, and the climate model requested
// from the projection service.
type ClimateConfig struct {
	ArchiveURL    string
	ProjectionURL string
	Model         string
	Timeout       time.Duration
}

// HazardConfig holds the spatial hazard query API configuration. Each
// hazard dimension is served by its own dataset id.
type HazardConfig struct {
	BaseURL            string
	Timeout            time.Duration
	WaterStressDataset string
	DroughtDataset     string
	RiverFloodDataset  string
}

// ReferenceConfig points at the optional static lookup table. An empty path
// disables region-level reference scores.
type ReferenceConfig struct {
	Path string
}

// CacheConfig bounds the in-process upstream response cache.
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

// BatchConfig controls batch-mode pacing. RowDelay is the fixed pause
// between rows, used to stay under third-party rate limits.
type BatchConfig struct {
	RowDelay time.Duration
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CLIMATE_ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive")
	v.SetDefault("CLIMATE_PROJECTION_URL", "https://climate-api.open-meteo.com/v1/climate")
	v.SetDefault("CLIMATE_MODEL", "MPI_ESM1_2_XR")
	v.SetDefault("CLIMATE_TIMEOUT", "30s")
	v.SetDefault("HAZARD_BASE_URL", "https://api.resourcewatch.org")
	v.SetDefault("HAZARD_TIMEOUT", "15s")
	v.SetDefault("HAZARD_WATER_STRESS_DATASET", "aqueduct-40-water-stress-projections")
	v.SetDefault("HAZARD_DROUGHT_DATASET", "aqueduct-40-drought-risk")
	v.SetDefault("HAZARD_RIVER_FLOOD_DATASET", "aqueduct-40-riverine-flood-risk")
	v.SetDefault("REFERENCE_TABLE_PATH", "")
	v.SetDefault("CACHE_MAX_ENTRIES", 1024)
	v.SetDefault("CACHE_TTL", "24h")
	v.SetDefault("BATCH_ROW_DELAY", "500ms")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Climate: ClimateConfig{
			ArchiveURL:    v.GetString("CLIMATE_ARCHIVE_URL"),
			ProjectionURL: v.GetString("CLIMATE_PROJECTION_URL"),
			Model:         v.GetString("CLIMATE_MODEL"),
			Timeout:       v.GetDuration("CLIMATE_TIMEOUT"),
		},
		Hazard: HazardConfig{
			BaseURL:            v.GetString("HAZARD_BASE_URL"),
			Timeout:            v.GetDuration("HAZARD_TIMEOUT"),
			WaterStressDataset: v.GetString("HAZARD_WATER_STRESS_DATASET"),
			DroughtDataset:     v.GetString("HAZARD_DROUGHT_DATASET"),
			RiverFloodDataset:  v.GetString("HAZARD_RIVER_FLOOD_DATASET"),
		},
		Reference: ReferenceConfig{
			Path: v.GetString("REFERENCE_TABLE_PATH"),
		},
		Cache: CacheConfig{
			MaxEntries: v.GetInt("CACHE_MAX_ENTRIES"),
			TTL:        v.GetDuration("CACHE_TTL"),
		},
		Batch: BatchConfig{
			RowDelay: v.GetDuration("BATCH_ROW_DELAY"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate climate config
	if c.Climate.ArchiveURL == "" {
		return fmt.Errorf("CLIMATE_ARCHIVE_URL is required")
	}
	if c.Climate.ProjectionURL == "" {
		return fmt.Errorf("CLIMATE_PROJECTION_URL is required")
	}
	if c.Climate.Model == "" {
		return fmt.Errorf("CLIMATE_MODEL is required")
	}
	if c.Climate.Timeout <= 0 {
		return fmt.Errorf("CLIMATE_TIMEOUT must be positive")
	}

	// Validate hazard config
	if c.Hazard.BaseURL == "" {
		return fmt.Errorf("HAZARD_BASE_URL is required")
	}
	if c.Hazard.Timeout <= 0 {
		return fmt.Errorf("HAZARD_TIMEOUT must be positive")
	}
	if c.Hazard.WaterStressDataset == "" || c.Hazard.DroughtDataset == "" || c.Hazard.RiverFloodDataset == "" {
		return fmt.Errorf("all HAZARD_*_DATASET ids are required")
	}

	// Validate cache config
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	// Validate batch config
	if c.Batch.RowDelay < 0 {
		return fmt.Errorf("BATCH_ROW_DELAY must be non-negative")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
