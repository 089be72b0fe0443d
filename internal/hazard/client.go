// Package hazard queries the spatial hazard service by point intersection.
// The service exposes precomputed hazard datasets (water stress, drought
// risk, riverine flood risk) through a SQL-over-HTTP query API; a point
// lookup returns zero or one record. Zero records means the location has no
// hazard data (open ocean is the common case) and is not an error.
package hazard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hazardscope/api/internal/config"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/upstream"
)

const sourceHazard = "hazard"

// Dimension names one hazard axis served by its own dataset.
type Dimension string

const (
	DimWaterStress Dimension = "water_stress"
	DimDrought     Dimension = "drought"
	DimRiverFlood  Dimension = "river_flood"
)

// BaselineHorizon selects a dataset's present-day slice instead of a
// projection year.
const BaselineHorizon = 0

// Provider looks up one hazard label per (dimension, horizon, coordinate).
// A missing record surfaces as upstream.ErrNoData; transport and payload
// failures use the other upstream sentinels.
type Provider interface {
	Lookup(ctx context.Context, dim Dimension, horizonYear int, coord models.Coordinate) (string, error)
}

// Client implements Provider against the Resource-Watch-shaped query API.
type Client struct {
	baseURL    string
	datasets   map[Dimension]string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *observability.Metrics
}

// NewClient creates a hazard lookup client.
func NewClient(cfg config.HazardConfig, log *logger.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		datasets: map[Dimension]string{
			DimWaterStress: cfg.WaterStressDataset,
			DimDrought:     cfg.DroughtDataset,
			DimRiverFlood:  cfg.RiverFloodDataset,
		},
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:     log.WithSource("hazard"),
		metrics: metrics,
	}
}

// queryResponse mirrors the query API envelope. Only the label column is
// read; everything else in the record is ignored.
type queryResponse struct {
	Data []struct {
		Label string `json:"label"`
	} `json:"data"`
}

// Lookup returns the hazard label at the coordinate for one dimension and
// horizon. The label is an opaque string in the dataset's own vocabulary
// and is passed through unmodified.
func (c *Client) Lookup(ctx context.Context, dim Dimension, horizonYear int, coord models.Coordinate) (string, error) {
	start := time.Now()
	label, err := c.doLookup(ctx, dim, horizonYear, coord)
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(sourceHazard, upstream.Outcome(err)).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(sourceHazard).Observe(time.Since(start).Seconds())
	}
	return label, err
}

func (c *Client) doLookup(ctx context.Context, dim Dimension, horizonYear int, coord models.Coordinate) (string, error) {
	dataset, ok := c.datasets[dim]
	if !ok {
		return "", fmt.Errorf("unknown hazard dimension %q", dim)
	}

	params := url.Values{}
	params.Set("sql", pointQuery(horizonYear, coord))

	endpoint := fmt.Sprintf("%s/v1/query/%s?%s", c.baseURL, url.PathEscape(dataset), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", upstream.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", upstream.ErrUnavailable, resp.StatusCode, body)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode: %v", upstream.ErrBadPayload, err)
	}

	// Zero records: valid response, nothing at this location.
	if len(payload.Data) == 0 {
		return "", fmt.Errorf("%w: %s at %s", upstream.ErrNoData, dim, coord)
	}

	return payload.Data[0].Label, nil
}

// pointQuery builds the point-intersection statement. Only numeric values
// are interpolated; the query carries no caller-supplied strings.
func pointQuery(horizonYear int, coord models.Coordinate) string {
	where := fmt.Sprintf("ST_Intersects(the_geom, ST_SetSRID(ST_Point(%.6f, %.6f), 4326))", coord.Lon, coord.Lat)
	if horizonYear != BaselineHorizon {
		where = fmt.Sprintf("year = %d AND %s", horizonYear, where)
	}
	return fmt.Sprintf("SELECT label FROM data WHERE %s LIMIT 1", where)
}
