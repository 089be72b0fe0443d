package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hazardscope/api/internal/config"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/upstream"
)

// Source labels used in logs and metrics.
const (
	sourceArchive    = "climate_archive"
	sourceProjection = "climate_projection"
)

// Provider fetches daily climate series for a coordinate. Implementations
// report failures through the upstream sentinel errors: upstream.ErrNoData
// for an empty series, upstream.ErrUnavailable for transport failures, and
// upstream.ErrBadPayload for undecodable responses.
type Provider interface {
	// Baseline fetches the historical daily series over the window.
	Baseline(ctx context.Context, coord models.Coordinate, window models.PeriodWindow) (models.ScenarioSeries, error)

	// Projection fetches the projected daily series for one scenario
	// between start and end.
	Projection(ctx context.Context, coord models.Coordinate, scenario models.Scenario, start, end models.Date) (models.ScenarioSeries, error)
}

// Client implements Provider against the Open-Meteo-shaped archive and
// climate-projection endpoints, which return parallel JSON arrays of dates,
// temperatures, and precipitation values.
type Client struct {
	archiveURL    string
	projectionURL string
	model         string
	httpClient    *http.Client
	log           *logger.Logger
	metrics       *observability.Metrics
}

// NewClient creates a climate series client.
func NewClient(cfg config.ClimateConfig, log *logger.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		archiveURL:    cfg.ArchiveURL,
		projectionURL: cfg.ProjectionURL,
		model:         cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:     log.WithSource("climate"),
		metrics: metrics,
	}
}

// Baseline fetches the historical daily series over the window. The
// returned series has an empty scenario key.
func (c *Client) Baseline(ctx context.Context, coord models.Coordinate, window models.PeriodWindow) (models.ScenarioSeries, error) {
	params := c.commonParams(coord, window.Start, window.End)
	return c.fetchSeries(ctx, sourceArchive, c.archiveURL, params, "", "")
}

// Projection fetches the projected daily series for one scenario. The
// projection endpoint additionally takes the model, the scenario key, and a
// flag disabling bias correction so decades are comparable across scenarios.
func (c *Client) Projection(ctx context.Context, coord models.Coordinate, scenario models.Scenario, start, end models.Date) (models.ScenarioSeries, error) {
	params := c.commonParams(coord, start, end)
	params.Set("models", c.model)
	params.Set("scenarios", scenario.Key)
	params.Set("disable_bias_correction", "true")
	return c.fetchSeries(ctx, sourceProjection, c.projectionURL, params, scenario.Key, c.model)
}

func (c *Client) commonParams(coord models.Coordinate, start, end models.Date) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coord.Lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(coord.Lon, 'f', 4, 64))
	params.Set("start_date", start.String())
	params.Set("end_date", end.String())
	params.Set("daily", "temperature_2m_mean,precipitation_sum")
	return params
}

// dailyResponse mirrors the upstream payload: parallel arrays in which
// temperature and precipitation entries may be null.
type dailyResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m_mean"`
		Precipitation []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *Client) fetchSeries(ctx context.Context, source, baseURL string, params url.Values, scenario, model string) (models.ScenarioSeries, error) {
	start := time.Now()
	series, err := c.doFetch(ctx, baseURL, params, scenario, model)
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, upstream.Outcome(err)).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
	return series, err
}

func (c *Client) doFetch(ctx context.Context, baseURL string, params url.Values, scenario, model string) (models.ScenarioSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.ScenarioSeries{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.ScenarioSeries{}, fmt.Errorf("%w: %v", upstream.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.ScenarioSeries{}, fmt.Errorf("%w: status %d: %s", upstream.ErrUnavailable, resp.StatusCode, body)
	}

	var payload dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.ScenarioSeries{}, fmt.Errorf("%w: decode: %v", upstream.ErrBadPayload, err)
	}

	if len(payload.Daily.Time) == 0 {
		return models.ScenarioSeries{}, fmt.Errorf("%w: empty daily series", upstream.ErrNoData)
	}

	series, err := c.buildSeries(payload, scenario, model)
	if err != nil {
		return models.ScenarioSeries{}, err
	}
	return series, nil
}

// buildSeries converts the parallel arrays into an ordered point series.
// When the value arrays are shorter than the time array, the shortest length
// wins and the truncation is logged; extra values past the time array are
// ignored the same way.
func (c *Client) buildSeries(payload dailyResponse, scenario, model string) (models.ScenarioSeries, error) {
	daily := payload.Daily

	n := len(daily.Time)
	if len(daily.Temperature) < n {
		n = len(daily.Temperature)
	}
	if len(daily.Precipitation) < n {
		n = len(daily.Precipitation)
	}
	// Dates with no value arrays at all is a malformed response, not an
	// empty-but-valid one.
	if n == 0 {
		return models.ScenarioSeries{}, fmt.Errorf("%w: %d dates but no values", upstream.ErrBadPayload, len(daily.Time))
	}
	if n < len(daily.Time) {
		c.log.Warn("Upstream arrays have mismatched lengths, truncating", map[string]interface{}{
			"dates":         len(daily.Time),
			"temperature":   len(daily.Temperature),
			"precipitation": len(daily.Precipitation),
			"used":          n,
		})
	}

	points := make([]models.TimePoint, 0, n)
	for i := 0; i < n; i++ {
		date, err := models.ParseDate(daily.Time[i])
		if err != nil {
			return models.ScenarioSeries{}, fmt.Errorf("%w: bad date %q", upstream.ErrBadPayload, daily.Time[i])
		}
		points = append(points, models.TimePoint{
			Date:          date,
			Temperature:   daily.Temperature[i],
			Precipitation: daily.Precipitation[i],
		})
	}

	return models.ScenarioSeries{
		Scenario: scenario,
		Model:    model,
		Points:   points,
	}, nil
}
