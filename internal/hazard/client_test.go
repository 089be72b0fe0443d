package hazard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazardscope/api/internal/config"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/models"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/upstream"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.HazardConfig{
		BaseURL:            baseURL,
		Timeout:            5 * time.Second,
		WaterStressDataset: "ds-water-stress",
		DroughtDataset:     "ds-drought",
		RiverFloodDataset:  "ds-river-flood",
	}, logger.New("test"), observability.NewMetricsForTesting())
}

func testCoord() models.Coordinate {
	return models.Coordinate{Lat: 30.3477, Lon: -95.4502}
}

func TestClient_Lookup_PassesLabelThrough(t *testing.T) {
	// Arrange
	var gotPath, gotSQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSQL = r.URL.Query().Get("sql")
		w.Write([]byte(`{"data":[{"label":"Extremely High (>80%)"}]}`))
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	// Act
	label, err := client.Lookup(context.Background(), DimWaterStress, 2030, testCoord())

	// Assert: label is opaque, no normalization
	require.NoError(t, err)
	assert.Equal(t, "Extremely High (>80%)", label)
	assert.Equal(t, "/v1/query/ds-water-stress", gotPath)
	assert.Contains(t, gotSQL, "year = 2030")
	assert.Contains(t, gotSQL, "ST_Point(-95.450200, 30.347700)")
	assert.Contains(t, gotSQL, "LIMIT 1")
}

func TestClient_Lookup_BaselineHorizonOmitsYearFilter(t *testing.T) {
	var gotSQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSQL = r.URL.Query().Get("sql")
		w.Write([]byte(`{"data":[{"label":"Low"}]}`))
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	_, err := client.Lookup(context.Background(), DimDrought, BaselineHorizon, testCoord())

	require.NoError(t, err)
	assert.NotContains(t, gotSQL, "year =")
}

func TestClient_Lookup_RoutesDimensionsToTheirDatasets(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"data":[{"label":"Medium"}]}`))
	}))
	defer server.Close()
	client := newTestClient(server.URL)
	ctx := context.Background()

	for _, dim := range []Dimension{DimWaterStress, DimDrought, DimRiverFlood} {
		_, err := client.Lookup(ctx, dim, 2030, testCoord())
		require.NoError(t, err)
	}

	require.Len(t, paths, 3)
	assert.True(t, strings.HasSuffix(paths[0], "ds-water-stress"))
	assert.True(t, strings.HasSuffix(paths[1], "ds-drought"))
	assert.True(t, strings.HasSuffix(paths[2], "ds-river-flood"))
}

func TestClient_Lookup_ZeroRecords_IsNoData(t *testing.T) {
	// Open-ocean point: a valid response with an empty record set.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	_, err := client.Lookup(context.Background(), DimRiverFlood, 2030, testCoord())

	assert.ErrorIs(t, err, upstream.ErrNoData)
}

func TestClient_Lookup_Non200_IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	_, err := client.Lookup(context.Background(), DimWaterStress, 2030, testCoord())

	assert.ErrorIs(t, err, upstream.ErrUnavailable)
}

func TestClient_Lookup_InvalidJSON_IsBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	_, err := client.Lookup(context.Background(), DimWaterStress, 2030, testCoord())

	assert.ErrorIs(t, err, upstream.ErrBadPayload)
}

func TestClient_Lookup_UnknownDimension(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	_, err := client.Lookup(context.Background(), Dimension("sea_level"), 2030, testCoord())

	assert.Error(t, err)
}
