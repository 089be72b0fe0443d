package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_AbsentIsNotZero(t *testing.T) {
	var v Value

	assert.False(t, v.Valid)
	assert.Equal(t, NotAvailableMarker, v.String())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestValue_StringRoundTrip(t *testing.T) {
	present, err := ParseValue(Some(650.5).String())
	require.NoError(t, err)
	assert.True(t, present.Valid)
	assert.InDelta(t, 650.5, present.Float, 1e-9)

	absent, err := ParseValue(NotAvailableMarker)
	require.NoError(t, err)
	assert.False(t, absent.Valid)
}

func TestValue_ParseRejectsGarbage(t *testing.T) {
	_, err := ParseValue("not-a-number")
	assert.Error(t, err)
}

func TestValue_JSONNullUnmarshalsToAbsent(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.False(t, v.Valid)

	require.NoError(t, json.Unmarshal([]byte("12.5"), &v))
	assert.True(t, v.Valid)
	assert.InDelta(t, 12.5, v.Float, 1e-9)
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 30.3477, Lon: -95.4502}.Valid())
	assert.False(t, Coordinate{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lon: -181}.Valid())
}

func TestPeriodWindow_ContainsInclusiveBounds(t *testing.T) {
	w := BaselineWindow()

	assert.True(t, w.Contains(w.Start.Time))
	assert.True(t, w.Contains(w.End.Time))
	assert.False(t, w.Contains(w.Start.AddDate(0, 0, -1)))
	assert.False(t, w.Contains(w.End.AddDate(0, 0, 1)))
}

func TestPeriodWindow_NominalYears(t *testing.T) {
	assert.Equal(t, 30, BaselineWindow().NominalYears())
	for _, w := range FutureWindows() {
		assert.Equal(t, 10, w.NominalYears(), w.Label)
	}
}

func TestRiskLabel_Ordering(t *testing.T) {
	assert.Less(t, RiskLow.Rank(), RiskMedium.Rank())
	assert.Less(t, RiskMedium.Rank(), RiskHigh.Rank())
	assert.Less(t, RiskHigh.Rank(), RiskExtreme.Rank())
	assert.Less(t, RiskNotAvailable.Rank(), RiskLow.Rank())
}
