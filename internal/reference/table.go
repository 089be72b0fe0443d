// Package reference loads the static precomputed lookup table: region-level
// indicator values keyed by variable, period, scenario, and region id. The
// table is loaded once at startup and treated as read-only reference data;
// a missing key is "not available", never an error.
package reference

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hazardscope/api/internal/models"
)

// Variable names known to the bundled table.
const (
	VarWaterStress = "water_stress"
)

// Table is the immutable nested lookup: variable → period → scenario →
// region-id → value.
type Table struct {
	data map[string]map[string]map[string]map[string]float64
}

// Load reads the table from a JSON file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}
	return Parse(raw)
}

// Parse decodes the nested JSON structure.
func Parse(raw []byte) (*Table, error) {
	var data map[string]map[string]map[string]map[string]float64
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode reference table: %w", err)
	}
	return &Table{data: data}, nil
}

// Lookup returns the value for the key path, absent when any level of the
// path is missing. A nil table is valid and always returns absent, so the
// table can be wired as optional.
func (t *Table) Lookup(variable, period, scenario, region string) models.Value {
	if t == nil {
		return models.Value{}
	}
	periods, ok := t.data[variable]
	if !ok {
		return models.Value{}
	}
	scenarios, ok := periods[period]
	if !ok {
		return models.Value{}
	}
	regions, ok := scenarios[scenario]
	if !ok {
		return models.Value{}
	}
	value, ok := regions[region]
	if !ok {
		return models.Value{}
	}
	return models.Some(value)
}

// Variables reports how many top-level variables the table holds. Used by
// the readiness probe.
func (t *Table) Variables() int {
	if t == nil {
		return 0
	}
	return len(t.data)
}
