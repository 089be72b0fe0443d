package models

import (
	"encoding/json"
	"strconv"
)

// NotAvailableMarker is the canonical string form of an absent value.
// It is used in CSV export, JSON labels, and log output so that missing
// data is always visibly missing rather than rendered as a zero.
const NotAvailableMarker = "n/a"

// Value is a numeric measurement that may be absent. The zero value is
// absent. Absent values must never be read as 0.0; callers check Valid
// (or use the marshaling helpers, which emit null / "n/a").
type Value struct {
	Float float64
	Valid bool
}

// Some wraps a present float64 in a Value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// String renders the value with two decimal places, or the not-available marker.
func (v Value) String() string {
	if !v.Valid {
		return NotAvailableMarker
	}
	return strconv.FormatFloat(v.Float, 'f', 2, 64)
}

// MarshalJSON emits the number when present and JSON null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ParseValue parses the string form produced by String, mapping the
// not-available marker (and the empty string) back to an absent Value.
func ParseValue(s string) (Value, error) {
	if s == "" || s == NotAvailableMarker {
		return Value{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, err
	}
	return Some(f), nil
}
