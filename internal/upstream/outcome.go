// Package upstream defines the shared error taxonomy for remote data
// sources. Every client in this repository reports failures through these
// sentinel errors so callers can tell "the service answered and has nothing
// for this location" apart from "the service is down" and "the service
// answered garbage". The three cases degrade the same way in a report (a
// not-available field) but are logged and counted differently.
package upstream

import "errors"

var (
	// ErrNoData means the call succeeded but no record matches the
	// location (for example a hazard lookup over open ocean). This is an
	// expected outcome, not a service failure.
	ErrNoData = errors.New("no data for location")

	// ErrUnavailable means the call itself failed: network error, timeout,
	// or a non-2xx status.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrBadPayload means the call returned 2xx but the body did not have
	// the expected shape.
	ErrBadPayload = errors.New("unexpected upstream payload")
)

// Outcome maps an error from an upstream call to a metrics/log label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrBadPayload):
		return "bad_payload"
	default:
		return "unavailable"
	}
}
