package upstream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "success"},
		{"no data", ErrNoData, "no_data"},
		{"wrapped no data", fmt.Errorf("%w: drought at 0,0", ErrNoData), "no_data"},
		{"bad payload", ErrBadPayload, "bad_payload"},
		{"unavailable", ErrUnavailable, "unavailable"},
		{"unclassified error", assert.AnError, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
