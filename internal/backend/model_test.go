package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/storefront/internal/common/errors"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected OrderStatus
		err      error
	}{
		{name: "given upper case label should parse", label: "SHIPPED", expected: OrderStatusShipped},
		{name: "given lower case label should parse", label: "returned", expected: OrderStatusReturned},
		{name: "given empty label should return empty status", label: "", expected: ""},
		{name: "given unknown label should return invalid status", label: "LOST", err: inErrors.ErrInvalidStatus},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, err := ParseOrderStatus(test.label)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, status)
		})
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{name: "given local date time should parse", raw: `"2024-05-01T10:20:30.123"`, expected: time.Date(2024, 5, 1, 10, 20, 30, 123000000, time.UTC)},
		{name: "given rfc3339 should parse", raw: `"2024-05-01T10:20:30Z"`, expected: time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{name: "given date only should parse", raw: `"2024-05-01"`, expected: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(test.raw), &ts))
			assert.True(t, test.expected.Equal(ts.Time))
		})
	}
}
