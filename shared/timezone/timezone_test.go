package timezone_test

import (
	"rms/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimezoneInit(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
}

func TestTimezoneFormat(t *testing.T) {
	parsed, err := timezone.Parse(timezone.DateLayout, "2024-01-01")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", timezone.Format(parsed, timezone.DateLayout))
}

func TestParseDate(t *testing.T) {
	date, err := timezone.ParseDate("2025-03-14")
	require.NoError(t, err)

	assert.Equal(t, 0, date.Hour())
	assert.Equal(t, timezone.GetLocation(), date.Location())

	_, err = timezone.ParseDate("14/03/2025")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	loc := timezone.GetLocation()
	in := time.Date(2025, 3, 14, 19, 45, 12, 0, loc)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), timezone.StartOfDay(in))
}

func TestAt(t *testing.T) {
	loc := timezone.GetLocation()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)

	tests := []struct {
		name    string
		minutes int
		want    time.Time
	}{
		{name: "evening", minutes: 19 * 60, want: time.Date(2025, 3, 14, 19, 0, 0, 0, loc)},
		{name: "past midnight rolls over", minutes: 25 * 60, want: time.Date(2025, 3, 15, 1, 0, 0, 0, loc)},
		{name: "negative rolls back", minutes: -30, want: time.Date(2025, 3, 13, 23, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(timezone.At(date, tt.minutes)))
		})
	}
}
