package dto_test

import (
	"net/http/httptest"
	"rms/internal/domains/availability/model/dto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityRequest_FromRequestDuration(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *int
	}{
		{name: "absent", query: "date=2025-03-14&party_size=2"},
		{name: "explicit zero", query: "date=2025-03-14&party_size=2&duration=0", want: new(int)},
		{name: "explicit value", query: "date=2025-03-14&party_size=2&duration=120", want: func() *int { v := 120; return &v }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.AvailabilityRequest
			require.NoError(t, req.FromRequest(httptest.NewRequest("GET", "/availability?"+tt.query, nil)))

			assert.Equal(t, tt.want, req.Duration)
			assert.Equal(t, 2, req.PartySize)
		})
	}

	var req dto.AvailabilityRequest
	assert.Error(t, req.FromRequest(httptest.NewRequest("GET", "/availability?date=2025-03-14&party_size=2&duration=long", nil)))
}

func TestDurationOr(t *testing.T) {
	zero := 0

	assert.Equal(t, 90, dto.DurationOr(nil, 90))
	assert.Equal(t, 0, dto.DurationOr(&zero, 90))
}
