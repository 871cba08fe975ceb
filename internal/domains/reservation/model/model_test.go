package model_test

import (
	"rms/internal/domains/reservation/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusSeated, false},
		{model.StatusConfirmed, model.StatusNoShow, true},
		{model.StatusSeated, model.StatusCompleted, true},
		{model.StatusSeated, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusConfirmed, false},
		{model.StatusCancelled, model.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsBlocking(t *testing.T) {
	assert.True(t, model.IsBlocking(model.StatusPending))
	assert.True(t, model.IsBlocking(model.StatusSeated))
	assert.False(t, model.IsBlocking(model.StatusCompleted))
	assert.False(t, model.IsBlocking(model.StatusNoShow))
}
