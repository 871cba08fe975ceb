package engine_test

import (
	"rms/internal/domains/availability/engine"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []engine.Candidate
		partySize  int
		want       engine.Candidate
		wantErr    error
	}{
		{
			name: "smallest table that fits",
			candidates: []engine.Candidate{
				{TableIDs: []string{"t8"}, Capacity: 8},
				{TableIDs: []string{"t4"}, Capacity: 4},
				{TableIDs: []string{"t2"}, Capacity: 2},
			},
			partySize: 3,
			want:      engine.Candidate{TableIDs: []string{"t4"}, Capacity: 4},
		},
		{
			name: "ties go to the lowest id",
			candidates: []engine.Candidate{
				{TableIDs: []string{"t9"}, Capacity: 4},
				{TableIDs: []string{"t10"}, Capacity: 4},
			},
			partySize: 4,
			want:      engine.Candidate{TableIDs: []string{"t10"}, Capacity: 4},
		},
		{
			name: "single table beats merge of same capacity",
			candidates: []engine.Candidate{
				{TableIDs: []string{"a", "b"}, Capacity: 6},
				{TableIDs: []string{"c"}, Capacity: 6},
			},
			partySize: 5,
			want:      engine.Candidate{TableIDs: []string{"c"}, Capacity: 6},
		},
		{
			name:       "no candidates",
			candidates: nil,
			partySize:  2,
			wantErr:    engine.ErrNoCapacity,
		},
		{
			name:       "nothing large enough",
			candidates: []engine.Candidate{{TableIDs: []string{"t2"}, Capacity: 2}},
			partySize:  3,
			wantErr:    engine.ErrNoCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Resolve(tt.candidates, tt.partySize)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	candidates := []engine.Candidate{{TableIDs: []string{"t1"}, Capacity: 2}}

	got, err := engine.Resolve(candidates, 2)
	require.NoError(t, err)

	got.TableIDs[0] = "changed"

	assert.Equal(t, "t1", candidates[0].TableIDs[0])
}

func TestResolveTable(t *testing.T) {
	candidates := []engine.Candidate{
		{TableIDs: []string{"t2"}, Capacity: 2},
		{TableIDs: []string{"t4"}, Capacity: 4},
		{TableIDs: []string{"m1", "m2"}, Capacity: 8},
	}

	got, err := engine.ResolveTable(candidates, 3, "t4")
	require.NoError(t, err)
	assert.Equal(t, []string{"t4"}, got.TableIDs)

	_, err = engine.ResolveTable(candidates, 3, "t2")
	assert.ErrorIs(t, err, engine.ErrNoCapacity, "too small")

	_, err = engine.ResolveTable(candidates, 2, "m1")
	assert.ErrorIs(t, err, engine.ErrNoCapacity, "merged groups cannot be requested by id")

	_, err = engine.ResolveTable(candidates, 2, "missing")
	assert.ErrorIs(t, err, engine.ErrNoCapacity)
}

func TestResolve_AgreesWithCalculator(t *testing.T) {
	day := engine.Day{
		Date: serviceDate,
		Tables: []engine.Table{
			{ID: "t6", Capacity: 6, Active: true},
			{ID: "t4b", Capacity: 4, Active: true},
			{ID: "t4a", Capacity: 4, Active: true},
		},
		Holds: []engine.Hold{hold("r1", clockAt(19, 0), 90, "t4a")},
		Hours: eveningHours(),
	}
	query := engine.Query{Date: serviceDate, PartySize: 3, Duration: 90}

	free := engine.Evaluate(day, query, clockAt(17, 0))
	got, err := engine.Resolve(free.Candidates, query.PartySize)
	require.NoError(t, err)
	assert.Equal(t, []string{"t4a"}, got.TableIDs)

	busy := engine.Evaluate(day, query, clockAt(19, 0))
	got, err = engine.Resolve(busy.Candidates, query.PartySize)
	require.NoError(t, err)
	assert.Equal(t, []string{"t4b"}, got.TableIDs)
}
