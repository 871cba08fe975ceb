package engine_test

import (
	"context"
	"errors"
	"math/rand"
	"rms/internal/domains/availability/engine"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sameDay(day engine.Day) engine.DaySource {
	return engine.DaySourceFunc(func(_ context.Context, date time.Time) (engine.Day, error) {
		day.Date = date

		return day, nil
	})
}

func TestFindAlternatives_AroundBookedTable(t *testing.T) {
	source := sameDay(engine.Day{
		Tables: []engine.Table{{ID: "t1", Capacity: 4, Active: true}},
		Holds:  []engine.Hold{hold("r1", clockAt(19, 0), 90, "t1")},
		Hours:  eveningHours(),
	})

	got, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
		Preferred:   clockAt(19, 0),
		PartySize:   4,
		Duration:    90,
		Granularity: 15,
	})
	require.NoError(t, err)

	require.True(t, got.Found())
	require.Len(t, got.Slots, 3)
	assert.Equal(t, 1, got.DaysSearched)

	assert.Equal(t, clockAt(17, 30), got.Slots[0].Start)
	assert.Equal(t, 90*time.Minute, got.Slots[0].Distance)
	assert.Equal(t, clockAt(20, 30), got.Slots[1].Start)
	assert.Equal(t, 90*time.Minute, got.Slots[1].Distance)
	assert.Equal(t, clockAt(17, 15), got.Slots[2].Start)
	assert.Equal(t, []string{"t1"}, got.Slots[0].TableIDs())
}

func TestFindAlternatives_NotBefore(t *testing.T) {
	source := sameDay(engine.Day{
		Tables: []engine.Table{{ID: "t1", Capacity: 4, Active: true}},
		Holds:  []engine.Hold{hold("r1", clockAt(19, 0), 90, "t1")},
		Hours:  eveningHours(),
	})

	got, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
		Preferred: clockAt(19, 0),
		PartySize: 4,
		Duration:  90,
		NotBefore: clockAt(17, 20),
	})
	require.NoError(t, err)

	starts := []time.Time{}
	for _, slot := range got.Slots {
		starts = append(starts, slot.Start)
	}

	assert.Equal(t, []time.Time{clockAt(17, 30), clockAt(20, 30), clockAt(20, 45)}, starts)
}

func TestFindAlternatives_BeyondWindowSameDay(t *testing.T) {
	source := sameDay(engine.Day{
		Tables: []engine.Table{{ID: "t1", Capacity: 4, Active: true}},
		Holds:  []engine.Hold{hold("r1", clockAt(17, 0), 240, "t1")},
		Hours:  eveningHours(),
	})

	got, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
		Preferred:   clockAt(17, 0),
		PartySize:   4,
		Duration:    90,
		Granularity: 15,
		Window:      60,
		MaxDays:     3,
	})
	require.NoError(t, err)

	require.True(t, got.Found())
	assert.Equal(t, 1, got.DaysSearched, "the rest of the service day is searched before the next day")

	require.Len(t, got.Slots, 3)
	assert.Equal(t, clockAt(21, 0), got.Slots[0].Start)
	assert.Equal(t, 4*time.Hour, got.Slots[0].Distance)
	assert.Equal(t, clockAt(21, 15), got.Slots[1].Start)
	assert.Equal(t, clockAt(21, 30), got.Slots[2].Start)
}

func TestFindAlternatives_NextDay(t *testing.T) {
	tables := []engine.Table{{ID: "t1", Capacity: 4, Active: true}}
	calls := 0

	source := engine.DaySourceFunc(func(_ context.Context, date time.Time) (engine.Day, error) {
		calls++

		day := engine.Day{Date: date, Tables: tables, Hours: eveningHours()}
		if date.Equal(serviceDate) {
			day.Holds = []engine.Hold{hold("r1", clockAt(17, 0), 360, "t1")}
		}

		return day, nil
	})

	got, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
		Preferred: clockAt(19, 0),
		PartySize: 2,
		Duration:  90,
		MaxDays:   3,
	})
	require.NoError(t, err)

	require.True(t, got.Found())
	assert.Equal(t, 2, got.DaysSearched)
	assert.Equal(t, 2, calls)
	assert.Equal(t, clockAt(19, 0).AddDate(0, 0, 1), got.Slots[0].Start)
	assert.Equal(t, 24*time.Hour, got.Slots[0].Distance)
}

func TestFindAlternatives_NothingFound(t *testing.T) {
	source := sameDay(engine.Day{
		Tables: []engine.Table{{ID: "t1", Capacity: 2, Active: true}},
		Hours:  eveningHours(),
	})

	got, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
		Preferred: clockAt(19, 0),
		PartySize: 6,
		Duration:  90,
		MaxDays:   2,
	})
	require.NoError(t, err)

	assert.False(t, got.Found())
	assert.Equal(t, 3, got.DaysSearched)
}

func TestFindAlternatives_Errors(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.FindAlternatives(ctx, sameDay(engine.Day{Hours: eveningHours()}), engine.SearchQuery{
			Preferred: clockAt(19, 0),
			PartySize: 2,
			Duration:  90,
		})

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("db down")
		source := engine.DaySourceFunc(func(context.Context, time.Time) (engine.Day, error) {
			return engine.Day{}, boom
		})

		_, err := engine.FindAlternatives(context.Background(), source, engine.SearchQuery{
			Preferred: clockAt(19, 0),
			PartySize: 2,
			Duration:  90,
		})

		assert.ErrorIs(t, err, boom)
	})
}

func TestFindAlternatives_ResultsAreAvailableAndOrdered(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 100; round++ {
		day := randomDay(rng)
		preferred := clockAt(12+rng.Intn(9), rng.Intn(4)*15)
		query := engine.SearchQuery{
			Preferred: preferred,
			PartySize: 1 + rng.Intn(6),
			Duration:  60,
			Window:    120,
			Limit:     5,
		}

		got, err := engine.FindAlternatives(context.Background(), sameDay(day), query)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got.Slots), 5)

		// slots beyond the window only appear when the window itself had none
		widened := len(got.Slots) > 0 && got.Slots[0].Distance > 120*time.Minute

		for i, alt := range got.Slots {
			assert.Equal(t, widened, alt.Distance > 120*time.Minute, "round %d: %s mixes window and widened results", round, alt.Start)

			check := engine.Evaluate(day, engine.Query{Date: serviceDate, PartySize: query.PartySize, Duration: 60}, alt.Start)
			assert.True(t, check.Available(), "round %d: %s offered but not available", round, alt.Start)

			if i > 0 {
				assert.GreaterOrEqual(t, alt.Distance, got.Slots[i-1].Distance)
			}
		}
	}
}
