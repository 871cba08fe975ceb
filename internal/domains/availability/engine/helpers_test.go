package engine_test

import (
	"rms/internal/domains/availability/engine"
	"time"
)

var serviceDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func clockAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func hold(id string, start time.Time, minutes int, tableIDs ...string) engine.Hold {
	return engine.Hold{
		ReservationID: id,
		TableIDs:      tableIDs,
		Start:         start,
		End:           start.Add(time.Duration(minutes) * time.Minute),
	}
}

func eveningHours() engine.ServiceHours {
	return engine.ServiceHours{Open: 17 * 60, Close: 23 * 60}
}

func slotAt(slots []engine.Slot, start time.Time) (engine.Slot, bool) {
	for _, slot := range slots {
		if slot.Start.Equal(start) {
			return slot, true
		}
	}

	return engine.Slot{}, false
}
