package model

import "time"

const (
	EventCommitted     = "reservation.committed"
	EventStatusChanged = "reservation.status_changed"
	EventFreed         = "reservation.freed"
)

type StatusChangedEvent struct {
	RestaurantID  string `json:"restaurant_id"`
	ReservationID string `json:"reservation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// FreedEvent reports capacity returned by a cancelled, no-show or completed reservation.
type FreedEvent struct {
	RestaurantID  string    `json:"restaurant_id"`
	ReservationID string    `json:"reservation_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Capacity      int       `json:"capacity"`
}

// Frees reports whether moving into status releases the reservation's tables.
func Frees(status string) bool {
	return status == StatusCancelled || status == StatusNoShow || status == StatusCompleted
}
