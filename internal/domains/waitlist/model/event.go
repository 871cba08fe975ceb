package model

import "time"

const (
	EventStatusChanged         = "waitlist.status_changed"
	EventNotificationSuggested = "waitlist.notification_suggested"
)

type StatusChangedEvent struct {
	RestaurantID string `json:"restaurant_id"`
	EntryID      string `json:"entry_id"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// SuggestedEntry is one guest the notifier may contact, in priority order.
type SuggestedEntry struct {
	EntryID       string  `json:"entry_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email"`
	PartySize     int     `json:"party_size"`
	Position      int     `json:"position"`
	Score         float64 `json:"priority_score"`
}

type NotificationSuggestedEvent struct {
	RestaurantID string           `json:"restaurant_id"`
	Start        time.Time        `json:"start"`
	Capacity     int              `json:"capacity"`
	Entries      []SuggestedEntry `json:"entries"`
}
