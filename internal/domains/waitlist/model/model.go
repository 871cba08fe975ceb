package model

import (
	"rms/internal/domains/waitlist/priority"
	"rms/shared/model"
	"rms/shared/timezone"
	"slices"
	"time"
)

const (
	TableName  = "waitlist_entries"
	EntityName = "waitlist"

	FieldID            = "id"
	FieldRestaurantID  = "restaurant_id"
	FieldCustomerName  = "customer_name"
	FieldCustomerPhone = "customer_phone"
	FieldCustomerEmail = "customer_email"
	FieldPartySize     = "party_size"
	FieldPreferredDate = "preferred_date"
	FieldPreferredTime = "preferred_time"
	FieldNotes         = "notes"
	FieldStatus        = "status"
	FieldJoinedAt      = "joined_at"
	FieldNotifiedAt    = "notified_at"
)

const (
	StatusActive    = "active"
	StatusNotified  = "notified"
	StatusSeated    = "seated"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

var transitions = map[string][]string{
	StatusActive:   {StatusNotified, StatusCancelled, StatusExpired},
	StatusNotified: {StatusSeated, StatusActive, StatusExpired},
}

type Waitlist struct {
	ID            string     `db:"id"`
	RestaurantID  string     `db:"restaurant_id"`
	CustomerName  string     `db:"customer_name"`
	CustomerPhone string     `db:"customer_phone"`
	CustomerEmail string     `db:"customer_email"`
	PartySize     int        `db:"party_size"`
	PreferredDate *time.Time `db:"preferred_date"`
	PreferredTime *string    `db:"preferred_time"`
	Notes         string     `db:"notes"`
	Status        string     `db:"status"`
	JoinedAt      time.Time  `db:"joined_at"`
	NotifiedAt    *time.Time `db:"notified_at"`
	model.Metadata
}

// CanTransition reports whether from may move to to. Staying in the same status is allowed.
func CanTransition(from, to string) bool {
	return from == to || slices.Contains(transitions[from], to)
}

// ToEntry converts the row into the ranking view. An unparsable preferred time is ignored.
func (w Waitlist) ToEntry() priority.Entry {
	entry := priority.Entry{
		ID:        w.ID,
		PartySize: w.PartySize,
		JoinedAt:  w.JoinedAt,
		Active:    w.Status == StatusActive,
	}

	if w.PreferredDate != nil {
		d := *w.PreferredDate
		date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, timezone.GetLocation())
		entry.PreferredDate = &date
	}

	if w.PreferredTime != nil {
		if t, err := timezone.Parse(timezone.ClockLayout, *w.PreferredTime); err == nil {
			minutes := t.Hour()*60 + t.Minute()
			entry.PreferredClock = &minutes
		}
	}

	return entry
}

func ToEntries(rows []Waitlist) []priority.Entry {
	entries := make([]priority.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToEntry())
	}

	return entries
}
