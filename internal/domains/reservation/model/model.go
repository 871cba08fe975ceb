package model

import (
	"rms/internal/domains/availability/engine"
	"rms/shared/model"
	"slices"
	"time"

	"github.com/lib/pq"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID              = "id"
	FieldRestaurantID    = "restaurant_id"
	FieldCustomerName    = "customer_name"
	FieldCustomerPhone   = "customer_phone"
	FieldCustomerEmail   = "customer_email"
	FieldPartySize       = "party_size"
	FieldReservationDate = "reservation_date"
	FieldStartTime       = "start_time"
	FieldDuration        = "duration_minutes"
	FieldStartsAt        = "starts_at"
	FieldEndsAt          = "ends_at"
	FieldStatus          = "status"
	FieldTableIDs        = "table_ids"
	FieldWaitlistID      = "waitlist_id"
	FieldNotes           = "notes"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusSeated    = "seated"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// BlockingStatuses hold their tables for the reserved interval.
var BlockingStatuses = []string{StatusPending, StatusConfirmed, StatusSeated}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusSeated, StatusCancelled, StatusNoShow},
	StatusSeated:    {StatusCompleted},
}

type Reservation struct {
	ID              string         `db:"id"`
	RestaurantID    string         `db:"restaurant_id"`
	CustomerName    string         `db:"customer_name"`
	CustomerPhone   string         `db:"customer_phone"`
	CustomerEmail   string         `db:"customer_email"`
	PartySize       int            `db:"party_size"`
	ReservationDate time.Time      `db:"reservation_date"`
	StartTime       string         `db:"start_time"`
	DurationMinutes int            `db:"duration_minutes"`
	StartsAt        time.Time      `db:"starts_at"`
	EndsAt          time.Time      `db:"ends_at"`
	Status          string         `db:"status"`
	TableIDs        pq.StringArray `db:"table_ids"`
	WaitlistID      *string        `db:"waitlist_id"`
	Notes           string         `db:"notes"`
	model.Metadata
}

func IsBlocking(status string) bool {
	return slices.Contains(BlockingStatuses, status)
}

// CanTransition reports whether from may move to to. Staying in the same status is allowed.
func CanTransition(from, to string) bool {
	return from == to || slices.Contains(transitions[from], to)
}

// ToHold converts a blocking reservation into the calculator view.
func (r Reservation) ToHold() engine.Hold {
	return engine.Hold{
		ReservationID: r.ID,
		TableIDs:      slices.Clone([]string(r.TableIDs)),
		Start:         r.StartsAt,
		End:           r.EndsAt,
	}
}
