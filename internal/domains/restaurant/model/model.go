package model

import (
	"context"
	"fmt"
	"rms/internal/domains/availability/engine"
	"rms/shared/constant"
	"rms/shared/model"
	"rms/shared/timezone"
)

const (
	TableName  = "restaurants"
	EntityName = "restaurant"

	FieldID             = "id"
	FieldOrganizationID = "organization_id"
	FieldName           = "name"
)

const (
	HoursTableName  = "service_hours"
	HoursEntityName = "service_hours"

	FieldHoursID           = "id"
	FieldHoursRestaurantID = "restaurant_id"
	FieldWeekday           = "weekday"
	FieldOpenTime          = "open_time"
	FieldCloseTime         = "close_time"
	FieldClosed            = "is_closed"
)

// Scope names the restaurant an operation runs against. OrganizationID comes from the
// caller's token and is empty for trusted internal callers.
type Scope struct {
	OrganizationID string
	RestaurantID   string
}

// NewScope scopes restaurantID to the organization of the authenticated caller, if any.
func NewScope(ctx context.Context, restaurantID string) Scope {
	organizationID, _ := ctx.Value(constant.ContextKeyOrganizationID).(string)

	return Scope{OrganizationID: organizationID, RestaurantID: restaurantID}
}

type Restaurant struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	model.Metadata
}

// ServiceHours is one weekday of a restaurant's opening hours. Times are "HH:MM"
// and a close at or before the open runs past midnight.
type ServiceHours struct {
	ID           string `db:"id"`
	RestaurantID string `db:"restaurant_id"`
	Weekday      int    `db:"weekday"`
	OpenTime     string `db:"open_time"`
	CloseTime    string `db:"close_time"`
	Closed       bool   `db:"is_closed"`
}

// ToEngine converts the row. A missing row (zero value) means closed.
func (h ServiceHours) ToEngine() (engine.ServiceHours, error) {
	if h.RestaurantID == "" || h.Closed {
		return engine.ServiceHours{Closed: true}, nil
	}

	open, err := ClockMinutes(h.OpenTime)
	if err != nil {
		return engine.ServiceHours{}, err
	}

	closeAt, err := ClockMinutes(h.CloseTime)
	if err != nil {
		return engine.ServiceHours{}, err
	}

	return engine.ServiceHours{Open: open, Close: closeAt}, nil
}

// ClockMinutes parses "HH:MM" into minutes after midnight.
func ClockMinutes(value string) (int, error) {
	t, err := timezone.Parse(timezone.ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}

	return t.Hour()*60 + t.Minute(), nil
}
