package dto

import (
	"net/http"
	"rms/internal/domains/reservation/model"
	"rms/shared"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gModel "rms/shared/model"
	"rms/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateReservationRequest struct {
	CustomerName  string `json:"customer_name"  validate:"required,max=100"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=100"`
	PartySize     int    `json:"party_size"     validate:"required,gt=0"`
	Date          string `json:"date"           validate:"required,isodate"`
	Time          string `json:"time"           validate:"required,clock"`
	Duration      *int   `json:"duration"       validate:"omitempty,gt=0"`
	TableID       string `json:"table_id"       validate:"omitempty,max=64"`
	Location      string `json:"location"       validate:"omitempty,max=50"`
	WaitlistID    string `json:"waitlist_id"    validate:"omitempty,uuid"`
	Notes         string `json:"notes"          validate:"omitempty,max=500"`
	Status        string `json:"status"         validate:"omitempty,oneof=pending confirmed"`
}

// Start returns the requested start on date and the parsed date itself.
func (c CreateReservationRequest) Start() (time.Time, time.Time, error) {
	date, err := timezone.ParseDate(c.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	clock, err := timezone.Parse(timezone.ClockLayout, c.Time)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return date, timezone.At(date, clock.Hour()*60+clock.Minute()), nil
}

func (c CreateReservationRequest) ToModel(restaurantID, user string, date, start time.Time, duration int, tableIDs []string) model.Reservation {
	status := model.StatusPending
	if c.Status != constant.Empty {
		status = c.Status
	}

	var waitlistID *string
	if c.WaitlistID != constant.Empty {
		id := c.WaitlistID
		waitlistID = &id
	}

	now := timezone.Now()

	return model.Reservation{
		ID:              uuid.NewString(),
		RestaurantID:    restaurantID,
		CustomerName:    c.CustomerName,
		CustomerPhone:   c.CustomerPhone,
		CustomerEmail:   c.CustomerEmail,
		PartySize:       c.PartySize,
		ReservationDate: date,
		StartTime:       timezone.Format(start, timezone.ClockLayout),
		DurationMinutes: duration,
		StartsAt:        start,
		EndsAt:          start.Add(time.Duration(duration) * time.Minute),
		Status:          status,
		TableIDs:        pq.StringArray(tableIDs),
		WaitlistID:      waitlistID,
		Notes:           c.Notes,
		Metadata:        gModel.Created(user, now),
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed seated completed cancelled no_show"`
}

type ListRequest struct {
	gDto.QueryParams
	Date   string `json:"date"   validate:"omitempty,isodate"`
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed seated completed cancelled no_show"`
}

func (l *ListRequest) FromRequest(r *http.Request) {
	l.QueryParams.FromRequest(r, true)

	if l.SortBy == constant.Empty {
		l.SortBy = model.FieldStartsAt
		l.SortDir = gDto.SortDirAsc
	}

	l.Date = r.URL.Query().Get(constant.RequestParamDate)
	l.Status = r.URL.Query().Get(constant.RequestParamStatus)
}

// Filter scopes the listing to the restaurant plus the optional date and status.
func (l ListRequest) Filter(restaurantID string) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRestaurantID,
				Value:    restaurantID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	if l.Date != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldReservationDate,
			Value:    l.Date,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if l.Status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    l.Status,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return filter
}

type ReservationResponse struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	PartySize     int       `json:"party_size"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Duration      int       `json:"duration_minutes"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Status        string    `json:"status"`
	TableIDs      []string  `json:"table_ids"`
	WaitlistID    *string   `json:"waitlist_id,omitempty"`
	Notes         string    `json:"notes"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.RestaurantID = model.RestaurantID
	r.CustomerName = model.CustomerName
	r.CustomerPhone = model.CustomerPhone
	r.CustomerEmail = model.CustomerEmail
	r.PartySize = model.PartySize
	r.Date = model.ReservationDate.Format(timezone.DateLayout)
	r.Time = model.StartTime
	r.Duration = model.DurationMinutes
	r.StartsAt = model.StartsAt
	r.EndsAt = model.EndsAt
	r.Status = model.Status
	r.TableIDs = append([]string{}, model.TableIDs...)
	r.WaitlistID = model.WaitlistID
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

type FreedSlotResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Capacity int       `json:"capacity"`
}

// StatusResponse reports the reservation after a transition. Changed is false when the
// reservation was already in the requested status. FreedSlot is set when tables were released.
type StatusResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Changed     bool                `json:"changed"`
	FreedSlot   *FreedSlotResponse  `json:"freed_slot,omitempty"`
}
