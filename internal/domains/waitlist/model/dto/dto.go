package dto

import (
	"rms/internal/domains/waitlist/model"
	"rms/internal/domains/waitlist/priority"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gModel "rms/shared/model"
	"rms/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type JoinRequest struct {
	CustomerName  string `json:"customer_name"  validate:"required,max=100"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=100"`
	PartySize     int    `json:"party_size"     validate:"required,gt=0"`
	PreferredDate string `json:"preferred_date" validate:"omitempty,isodate"`
	PreferredTime string `json:"preferred_time" validate:"omitempty,clock"`
	Notes         string `json:"notes"          validate:"omitempty,max=500"`
}

func (j JoinRequest) ToModel(restaurantID, user string) (model.Waitlist, error) {
	now := timezone.Now()

	mod := model.Waitlist{
		ID:            uuid.NewString(),
		RestaurantID:  restaurantID,
		CustomerName:  j.CustomerName,
		CustomerPhone: j.CustomerPhone,
		CustomerEmail: j.CustomerEmail,
		PartySize:     j.PartySize,
		Notes:         j.Notes,
		Status:        model.StatusActive,
		JoinedAt:      now,
		Metadata:      gModel.Created(user, now),
	}

	if j.PreferredDate != constant.Empty {
		date, err := timezone.ParseDate(j.PreferredDate)
		if err != nil {
			return mod, err
		}

		mod.PreferredDate = &date
	}

	if j.PreferredTime != constant.Empty {
		clock := j.PreferredTime
		mod.PreferredTime = &clock
	}

	return mod, nil
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active notified seated cancelled expired"`
}

// FreedSlotRequest is capacity that just became available, as reported by the caller.
// EndTime is optional; one at or before Time ends on the next day.
type FreedSlotRequest struct {
	Date     string `json:"date"     validate:"required,isodate"`
	Time     string `json:"time"     validate:"required,clock"`
	EndTime  string `json:"end_time" validate:"omitempty,clock"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

func (f *FreedSlotRequest) FromSlot(start, end time.Time, capacity int) {
	start = timezone.ToAppTime(start)

	f.Date = start.Format(timezone.DateLayout)
	f.Time = start.Format(timezone.ClockLayout)
	f.EndTime = constant.Empty
	f.Capacity = capacity

	if !end.IsZero() {
		f.EndTime = timezone.ToAppTime(end).Format(timezone.ClockLayout)
	}
}

func (f FreedSlotRequest) ToSlot() (priority.FreedSlot, error) {
	date, err := timezone.ParseDate(f.Date)
	if err != nil {
		return priority.FreedSlot{}, err
	}

	clock, err := timezone.Parse(timezone.ClockLayout, f.Time)
	if err != nil {
		return priority.FreedSlot{}, err
	}

	slot := priority.FreedSlot{
		Start:    timezone.At(date, clock.Hour()*60+clock.Minute()),
		Capacity: f.Capacity,
	}

	if f.EndTime == constant.Empty {
		return slot, nil
	}

	end, err := timezone.Parse(timezone.ClockLayout, f.EndTime)
	if err != nil {
		return priority.FreedSlot{}, err
	}

	slot.End = timezone.At(date, end.Hour()*60+end.Minute())
	if !slot.End.After(slot.Start) {
		slot.End = slot.End.AddDate(0, 0, 1)
	}

	return slot, nil
}

type EntryResponse struct {
	ID            string     `json:"id"`
	RestaurantID  string     `json:"restaurant_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerEmail string     `json:"customer_email"`
	PartySize     int        `json:"party_size"`
	PreferredDate *string    `json:"preferred_date,omitempty"`
	PreferredTime *string    `json:"preferred_time,omitempty"`
	Notes         string     `json:"notes"`
	Status        string     `json:"status"`
	JoinedAt      time.Time  `json:"joined_at"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	gDto.Metadata
}

func (e *EntryResponse) FromModel(model model.Waitlist) {
	e.ID = model.ID
	e.RestaurantID = model.RestaurantID
	e.CustomerName = model.CustomerName
	e.CustomerPhone = model.CustomerPhone
	e.CustomerEmail = model.CustomerEmail
	e.PartySize = model.PartySize
	e.PreferredTime = model.PreferredTime
	e.Notes = model.Notes
	e.Status = model.Status
	e.JoinedAt = model.JoinedAt
	e.NotifiedAt = model.NotifiedAt
	e.Metadata.FromModel(model.Metadata)

	if model.PreferredDate != nil {
		date := model.PreferredDate.Format(timezone.DateLayout)
		e.PreferredDate = &date
	}
}

type RankedResponse struct {
	EntryResponse
	Score    float64 `json:"priority_score"`
	Position int     `json:"position"`
}

// FromRanked fills the response from the stored rows. Ranked entries missing from rows are skipped.
func FromRanked(ranked []priority.Ranked, rows []model.Waitlist) []RankedResponse {
	byID := make(map[string]model.Waitlist, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	res := make([]RankedResponse, 0, len(ranked))

	for _, r := range ranked {
		row, ok := byID[r.ID]
		if !ok {
			continue
		}

		item := RankedResponse{Score: r.Score, Position: r.Position}
		item.FromModel(row)

		res = append(res, item)
	}

	return res
}

type JoinResponse struct {
	Entry    EntryResponse `json:"entry"`
	Position int           `json:"position"`
}

// PositionResponse carries a 1-based position, or 0 when the entry is no longer active.
type PositionResponse struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

type ListResponse struct {
	Entries []RankedResponse `json:"entries"`
}

type StatusResponse struct {
	Entry   EntryResponse `json:"entry"`
	Changed bool          `json:"changed"`
}

type SuggestionsResponse struct {
	RestaurantID string           `json:"restaurant_id"`
	Start        time.Time        `json:"start"`
	End          *time.Time       `json:"end,omitempty"`
	Capacity     int              `json:"capacity"`
	Suggestions  []RankedResponse `json:"suggestions"`
}
