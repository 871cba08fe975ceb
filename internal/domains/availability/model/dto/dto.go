package dto

import (
	"fmt"
	"net/http"
	"rms/internal/domains/availability/engine"
	"rms/shared/constant"
	"rms/shared/timezone"
	"strconv"
	"time"
)

type AvailabilityRequest struct {
	Date      string `json:"date"       validate:"required,isodate"`
	Time      string `json:"time"       validate:"omitempty,clock"`
	PartySize int    `json:"party_size" validate:"required,gt=0"`
	Duration  *int   `json:"duration"   validate:"omitempty,gt=0"`
	Location  string `json:"location"   validate:"omitempty,max=50"`
}

// FromRequest reads the query string. Numbers that do not parse are reported rather than zeroed.
// An absent duration stays nil so only a missing value falls back to the default.
func (a *AvailabilityRequest) FromRequest(r *http.Request) error {
	query := r.URL.Query()

	a.Date = query.Get(constant.RequestParamDate)
	a.Time = query.Get(constant.RequestParamTime)
	a.Location = query.Get(constant.RequestParamLocation)

	var err error

	if a.PartySize, err = intParam(query.Get(constant.RequestParamPartySize), constant.RequestParamPartySize); err != nil {
		return err
	}

	if a.Duration, err = optionalIntParam(query.Get(constant.RequestParamDuration), constant.RequestParamDuration); err != nil {
		return err
	}

	return nil
}

// Preferred returns the requested start, or nil when no time was given.
func (a AvailabilityRequest) Preferred(date time.Time) (*time.Time, error) {
	if a.Time == constant.Empty {
		return nil, nil
	}

	clock, err := timezone.Parse(timezone.ClockLayout, a.Time)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", a.Time, err)
	}

	start := timezone.At(date, clock.Hour()*60+clock.Minute())

	return &start, nil
}

type AlternativesRequest struct {
	Date      string `json:"date"       validate:"required,isodate"`
	Time      string `json:"time"       validate:"required,clock"`
	PartySize int    `json:"party_size" validate:"required,gt=0"`
	Duration  *int   `json:"duration"   validate:"omitempty,gt=0"`
	Location  string `json:"location"   validate:"omitempty,max=50"`
}

func (a *AlternativesRequest) FromRequest(r *http.Request) error {
	var req AvailabilityRequest
	if err := req.FromRequest(r); err != nil {
		return err
	}

	*a = AlternativesRequest(req)

	return nil
}

type CapacityRequest struct {
	Date string `json:"date" validate:"required,isodate"`
}

func (c *CapacityRequest) FromRequest(r *http.Request) {
	c.Date = r.URL.Query().Get(constant.RequestParamDate)
}

type SlotResponse struct {
	Start           time.Time `json:"start"`
	Time            string    `json:"time"`
	Duration        int       `json:"duration_minutes"`
	Available       bool      `json:"available"`
	AvailableTables int       `json:"available_tables"`
	TotalCapacity   int       `json:"total_capacity"`
	TableIDs        []string  `json:"table_ids"`
}

func (s *SlotResponse) FromSlot(slot engine.Slot) {
	s.Start = slot.Start
	s.Time = timezone.Format(slot.Start, timezone.ClockLayout)
	s.Duration = slot.Duration
	s.Available = slot.Available()
	s.AvailableTables = slot.AvailableTables
	s.TotalCapacity = slot.TotalCapacity
	s.TableIDs = slot.TableIDs()
}

func FromSlots(slots []engine.Slot) []SlotResponse {
	res := make([]SlotResponse, len(slots))
	for i, slot := range slots {
		res[i].FromSlot(slot)
	}

	return res
}

type AvailabilityResponse struct {
	RestaurantID    string         `json:"restaurant_id"`
	Date            string         `json:"date"`
	PartySize       int            `json:"party_size"`
	Duration        int            `json:"duration_minutes"`
	IsFullyBooked   bool           `json:"is_fully_booked"`
	Preferred       *SlotResponse  `json:"preferred,omitempty"`
	Slots           []SlotResponse `json:"slots"`
	Recommendations []SlotResponse `json:"recommendations"`
}

type AlternativeResponse struct {
	SlotResponse
	Date            string `json:"date"`
	DistanceMinutes int    `json:"distance_minutes"`
}

type AlternativesResponse struct {
	RestaurantID string                `json:"restaurant_id"`
	Found        bool                  `json:"found"`
	DaysSearched int                   `json:"days_searched"`
	Alternatives []AlternativeResponse `json:"alternatives"`
}

func (a *AlternativesResponse) FromResult(restaurantID string, result engine.Alternatives) {
	a.RestaurantID = restaurantID
	a.Found = result.Found()
	a.DaysSearched = result.DaysSearched
	a.Alternatives = make([]AlternativeResponse, len(result.Slots))

	for i, alt := range result.Slots {
		a.Alternatives[i].FromSlot(alt.Slot)
		a.Alternatives[i].Date = timezone.Format(alt.Start, timezone.DateLayout)
		a.Alternatives[i].DistanceMinutes = int(alt.Distance / time.Minute)
	}
}

type OccupancyResponse struct {
	Time            string  `json:"time"`
	AvailableTables int     `json:"available_tables"`
	Occupancy       float64 `json:"occupancy"`
}

type CapacityResponse struct {
	RestaurantID  string              `json:"restaurant_id"`
	Date          string              `json:"date"`
	ActiveTables  int                 `json:"active_tables"`
	OccupancyRate float64             `json:"occupancy_rate"`
	PeakHours     []string            `json:"peak_hours"`
	Suggestions   []string            `json:"suggestions"`
	Slots         []OccupancyResponse `json:"slots"`
	ArchiveURL    string              `json:"archive_url,omitempty"`
}

func (c *CapacityResponse) FromReport(restaurantID, date string, report engine.CapacityReport) {
	c.RestaurantID = restaurantID
	c.Date = date
	c.ActiveTables = report.ActiveTables
	c.OccupancyRate = report.OccupancyRate
	c.Suggestions = append([]string{}, report.Suggestions...)

	c.PeakHours = make([]string, len(report.PeakHours))
	for i, peak := range report.PeakHours {
		c.PeakHours[i] = timezone.Format(peak.Start, timezone.ClockLayout)
	}

	c.Slots = make([]OccupancyResponse, len(report.Slots))
	for i, slot := range report.Slots {
		c.Slots[i] = OccupancyResponse{
			Time:            timezone.Format(slot.Start, timezone.ClockLayout),
			AvailableTables: slot.AvailableTables,
			Occupancy:       slot.Occupancy,
		}
	}
}

func intParam(value, name string) (int, error) {
	if value == constant.Empty {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	return n, nil
}

func optionalIntParam(value, name string) (*int, error) {
	if value == constant.Empty {
		return nil, nil
	}

	n, err := intParam(value, name)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// DurationOr returns the requested duration, or fallback when none was given. An explicit
// value is returned as is so validation can reject it.
func DurationOr(requested *int, fallback int) int {
	if requested == nil {
		return fallback
	}

	return *requested
}
