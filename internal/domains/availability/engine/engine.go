// Package engine computes reservation availability from plain snapshots.
//
// Everything here is a pure function of its arguments: callers load tables,
// reservations and service hours, hand them over by value and get slots back.
// Nothing is cached, locked or persisted in this package.
package engine

import (
	"errors"
	"time"
)

var (
	// ErrNoCapacity is returned by the resolver when no candidate fits the party.
	ErrNoCapacity = errors.New("no table can accommodate the party")
	// ErrConflict is returned by Recheck when a held table is already taken.
	ErrConflict = errors.New("table is already held for an overlapping reservation")
)

// Table is a bookable table as seen by the calculator.
type Table struct {
	ID       string
	Capacity int
	Location string
	Active   bool
}

// Hold is an existing reservation that occupies one or more tables.
// Only reservations in a blocking status should be converted into holds.
type Hold struct {
	ReservationID string
	TableIDs      []string
	Start         time.Time
	End           time.Time
}

// ServiceHours is the opening window of one weekday in minutes after midnight.
// A close at or before the open crosses midnight.
type ServiceHours struct {
	Open   int
	Close  int
	Closed bool
}

// Window returns the absolute service window on date.
func (h ServiceHours) Window(date time.Time) (time.Time, time.Time, bool) {
	if h.Closed {
		return time.Time{}, time.Time{}, false
	}

	closeMinute := h.Close
	if closeMinute <= h.Open {
		closeMinute += minutesPerDay
	}

	return at(date, h.Open), at(date, closeMinute), true
}

// Day bundles everything the calculator needs for one service day.
type Day struct {
	Date   time.Time
	Tables []Table
	Holds  []Hold
	Hours  ServiceHours
}

// Candidate is one way to seat a party: a single table, or a merged group when enabled.
type Candidate struct {
	TableIDs []string
	Capacity int
}

// Slot is a candidate reservation window with its availability for one party size.
type Slot struct {
	Start           time.Time
	Duration        int
	AvailableTables int
	TotalCapacity   int
	Candidates      []Candidate
}

// End is the exclusive end of the slot.
func (s Slot) End() time.Time {
	return s.Start.Add(time.Duration(s.Duration) * time.Minute)
}

// Available reports whether at least one candidate exists.
func (s Slot) Available() bool {
	return s.AvailableTables > 0
}

// TableIDs flattens the candidate table ids in candidate order.
func (s Slot) TableIDs() []string {
	ids := make([]string, 0, len(s.Candidates))
	for _, candidate := range s.Candidates {
		ids = append(ids, candidate.TableIDs...)
	}

	return ids
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

const minutesPerDay = 24 * 60

func at(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, date.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
