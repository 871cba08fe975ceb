package engine

import (
	"errors"
	"sort"
	"time"
)

const (
	DefaultGranularity = 15
	DefaultDuration    = 90
)

var (
	ErrInvalidPartySize   = errors.New("party_size must be greater than 0")
	ErrInvalidDuration    = errors.New("duration_minutes must be greater than 0")
	ErrInvalidGranularity = errors.New("slot granularity must be greater than 0")
	ErrDateInPast         = errors.New("date is in the past")
)

// Query describes one availability question for a single service day.
type Query struct {
	Date        time.Time
	PartySize   int
	Preferred   *time.Time
	Duration    int
	Granularity int
	Location    string
	AllowMerged bool
}

// Validate rejects queries that cannot be answered. Values are never clamped.
func (q Query) Validate() error {
	switch {
	case q.PartySize <= 0:
		return ErrInvalidPartySize
	case q.Duration <= 0:
		return ErrInvalidDuration
	case q.Granularity < 0:
		return ErrInvalidGranularity
	}

	return nil
}

// CheckNotPast fails when the whole of date ended more than grace before now.
func CheckNotPast(date, now time.Time, grace time.Duration) error {
	end := startOfDay(date).AddDate(0, 0, 1)
	if end.Add(grace).Before(now) {
		return ErrDateInPast
	}

	return nil
}

// TableRef points at a table id a hold references but the inventory does not contain.
type TableRef struct {
	ReservationID string
	TableID       string
}

// Result is the calculator output for one query.
type Result struct {
	Slots []Slot
	// Preferred is the slot at the requested time, evaluated even when it is off the grid.
	// It is nil when no preference was given.
	Preferred *Slot
	// UnknownTableRefs lists holds that reference tables absent from the snapshot.
	UnknownTableRefs []TableRef
}

// IsFullyBooked is party-size relative: with a preference it reflects the preferred slot only,
// otherwise it means no slot of the day has a candidate.
func (r Result) IsFullyBooked() bool {
	if r.Preferred != nil {
		return !r.Preferred.Available()
	}

	for _, slot := range r.Slots {
		if slot.Available() {
			return false
		}
	}

	return true
}

// Calculate enumerates slots across the service window of day at the query granularity
// and evaluates each one for the party size.
func Calculate(day Day, query Query) Result {
	tables := sortTables(day.Tables)
	busy := indexHolds(day.Holds)

	result := Result{UnknownTableRefs: unknownRefs(tables, day.Holds)}

	granularity := query.Granularity
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	length := time.Duration(query.Duration) * time.Minute
	step := time.Duration(granularity) * time.Minute

	open, closeAt, ok := day.Hours.Window(day.Date)
	if ok && query.Duration > 0 {
		for start := open; !start.Add(length).After(closeAt); start = start.Add(step) {
			result.Slots = append(result.Slots, evaluate(tables, busy, start, query))
		}
	}

	if query.Preferred != nil {
		preferred := Slot{Start: *query.Preferred, Duration: query.Duration}

		if ok && query.Duration > 0 && !preferred.Start.Before(open) && !preferred.End().After(closeAt) {
			preferred = evaluate(tables, busy, preferred.Start, query)
		}

		result.Preferred = &preferred
	}

	return result
}

// Evaluate computes a single slot starting at start, independent of the grid.
func Evaluate(day Day, query Query, start time.Time) Slot {
	return evaluate(sortTables(day.Tables), indexHolds(day.Holds), start, query)
}

// Recommend picks up to n available slots: closest to the preferred time first when one is given,
// then least wasted seats on the best candidate, then earliest start.
func Recommend(result Result, query Query, n int) []Slot {
	if n <= 0 {
		return nil
	}

	available := make([]Slot, 0, len(result.Slots))

	for _, slot := range result.Slots {
		if slot.Available() {
			available = append(available, slot)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		a, b := available[i], available[j]

		if query.Preferred != nil {
			da, db := distance(a.Start, *query.Preferred), distance(b.Start, *query.Preferred)
			if da != db {
				return da < db
			}
		}

		wa, wb := waste(a, query.PartySize), waste(b, query.PartySize)
		if wa != wb {
			return wa < wb
		}

		return a.Start.Before(b.Start)
	})

	if len(available) > n {
		available = available[:n]
	}

	return available
}

func evaluate(tables []Table, busy map[string][]Hold, start time.Time, query Query) Slot {
	slot := Slot{Start: start, Duration: query.Duration}
	end := slot.End()

	free := make([]Table, 0, len(tables))

	for _, table := range tables {
		if !table.Active || (query.Location != "" && table.Location != query.Location) {
			continue
		}

		if isFree(busy[table.ID], start, end) {
			free = append(free, table)
		}
	}

	for _, table := range free {
		if table.Capacity >= query.PartySize {
			slot.Candidates = append(slot.Candidates, Candidate{TableIDs: []string{table.ID}, Capacity: table.Capacity})
		}
	}

	if len(slot.Candidates) == 0 && query.AllowMerged {
		slot.Candidates = mergeCandidates(free, query.PartySize)
	}

	for _, candidate := range slot.Candidates {
		slot.AvailableTables++
		slot.TotalCapacity += candidate.Capacity
	}

	return slot
}

// mergeCandidates builds at most one group per location, taking the largest free tables first.
func mergeCandidates(free []Table, partySize int) []Candidate {
	byLocation := map[string][]Table{}
	locations := []string{}

	for _, table := range free {
		if _, ok := byLocation[table.Location]; !ok {
			locations = append(locations, table.Location)
		}

		byLocation[table.Location] = append(byLocation[table.Location], table)
	}

	sort.Strings(locations)

	var candidates []Candidate

	for _, location := range locations {
		group := byLocation[location]

		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Capacity != group[j].Capacity {
				return group[i].Capacity > group[j].Capacity
			}

			return group[i].ID < group[j].ID
		})

		candidate := Candidate{}

		for _, table := range group {
			candidate.TableIDs = append(candidate.TableIDs, table.ID)
			candidate.Capacity += table.Capacity

			if candidate.Capacity >= partySize {
				break
			}
		}

		if candidate.Capacity >= partySize {
			sort.Strings(candidate.TableIDs)
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

func isFree(holds []Hold, start, end time.Time) bool {
	for _, hold := range holds {
		if Overlaps(start, end, hold.Start, hold.End) {
			return false
		}
	}

	return true
}

func indexHolds(holds []Hold) map[string][]Hold {
	busy := make(map[string][]Hold, len(holds))

	for _, hold := range holds {
		for _, tableID := range hold.TableIDs {
			busy[tableID] = append(busy[tableID], hold)
		}
	}

	return busy
}

// sortTables copies tables ordered by capacity then id so candidates come out in resolver order.
func sortTables(tables []Table) []Table {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Capacity != sorted[j].Capacity {
			return sorted[i].Capacity < sorted[j].Capacity
		}

		return sorted[i].ID < sorted[j].ID
	})

	return sorted
}

func unknownRefs(tables []Table, holds []Hold) []TableRef {
	known := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		known[table.ID] = struct{}{}
	}

	var refs []TableRef

	for _, hold := range holds {
		for _, tableID := range hold.TableIDs {
			if _, ok := known[tableID]; !ok {
				refs = append(refs, TableRef{ReservationID: hold.ReservationID, TableID: tableID})
			}
		}
	}

	return refs
}

func waste(slot Slot, partySize int) int {
	best := -1

	for _, candidate := range slot.Candidates {
		if w := candidate.Capacity - partySize; best < 0 || w < best {
			best = w
		}
	}

	return best
}

func distance(a, b time.Time) time.Duration {
	if a.Before(b) {
		return b.Sub(a)
	}

	return a.Sub(b)
}
