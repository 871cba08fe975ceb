package engine

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	DefaultSearchWindow = 180
	DefaultAlternatives = 3
	DefaultSearchDays   = 7
)

// DaySource loads the snapshot of one service day. The finder calls it once per day searched.
type DaySource interface {
	Day(ctx context.Context, date time.Time) (Day, error)
}

// DaySourceFunc adapts a function to DaySource.
type DaySourceFunc func(ctx context.Context, date time.Time) (Day, error)

func (f DaySourceFunc) Day(ctx context.Context, date time.Time) (Day, error) {
	return f(ctx, date)
}

// SearchQuery bounds an alternative search around a preferred start.
type SearchQuery struct {
	Preferred   time.Time
	PartySize   int
	Duration    int
	Granularity int
	Location    string
	AllowMerged bool
	// Window is how far before and after the preferred clock time to look first on each day, in
	// minutes. A day with nothing inside it is searched across its whole service window.
	Window int
	// Limit is the number of alternatives to return.
	Limit int
	// MaxDays is how many days after the preferred date may be searched when it has nothing.
	MaxDays int
	// NotBefore drops candidates starting before it. Zero disables the check.
	NotBefore time.Time
}

// Alternative is an available slot with its distance from the preferred start.
// On later days the distance is measured from the preferred clock time plus a day per day skipped.
type Alternative struct {
	Slot
	Distance time.Duration
}

// Alternatives is the finder result. An empty list means nothing was found within the bounds.
type Alternatives struct {
	Slots        []Alternative
	DaysSearched int
}

func (a Alternatives) Found() bool {
	return len(a.Slots) > 0
}

// FindAlternatives walks outward from the preferred start in granularity steps, backward and forward,
// and returns the closest available slots of the first day that has any. Each day is searched within
// the window first and then across its service hours before the next day is tried. Results are ordered by
// distance from the preferred start, earlier start first on ties.
func FindAlternatives(ctx context.Context, source DaySource, query SearchQuery) (Alternatives, error) {
	query = withSearchDefaults(query)

	var result Alternatives

	for offset := 0; offset <= query.MaxDays; offset++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("alternative search abandoned: %w", err)
		}

		date := startOfDay(query.Preferred).AddDate(0, 0, offset)

		day, err := source.Day(ctx, date)
		if err != nil {
			return result, fmt.Errorf("failed to load day %s: %w", date.Format(time.DateOnly), err)
		}

		result.DaysSearched++

		found := searchDay(day, date, offset, query)
		if len(found) == 0 {
			continue
		}

		if len(found) > query.Limit {
			found = found[:query.Limit]
		}

		result.Slots = found

		return result, nil
	}

	return result, nil
}

func searchDay(day Day, date time.Time, offset int, query SearchQuery) []Alternative {
	open, closeAt, ok := day.Hours.Window(day.Date)
	if !ok {
		return nil
	}

	tables := sortTables(day.Tables)
	busy := indexHolds(day.Holds)
	length := time.Duration(query.Duration) * time.Minute
	step := time.Duration(query.Granularity) * time.Minute
	window := time.Duration(query.Window) * time.Minute

	anchor := time.Date(date.Year(), date.Month(), date.Day(),
		query.Preferred.Hour(), query.Preferred.Minute(), 0, 0, date.Location())
	// later days rank behind the preferred one regardless of clock distance
	penalty := time.Duration(offset) * 24 * time.Hour

	slotQuery := Query{
		Date:        date,
		PartySize:   query.PartySize,
		Duration:    query.Duration,
		Granularity: query.Granularity,
		Location:    query.Location,
		AllowMerged: query.AllowMerged,
	}

	scan := func(from, to time.Duration) []Alternative {
		var found []Alternative

		for delta := from; delta <= to; delta += step {
			start := anchor.Add(delta)

			if start.Before(open) || start.Add(length).After(closeAt) {
				continue
			}

			if !query.NotBefore.IsZero() && start.Before(query.NotBefore) {
				continue
			}

			slot := evaluate(tables, busy, start, slotQuery)
			if !slot.Available() {
				continue
			}

			found = append(found, Alternative{Slot: slot, Distance: penalty + distance(start, anchor)})
		}

		return found
	}

	found := scan(-window, window)

	if len(found) == 0 {
		from, to := -window, window

		for !anchor.Add(from - step).Before(open) {
			from -= step
		}

		for !anchor.Add(to + step).Add(length).After(closeAt) {
			to += step
		}

		if from < -window || to > window {
			found = scan(from, to)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Distance != found[j].Distance {
			return found[i].Distance < found[j].Distance
		}

		return found[i].Start.Before(found[j].Start)
	})

	return found
}

func withSearchDefaults(query SearchQuery) SearchQuery {
	if query.Granularity <= 0 {
		query.Granularity = DefaultGranularity
	}

	if query.Window <= 0 {
		query.Window = DefaultSearchWindow
	}

	if query.Limit <= 0 {
		query.Limit = DefaultAlternatives
	}

	if query.MaxDays < 0 {
		query.MaxDays = DefaultSearchDays
	}

	return query
}
