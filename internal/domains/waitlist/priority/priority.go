// Package priority ranks waitlist entries. Scores are derived on every read from
// party size, time waited and whether the guest's preferred window matches.
package priority

import (
	"math"
	"sort"
	"time"
)

const minutesPerDay = 24 * 60

// Weights are the restaurant-configurable coefficients of the score.
type Weights struct {
	TimeWeight          float64
	SmallPartyWeight    float64
	LargePartyWeight    float64
	LargePartyThreshold int
	PreferenceBonus     float64
	// PreferenceTolerance is how many minutes around a preferred time still count as a match.
	PreferenceTolerance int
}

// Entry is the ranking view of a waitlist entry.
type Entry struct {
	ID        string
	PartySize int
	JoinedAt  time.Time
	Active    bool
	// PreferredDate is midnight of the preferred day, nil when any day works.
	PreferredDate *time.Time
	// PreferredClock is the preferred time in minutes after midnight, nil when any time works.
	PreferredClock *int
}

// HasPreference reports whether the guest asked for a date or a time.
func (e Entry) HasPreference() bool {
	return e.PreferredDate != nil || e.PreferredClock != nil
}

// Ranked is an active entry with its score and 1-based position.
type Ranked struct {
	Entry
	Score    float64
	Position int
}

// FreedSlot is capacity that just became available. End is zero when the caller did not
// report when the capacity is taken again.
type FreedSlot struct {
	Start    time.Time
	End      time.Time
	Capacity int
}

// Score computes the priority of e at ref. Waiting time is measured up to ref and never negative.
func Score(e Entry, ref time.Time, w Weights) float64 {
	return score(e, ref, ref, w)
}

// score measures waiting time at now and the preference bonus against window.
func score(e Entry, now, window time.Time, w Weights) float64 {
	total := w.SmallPartyWeight
	if w.LargePartyThreshold > 0 && e.PartySize >= w.LargePartyThreshold {
		total = w.LargePartyWeight
	}

	waited := math.Max(0, now.Sub(e.JoinedAt).Minutes())
	total += waited * w.TimeWeight

	if e.HasPreference() && Matches(e, window, w.PreferenceTolerance) {
		total += w.PreferenceBonus
	}

	return total
}

// Matches reports whether ref falls inside the preferred window of e. An entry without
// preference matches any time.
func Matches(e Entry, ref time.Time, tolerance int) bool {
	tol := time.Duration(max(0, tolerance)) * time.Minute

	switch {
	case e.PreferredDate != nil && e.PreferredClock != nil:
		d := *e.PreferredDate
		preferred := time.Date(d.Year(), d.Month(), d.Day(), 0, *e.PreferredClock, 0, 0, d.Location())

		return absDuration(ref.Sub(preferred)) <= tol
	case e.PreferredDate != nil:
		d := *e.PreferredDate
		local := ref.In(d.Location())

		return local.Year() == d.Year() && local.YearDay() == d.YearDay()
	case e.PreferredClock != nil:
		minute := ref.Hour()*60 + ref.Minute()
		diff := abs(minute - *e.PreferredClock)
		diff = min(diff, minutesPerDay-diff)

		return time.Duration(diff)*time.Minute <= tol
	default:
		return true
	}
}

// Rank orders the active entries at now: score descending, then earlier join, then id.
func Rank(entries []Entry, now time.Time, w Weights) []Ranked {
	return rankAt(entries, now, now, w)
}

// Position is the 1-based rank of id among active entries at now, or 0 when the entry
// is missing or no longer active.
func Position(entries []Entry, id string, now time.Time, w Weights) int {
	for _, ranked := range Rank(entries, now, w) {
		if ranked.ID == id {
			return ranked.Position
		}
	}

	return 0
}

// Match walks the queue in priority order and returns the first n entries that fit the
// freed slot. Preferences are scored against the slot start, waiting time against now.
func Match(entries []Entry, slot FreedSlot, now time.Time, w Weights, n int) []Ranked {
	if n <= 0 {
		return nil
	}

	var matched []Ranked

	for _, ranked := range rankAt(entries, now, slot.Start, w) {
		if ranked.PartySize > slot.Capacity {
			continue
		}

		if !Matches(ranked.Entry, slot.Start, w.PreferenceTolerance) {
			continue
		}

		matched = append(matched, ranked)

		if len(matched) == n {
			break
		}
	}

	return matched
}

func rankAt(entries []Entry, now, window time.Time, w Weights) []Ranked {
	ranked := make([]Ranked, 0, len(entries))

	for _, entry := range entries {
		if !entry.Active {
			continue
		}

		ranked = append(ranked, Ranked{Entry: entry, Score: score(entry, now, window, w)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if a.Score != b.Score {
			return a.Score > b.Score
		}

		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}

		return a.ID < b.ID
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}

	return ranked
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
