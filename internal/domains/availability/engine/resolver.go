package engine

import (
	"slices"
)

// Resolve selects the candidate that seats the party with the fewest spare seats.
// Ties go to the lexicographically lowest table id list so repeated calls agree.
func Resolve(candidates []Candidate, partySize int) (Candidate, error) {
	best := -1

	for i, candidate := range candidates {
		if candidate.Capacity < partySize || len(candidate.TableIDs) == 0 {
			continue
		}

		if best < 0 || better(candidate, candidates[best]) {
			best = i
		}
	}

	if best < 0 {
		return Candidate{}, ErrNoCapacity
	}

	return cloneCandidate(candidates[best]), nil
}

// ResolveTable honours an explicit table request. The table must be a single-table
// candidate that seats the party.
func ResolveTable(candidates []Candidate, partySize int, tableID string) (Candidate, error) {
	for _, candidate := range candidates {
		if len(candidate.TableIDs) == 1 && candidate.TableIDs[0] == tableID && candidate.Capacity >= partySize {
			return cloneCandidate(candidate), nil
		}
	}

	return Candidate{}, ErrNoCapacity
}

func better(a, b Candidate) bool {
	if a.Capacity != b.Capacity {
		return a.Capacity < b.Capacity
	}

	if len(a.TableIDs) != len(b.TableIDs) {
		return len(a.TableIDs) < len(b.TableIDs)
	}

	return slices.Compare(a.TableIDs, b.TableIDs) < 0
}

func cloneCandidate(c Candidate) Candidate {
	return Candidate{TableIDs: slices.Clone(c.TableIDs), Capacity: c.Capacity}
}
