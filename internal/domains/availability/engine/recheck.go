package engine

import (
	"fmt"
	"slices"
	"time"
)

// Recheck repeats the overlap test for a provisional assignment against a fresh snapshot
// of holds. The ledger calls it inside its commit transaction. Holds belonging to
// reservationID are ignored so a reservation can be re-committed onto its own tables.
func Recheck(holds []Hold, tableIDs []string, start, end time.Time, reservationID string) error {
	for _, hold := range holds {
		if hold.ReservationID != "" && hold.ReservationID == reservationID {
			continue
		}

		if !Overlaps(start, end, hold.Start, hold.End) {
			continue
		}

		for _, tableID := range hold.TableIDs {
			if slices.Contains(tableIDs, tableID) {
				return fmt.Errorf("%w: table %s held by reservation %s", ErrConflict, tableID, hold.ReservationID)
			}
		}
	}

	return nil
}
