package engine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// OptimizerPolicy holds the thresholds behind the advisory text.
type OptimizerPolicy struct {
	PeakQuantile        float64
	HighOccupancy       float64
	LowOccupancy        float64
	MinConsecutiveSlots int
}

// SlotOccupancy is the share of active tables held at one slot.
type SlotOccupancy struct {
	Start           time.Time
	AvailableTables int
	Occupancy       float64
}

// CapacityReport aggregates one day of slots.
type CapacityReport struct {
	ActiveTables  int
	OccupancyRate float64
	Slots         []SlotOccupancy
	PeakHours     []SlotOccupancy
	Suggestions   []string
}

// Optimize measures occupancy slot by slot for a single guest so every free table counts,
// then derives peak hours and suggestions. Slots are one granularity step long.
func Optimize(day Day, granularity int, policy OptimizerPolicy) CapacityReport {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	report := CapacityReport{}

	for _, table := range day.Tables {
		if table.Active {
			report.ActiveTables++
		}
	}

	result := Calculate(day, Query{Date: day.Date, PartySize: 1, Duration: granularity, Granularity: granularity})

	if len(result.Slots) == 0 {
		report.Suggestions = append(report.Suggestions, "no service hours on this day")

		return report
	}

	if report.ActiveTables == 0 {
		report.Suggestions = append(report.Suggestions, "no active tables; activate tables to accept reservations")
	}

	total := 0.0

	for _, slot := range result.Slots {
		occupancy := 0.0
		if report.ActiveTables > 0 {
			occupancy = 1 - float64(slot.AvailableTables)/float64(report.ActiveTables)
		}

		report.Slots = append(report.Slots, SlotOccupancy{
			Start:           slot.Start,
			AvailableTables: slot.AvailableTables,
			Occupancy:       occupancy,
		})

		total += occupancy
	}

	report.OccupancyRate = total / float64(len(report.Slots))
	report.PeakHours = peaks(report.Slots, policy.PeakQuantile)

	if report.ActiveTables > 0 {
		report.Suggestions = append(report.Suggestions, suggest(report, granularity, policy)...)
	}

	return report
}

// peaks returns the slots at or above the quantile of occupancy, ignoring empty slots.
func peaks(slots []SlotOccupancy, quantile float64) []SlotOccupancy {
	if quantile <= 0 || quantile > 1 {
		quantile = 0.75
	}

	values := make([]float64, len(slots))
	for i, slot := range slots {
		values[i] = slot.Occupancy
	}

	sort.Float64s(values)

	rank := int(math.Ceil(quantile*float64(len(values)))) - 1
	rank = max(0, min(rank, len(values)-1))
	threshold := values[rank]

	var peak []SlotOccupancy

	for _, slot := range slots {
		if slot.Occupancy > 0 && slot.Occupancy >= threshold {
			peak = append(peak, slot)
		}
	}

	return peak
}

func suggest(report CapacityReport, granularity int, policy OptimizerPolicy) []string {
	minRun := max(1, policy.MinConsecutiveSlots)
	step := time.Duration(granularity) * time.Minute

	var suggestions []string

	for _, run := range runs(report.Slots, func(o float64) bool { return o >= policy.HighOccupancy }) {
		if len(run) < minRun {
			continue
		}

		suggestions = append(suggestions, fmt.Sprintf("add capacity at %s-%s: occupancy at or above %s for %d consecutive slots",
			clock(run[0].Start), clock(run[len(run)-1].Start.Add(step)), percent(policy.HighOccupancy), len(run)))
	}

	for _, run := range runs(report.Slots, func(o float64) bool { return o <= policy.LowOccupancy }) {
		if len(run) < minRun {
			continue
		}

		suggestions = append(suggestions, fmt.Sprintf("consolidate tables at %s-%s: occupancy at or below %s for %d consecutive slots",
			clock(run[0].Start), clock(run[len(run)-1].Start.Add(step)), percent(policy.LowOccupancy), len(run)))
	}

	switch {
	case report.OccupancyRate >= policy.HighOccupancy:
		suggestions = append(suggestions, fmt.Sprintf("average occupancy is %s; consider extending service hours or enabling merged tables",
			percent(report.OccupancyRate)))
	case report.OccupancyRate <= policy.LowOccupancy:
		suggestions = append(suggestions, fmt.Sprintf("average occupancy is %s; consider promoting off-peak reservations",
			percent(report.OccupancyRate)))
	}

	return suggestions
}

func runs(slots []SlotOccupancy, match func(float64) bool) [][]SlotOccupancy {
	var (
		all     [][]SlotOccupancy
		current []SlotOccupancy
	)

	for _, slot := range slots {
		if match(slot.Occupancy) {
			current = append(current, slot)

			continue
		}

		if len(current) > 0 {
			all = append(all, current)
			current = nil
		}
	}

	if len(current) > 0 {
		all = append(all, current)
	}

	return all
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}
