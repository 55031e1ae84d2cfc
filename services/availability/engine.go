// Package availability computes free regions and bookable slots from busy
// intervals. Every function here is pure over its inputs.
package availability

import (
	"sort"
	"time"

	"calbook/models"
)

// Merge sorts intervals by start and coalesces overlapping or adjacent ones.
// The input slice is not modified.
func Merge(busy []models.Interval) []models.Interval {
	if len(busy) == 0 {
		return nil
	}
	sorted := make([]models.Interval, 0, len(busy))
	for _, iv := range busy {
		if iv.End.After(iv.Start) {
			sorted = append(sorted, iv)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]models.Interval, 0, len(sorted))
	for _, iv := range sorted {
		if n := len(merged); n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// FreeRegions returns the complement of busy inside window, in ascending order.
func FreeRegions(window models.Window, busy []models.Interval) []models.Interval {
	var gaps []models.Interval
	cursor := window.Start
	for _, iv := range Merge(busy) {
		if !iv.End.After(window.Start) {
			continue
		}
		if !iv.Start.Before(window.End) {
			break
		}
		if iv.Start.After(cursor) {
			gaps = append(gaps, models.Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(window.End) {
		gaps = append(gaps, models.Interval{Start: cursor, End: window.End})
	}
	return gaps
}

// FreeSlots yields one slot per free region long enough for duration,
// anchored at the region's start.
func FreeSlots(window models.Window, busy []models.Interval, duration time.Duration) []models.Slot {
	if duration <= 0 || duration > window.Length() {
		return nil
	}
	var slots []models.Slot
	for _, gap := range FreeRegions(window, busy) {
		if gap.Duration() < duration {
			continue
		}
		slots = append(slots, models.Slot{Start: gap.Start, End: gap.Start.Add(duration)})
	}
	return slots
}
