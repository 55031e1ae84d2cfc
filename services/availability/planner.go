package availability

import (
	"time"

	"calbook/models"
)

// Suggest scans forward from window.Start in steps of increment and returns
// every candidate [t, t+duration) that conflicts with no busy interval.
//
// Busy intervals are checked one by one in caller order. On the first
// conflict the cursor jumps to that interval's end and the new cursor is
// re-checked from scratch; no increment is applied on that pass. The cursor
// strictly increases on every pass, so the loop terminates.
func Suggest(window models.Window, busy []models.Interval, duration, increment time.Duration) []models.Slot {
	if duration <= 0 || increment <= 0 {
		return nil
	}
	var slots []models.Slot
	cursor := window.Start
	for !cursor.Add(duration).After(window.End) {
		candidate := models.Interval{Start: cursor, End: cursor.Add(duration)}
		if blocker, ok := firstConflict(candidate, busy); ok {
			cursor = blocker.End
			continue
		}
		slots = append(slots, models.Slot{Start: candidate.Start, End: candidate.End})
		cursor = cursor.Add(increment)
	}
	return slots
}

func firstConflict(candidate models.Interval, busy []models.Interval) (models.Interval, bool) {
	for _, iv := range busy {
		if candidate.Conflicts(iv) {
			return iv, true
		}
	}
	return models.Interval{}, false
}
