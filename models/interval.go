package models

import "time"

// Interval is a half-open busy range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Conflicts reports whether the two half-open intervals overlap.
func (iv Interval) Conflicts(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Window is the query range for availability and suggestions.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Length returns the window span.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Interval converts the window into an interval value.
func (w Window) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// SuggestionParams controls slot enumeration.
type SuggestionParams struct {
	Duration  time.Duration `json:"duration"`
	Increment time.Duration `json:"increment"`
}

// Slot is a bookable range. End is always Start + requested duration.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Interval converts the slot into an interval value.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}
