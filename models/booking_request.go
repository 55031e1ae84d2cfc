package models

import "time"

// BookingRequest is the normalized payload produced when a session reaches Ready.
type BookingRequest struct {
	Summary       string        `json:"summary"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	AttendeeEmail string        `json:"attendee_email,omitempty"`
	Timezone      string        `json:"timezone"`
	Duration      time.Duration `json:"-"`
	// Degraded lists the fields that were resolved through a fallback default.
	Degraded []BookingField `json:"degraded,omitempty"`
}

// EventRequest converts the booking into the gateway create payload.
func (r BookingRequest) EventRequest() EventRequest {
	return EventRequest{
		Summary:       r.Summary,
		StartTime:     r.Start.Format(time.RFC3339),
		EndTime:       r.End.Format(time.RFC3339),
		AttendeeEmail: r.AttendeeEmail,
		Timezone:      r.Timezone,
	}
}
