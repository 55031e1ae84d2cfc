package models

// EventRequest is the body of POST /events.
type EventRequest struct {
	Summary       string `json:"summary" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	EndTime       string `json:"end_time" binding:"required"`
	AttendeeEmail string `json:"attendee_email,omitempty"`
	Timezone      string `json:"timezone"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	// IdempotencyKey, when set, becomes the provider event id.
	IdempotencyKey string `json:"-"`
}

// EventResponse is returned after an event is created.
type EventResponse struct {
	EventID  string `json:"event_id"`
	Status   string `json:"status"`
	HTMLLink string `json:"html_link,omitempty"`
}

// EventTime mirrors the provider's start/end object: timed events carry
// DateTime, all-day events carry Date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Value returns DateTime when present, otherwise Date.
func (t EventTime) Value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Attendee is a single event attendee.
type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// EventDetail is the response of GET /events/{event_id}.
type EventDetail struct {
	ID        string     `json:"id"`
	Summary   string     `json:"summary"`
	Start     EventTime  `json:"start"`
	End       EventTime  `json:"end"`
	Status    string     `json:"status"`
	Attendees []Attendee `json:"attendees"`
	HTMLLink  string     `json:"htmlLink,omitempty"`
}

// BusySlot is a single busy entry in an availability page.
type BusySlot struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
}

// EventPage is one page of provider events reduced to busy slots.
type EventPage struct {
	BusySlots     []BusySlot `json:"busy_slots"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	TimeZone      string     `json:"time_zone"`
}

// SuggestedSlot is a single entry of GET /suggest-slots.
type SuggestedSlot struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// CancelResponse acknowledges DELETE /events/{event_id}.
type CancelResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}
