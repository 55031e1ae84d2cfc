package models

import "time"

// BookingField is one of the fixed fields collected during a booking conversation.
type BookingField string

const (
	FieldMeetingTitle BookingField = "meeting_title"
	FieldDate         BookingField = "date"
	FieldTime         BookingField = "time"
	FieldDuration     BookingField = "duration"
	FieldAttendees    BookingField = "attendees"
)

// SessionPhase is the state of a booking session. Idle is represented by the
// absence of a session record.
type SessionPhase string

const (
	PhaseIdle       SessionPhase = "idle"
	PhaseCollecting SessionPhase = "collecting"
	PhaseReady      SessionPhase = "ready"
	PhaseTerminal   SessionPhase = "terminal"
)

// BookingSession holds per-conversation progress through field collection.
type BookingSession struct {
	ID        string                  `json:"id"`
	Phase     SessionPhase            `json:"phase"`
	Step      int                     `json:"step"` // 1-based index into the field list while collecting
	Collected map[BookingField]string `json:"collected"`
	// EditField is set when a single field is being re-entered from Ready.
	EditField BookingField    `json:"editField,omitempty"`
	Pending   *BookingRequest `json:"pending,omitempty"`
	// BookingKey is minted when the session reaches Ready and sent as the
	// event's idempotency key, so confirming twice creates one event.
	BookingKey string    `json:"bookingKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can derive a new state without
// mutating the stored record.
func (s *BookingSession) Clone() *BookingSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Collected = make(map[BookingField]string, len(s.Collected))
	for k, v := range s.Collected {
		out.Collected[k] = v
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return &out
}
