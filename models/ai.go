package models

// TurnAction is an explicit structured action sent alongside (or instead of) text.
type TurnAction string

const (
	ActionNone    TurnAction = ""
	ActionConfirm TurnAction = "confirm"
	ActionEdit    TurnAction = "edit"
	ActionCancel  TurnAction = "cancel"
)

// ChatRequest is the payload coming from the chat front end into /chat.
type ChatRequest struct {
	ConversationID string       `json:"conversation_id"`
	Message        string       `json:"message"`
	Action         TurnAction   `json:"action,omitempty"`
	Field          BookingField `json:"field,omitempty"` // optional target for ActionEdit
}

// BookingDetails is the human-facing view of an assembled booking.
type BookingDetails struct {
	Summary       string `json:"summary"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Duration      string `json:"duration"`
	AttendeeEmail string `json:"attendee_email"`
	Timezone      string `json:"timezone"`
}

// ChatResponse is what the chat handler returns to the front end.
type ChatResponse struct {
	ConversationID    string          `json:"conversation_id"`
	Output            string          `json:"output"`
	State             SessionPhase    `json:"state"`
	NeedsFollowup     bool            `json:"needs_followup"`
	NeedsConfirmation bool            `json:"needs_confirmation"`
	BookingDetails    *BookingDetails `json:"booking_details,omitempty"`
	Event             *EventResponse  `json:"event,omitempty"`
	LLMUsed           bool            `json:"llm_used"`
	ErrorCode         string          `json:"error_code,omitempty"`
}
