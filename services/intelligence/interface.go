package ai

import (
	"context"
	"time"

	"calbook/models"
	"calbook/services/booking"
)

// TurnInput is one chat turn after transport decoding.
type TurnInput struct {
	ConversationID string
	Text           string
	Action         models.TurnAction
	Field          models.BookingField
	Now            time.Time
}

// TurnResult is the responder's answer for a turn.
type TurnResult struct {
	booking.Outcome
	LLMUsed bool
}

// Responder answers a chat turn. Implementations share the booking state
// machine and differ only in how idle, non-booking input is answered.
type Responder interface {
	Respond(ctx context.Context, session *models.BookingSession, in TurnInput) (*models.BookingSession, TurnResult, error)
	Name() string
}
