package sessionRepo

import (
	"context"

	"calbook/models"
)

// SessionStore persists booking sessions keyed by conversation id. Get
// returns (nil, nil) when no session exists.
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (*models.BookingSession, error)
	Save(ctx context.Context, session *models.BookingSession) error
	Delete(ctx context.Context, conversationID string) error
	Ping(ctx context.Context) error
}
