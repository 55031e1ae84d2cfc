// Package calendar wraps the external calendar provider behind a Gateway
// and layers retries, caching and booking records on top of it.
package calendar

import (
	"context"
	"errors"
	"strings"

	"calbook/models"
)

var (
	// ErrEventNotFound is returned when the provider has no such event.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidRequest is returned when the provider rejects the payload.
	ErrInvalidRequest = errors.New("request rejected by calendar provider")
)

// Gateway is the narrow surface the service needs from a calendar provider.
type Gateway interface {
	ListEvents(ctx context.Context, window models.Window, pageToken string) (models.EventPage, error)
	CreateEvent(ctx context.Context, req models.EventRequest, idempotencyKey string) (models.EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (models.EventDetail, error)
	DeleteEvent(ctx context.Context, eventID string) error
	Ping(ctx context.Context) error
}

const (
	statusScheduled = "scheduled"
	defaultBusyText = "Busy"
)

// splitAttendees turns "a@x, b@y" into trimmed addresses.
func splitAttendees(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if email := strings.TrimSpace(part); email != "" {
			out = append(out, email)
		}
	}
	return out
}
