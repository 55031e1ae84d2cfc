package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"calbook/models"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleGateway talks to the Google Calendar v3 API.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleGateway builds a gateway. Production callers pass service-account
// credentials; tests pass an endpoint and no authentication.
func NewGoogleGateway(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleGateway, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleGateway{svc: svc, calendarID: calendarID}, nil
}

// ServiceAccountOptions returns the client options for a credentials file.
func ServiceAccountOptions(credentialsFile string) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	}
}

func (g *GoogleGateway) ListEvents(ctx context.Context, window models.Window, pageToken string) (models.EventPage, error) {
	call := g.svc.Events.List(g.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Do()
	if err != nil {
		return models.EventPage{}, mapGoogleError(err)
	}

	page := models.EventPage{
		BusySlots:     make([]models.BusySlot, 0, len(res.Items)),
		NextPageToken: res.NextPageToken,
		TimeZone:      res.TimeZone,
	}
	if page.TimeZone == "" {
		page.TimeZone = "UTC"
	}
	for _, item := range res.Items {
		summary := item.Summary
		if summary == "" {
			summary = defaultBusyText
		}
		page.BusySlots = append(page.BusySlots, models.BusySlot{
			Start:   toEventTime(item.Start).Value(),
			End:     toEventTime(item.End).Value(),
			Summary: summary,
		})
	}
	return page, nil
}

func (g *GoogleGateway) CreateEvent(ctx context.Context, req models.EventRequest, idempotencyKey string) (models.EventResponse, error) {
	event := &gcal.Event{
		Id:          idempotencyKey,
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       &gcal.EventDateTime{DateTime: req.StartTime, TimeZone: req.Timezone},
		End:         &gcal.EventDateTime{DateTime: req.EndTime, TimeZone: req.Timezone},
	}
	sendUpdates := "none"
	if emails := splitAttendees(req.AttendeeEmail); len(emails) > 0 {
		for _, email := range emails {
			event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
		}
		sendUpdates = "all"
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).SendUpdates(sendUpdates).Context(ctx).Do()
	if err != nil {
		// A conflict on our own id means an earlier attempt already succeeded.
		if idempotencyKey != "" && googleStatus(err) == http.StatusConflict {
			existing, getErr := g.svc.Events.Get(g.calendarID, idempotencyKey).Context(ctx).Do()
			if getErr == nil {
				return models.EventResponse{EventID: existing.Id, Status: statusScheduled, HTMLLink: existing.HtmlLink}, nil
			}
		}
		return models.EventResponse{}, mapGoogleError(err)
	}
	return models.EventResponse{EventID: created.Id, Status: statusScheduled, HTMLLink: created.HtmlLink}, nil
}

func (g *GoogleGateway) GetEvent(ctx context.Context, eventID string) (models.EventDetail, error) {
	ev, err := g.svc.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return models.EventDetail{}, mapGoogleError(err)
	}
	detail := models.EventDetail{
		ID:        ev.Id,
		Summary:   ev.Summary,
		Start:     toEventTime(ev.Start),
		End:       toEventTime(ev.End),
		Status:    ev.Status,
		Attendees: make([]models.Attendee, 0, len(ev.Attendees)),
		HTMLLink:  ev.HtmlLink,
	}
	for _, a := range ev.Attendees {
		detail.Attendees = append(detail.Attendees, models.Attendee{Email: a.Email, ResponseStatus: a.ResponseStatus})
	}
	return detail, nil
}

func (g *GoogleGateway) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).SendUpdates("all").Context(ctx).Do(); err != nil {
		return mapGoogleError(err)
	}
	return nil
}

func (g *GoogleGateway) Ping(ctx context.Context) error {
	if _, err := g.svc.Calendars.Get(g.calendarID).Context(ctx).Do(); err != nil {
		return mapGoogleError(err)
	}
	return nil
}

func toEventTime(t *gcal.EventDateTime) models.EventTime {
	if t == nil {
		return models.EventTime{}
	}
	return models.EventTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}

func googleStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func mapGoogleError(err error) error {
	switch googleStatus(err) {
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %v", ErrEventNotFound, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return err
}
