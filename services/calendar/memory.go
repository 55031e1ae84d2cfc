package calendar

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"calbook/models"

	"github.com/google/uuid"
)

const defaultMemoryPageSize = 50

type memoryEvent struct {
	detail   models.EventDetail
	start    time.Time
	end      time.Time
	canceled bool
}

// MemoryGateway is an in-process calendar used when CALENDAR_PROVIDER=memory.
type MemoryGateway struct {
	mu       sync.RWMutex
	events   map[string]*memoryEvent
	pageSize int
	timeZone string
}

func NewMemoryGateway(pageSize int, timeZone string) *MemoryGateway {
	if pageSize <= 0 {
		pageSize = defaultMemoryPageSize
	}
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &MemoryGateway{events: make(map[string]*memoryEvent), pageSize: pageSize, timeZone: timeZone}
}

// ListEvents returns events overlapping window ordered by start. Page tokens
// are offsets into that ordering.
func (m *MemoryGateway) ListEvents(_ context.Context, window models.Window, pageToken string) (models.EventPage, error) {
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return models.EventPage{}, fmt.Errorf("%w: bad page token %q", ErrInvalidRequest, pageToken)
		}
		offset = n
	}

	m.mu.RLock()
	var matched []*memoryEvent
	for _, ev := range m.events {
		if ev.canceled {
			continue
		}
		if ev.start.Before(window.End) && window.Start.Before(ev.end) {
			matched = append(matched, ev)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].start.Equal(matched[j].start) {
			return matched[i].detail.ID < matched[j].detail.ID
		}
		return matched[i].start.Before(matched[j].start)
	})

	page := models.EventPage{BusySlots: []models.BusySlot{}, TimeZone: m.timeZone}
	if offset >= len(matched) {
		return page, nil
	}
	end := offset + m.pageSize
	if end < len(matched) {
		page.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(matched)
	}
	for _, ev := range matched[offset:end] {
		summary := ev.detail.Summary
		if summary == "" {
			summary = defaultBusyText
		}
		page.BusySlots = append(page.BusySlots, models.BusySlot{
			Start:   ev.detail.Start.Value(),
			End:     ev.detail.End.Value(),
			Summary: summary,
		})
	}
	return page, nil
}

// CreateEvent stores a timed event. Reusing an idempotency key returns the
// event created with it.
func (m *MemoryGateway) CreateEvent(_ context.Context, req models.EventRequest, idempotencyKey string) (models.EventResponse, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return models.EventResponse{}, fmt.Errorf("%w: start_time: %v", ErrInvalidRequest, err)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return models.EventResponse{}, fmt.Errorf("%w: end_time: %v", ErrInvalidRequest, err)
	}

	id := idempotencyKey
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.events[id]; ok {
		return models.EventResponse{EventID: id, Status: statusScheduled, HTMLLink: existing.detail.HTMLLink}, nil
	}

	detail := models.EventDetail{
		ID:        id,
		Summary:   req.Summary,
		Start:     models.EventTime{DateTime: req.StartTime, TimeZone: req.Timezone},
		End:       models.EventTime{DateTime: req.EndTime, TimeZone: req.Timezone},
		Status:    "confirmed",
		Attendees: []models.Attendee{},
		HTMLLink:  "memory://events/" + id,
	}
	for _, email := range splitAttendees(req.AttendeeEmail) {
		detail.Attendees = append(detail.Attendees, models.Attendee{Email: email, ResponseStatus: "needsAction"})
	}
	m.events[id] = &memoryEvent{detail: detail, start: start, end: end}
	return models.EventResponse{EventID: id, Status: statusScheduled, HTMLLink: detail.HTMLLink}, nil
}

// AddAllDay seeds an all-day event spanning [from, to) dates.
func (m *MemoryGateway) AddAllDay(id, summary string, from, to time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id] = &memoryEvent{
		detail: models.EventDetail{
			ID:        id,
			Summary:   summary,
			Start:     models.EventTime{Date: from.Format(dateLayout)},
			End:       models.EventTime{Date: to.Format(dateLayout)},
			Status:    "confirmed",
			Attendees: []models.Attendee{},
		},
		start: from,
		end:   to,
	}
}

func (m *MemoryGateway) GetEvent(_ context.Context, eventID string) (models.EventDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[eventID]
	if !ok {
		return models.EventDetail{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	detail := ev.detail
	if ev.canceled {
		detail.Status = "cancelled"
	}
	return detail, nil
}

// DeleteEvent marks the event cancelled. Deleting twice reports not found,
// matching the provider's 410 on an already deleted event.
func (m *MemoryGateway) DeleteEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok || ev.canceled {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	ev.canceled = true
	return nil
}

func (m *MemoryGateway) Ping(context.Context) error { return nil }
