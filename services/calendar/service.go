package calendar

import (
	"context"
	"errors"
	"strings"
	"time"

	recordsRepo "calbook/database/repository/records"
	"calbook/models"
	"calbook/services/availability"
	"calbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	// maxBusyPages bounds how many provider pages one computation walks.
	maxBusyPages = 10
)

// Options tunes the service. Zero values disable the cache and use a single
// attempt per call.
type Options struct {
	Retry     RetryPolicy
	CacheSize int
	CacheTTL  time.Duration
	Location  *time.Location
}

// CalendarService is the application-facing calendar API.
type CalendarService struct {
	gateway Gateway
	records recordsRepo.BookingRecordRepository
	cache   *availabilityCache
	retry   RetryPolicy
	loc     *time.Location
	logger  *zap.Logger
	newKey  func() string
}

func NewCalendarService(gateway Gateway, records recordsRepo.BookingRecordRepository, opts Options, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		gateway: gateway,
		records: records,
		cache:   newAvailabilityCache(opts.CacheSize, opts.CacheTTL),
		retry:   opts.Retry,
		loc:     loc,
		logger:  logger,
		newKey:  idempotencyKey,
	}
}

// idempotencyKey is a provider-safe event id (lowercase hex, no dashes).
func idempotencyKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Location is the default zone for naive timestamps.
func (s *CalendarService) Location() *time.Location { return s.loc }

// Availability returns one page of busy slots for window.
func (s *CalendarService) Availability(ctx context.Context, window models.Window, pageToken string) (models.EventPage, error) {
	if page, ok := s.cache.get(window, pageToken); ok {
		return page, nil
	}
	page, err := withRetry(ctx, s.retry, s.logger, "list_events", func(ctx context.Context) (models.EventPage, error) {
		return s.gateway.ListEvents(ctx, window, pageToken)
	})
	if err != nil {
		return models.EventPage{}, s.translate("list_events", "page", pageToken, err)
	}
	s.cache.add(window, pageToken, page)
	return page, nil
}

// BusyIntervals walks every page of window and converts busy slots into
// intervals, keeping provider order.
func (s *CalendarService) BusyIntervals(ctx context.Context, window models.Window) ([]models.Interval, error) {
	var (
		busy  []models.Interval
		token string
	)
	for i := 0; i < maxBusyPages; i++ {
		page, err := s.Availability(ctx, window, token)
		if err != nil {
			return nil, err
		}
		for _, slot := range page.BusySlots {
			iv, ok := s.toInterval(slot)
			if !ok {
				s.logger.Warn("skipping busy slot with unreadable bounds",
					zap.String("start", slot.Start),
					zap.String("end", slot.End))
				continue
			}
			busy = append(busy, iv)
		}
		if page.NextPageToken == "" {
			return busy, nil
		}
		token = page.NextPageToken
	}
	s.logger.Warn("busy interval listing truncated", zap.Int("pages", maxBusyPages))
	return busy, nil
}

// FreeSlots reports one slot per free gap that fits duration.
func (s *CalendarService) FreeSlots(ctx context.Context, window models.Window, duration time.Duration) ([]models.Slot, error) {
	busy, err := s.BusyIntervals(ctx, window)
	if err != nil {
		return nil, err
	}
	return availability.FreeSlots(window, busy, duration), nil
}

// SuggestSlots enumerates candidate slots stepping by the increment.
func (s *CalendarService) SuggestSlots(ctx context.Context, window models.Window, params models.SuggestionParams) ([]models.Slot, error) {
	busy, err := s.BusyIntervals(ctx, window)
	if err != nil {
		return nil, err
	}
	return availability.Suggest(window, busy, params.Duration, params.Increment), nil
}

// CreateEvent validates and books an event. conversationID is recorded when
// the booking came from chat.
func (s *CalendarService) CreateEvent(ctx context.Context, req models.EventRequest, conversationID string) (models.EventResponse, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return models.EventResponse{}, utils.NewValidationError("summary", "summary is required")
	}
	loc := s.loc
	if req.Timezone == "" {
		req.Timezone = s.loc.String()
	} else if tz, err := time.LoadLocation(req.Timezone); err == nil {
		loc = tz
	} else {
		return models.EventResponse{}, utils.NewValidationError("timezone", "unknown time zone")
	}
	start, err := availability.ParseInstant("start_time", req.StartTime, loc)
	if err != nil {
		return models.EventResponse{}, err
	}
	end, err := availability.ParseInstant("end_time", req.EndTime, loc)
	if err != nil {
		return models.EventResponse{}, err
	}
	if !start.Before(end) {
		return models.EventResponse{}, utils.NewValidationError("end_time", "end_time must be after start_time")
	}
	req.StartTime = start.Format(time.RFC3339)
	req.EndTime = end.Format(time.RFC3339)

	key := req.IdempotencyKey
	if key == "" {
		key = s.newKey()
	}
	resp, err := withRetry(ctx, s.retry, s.logger, "create_event", func(ctx context.Context) (models.EventResponse, error) {
		return s.gateway.CreateEvent(ctx, req, key)
	})
	if err != nil {
		return models.EventResponse{}, s.translate("create_event", "event", key, err)
	}
	s.cache.purge()

	record := models.BookingRecord{
		EventID:        resp.EventID,
		ConversationID: conversationID,
		Summary:        req.Summary,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		AttendeeEmail:  req.AttendeeEmail,
	}
	if err := s.records.Create(ctx, record); err != nil {
		s.logger.Error("failed to record booking", zap.String("eventID", resp.EventID), zap.Error(err))
	}
	s.logger.Info("event created", zap.String("eventID", resp.EventID), zap.String("start", req.StartTime))
	return resp, nil
}

func (s *CalendarService) GetEvent(ctx context.Context, eventID string) (models.EventDetail, error) {
	detail, err := withRetry(ctx, s.retry, s.logger, "get_event", func(ctx context.Context) (models.EventDetail, error) {
		return s.gateway.GetEvent(ctx, eventID)
	})
	if err != nil {
		return models.EventDetail{}, s.translate("get_event", "event", eventID, err)
	}
	return detail, nil
}

func (s *CalendarService) CancelEvent(ctx context.Context, eventID string) (models.CancelResponse, error) {
	_, err := withRetry(ctx, s.retry, s.logger, "delete_event", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.gateway.DeleteEvent(ctx, eventID)
	})
	if err != nil {
		return models.CancelResponse{}, s.translate("delete_event", "event", eventID, err)
	}
	s.cache.purge()
	if err := s.records.MarkCancelled(ctx, eventID); err != nil && !errors.Is(err, recordsRepo.ErrRecordNotFound) {
		s.logger.Error("failed to record cancellation", zap.String("eventID", eventID), zap.Error(err))
	}
	return models.CancelResponse{Status: "cancelled", EventID: eventID}, nil
}

// Health probes the provider once within the attempt timeout.
func (s *CalendarService) Health(ctx context.Context) error {
	if s.retry.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.retry.AttemptTimeout)
		defer cancel()
	}
	if err := s.gateway.Ping(ctx); err != nil {
		return utils.NewUpstreamError("ping", err)
	}
	return nil
}

func (s *CalendarService) translate(op, what, id string, err error) error {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return utils.NewNotFoundError(what, id)
	case errors.Is(err, ErrInvalidRequest):
		s.logger.Warn("calendar provider rejected request", zap.String("op", op), zap.Error(err))
		return utils.NewValidationError(what, "request rejected by calendar provider")
	}
	s.logger.Error("calendar call failed", zap.String("op", op), zap.Error(err))
	return utils.NewUpstreamError(op, err)
}

// toInterval reads timed or all-day bounds. All-day dates are midnight in
// the service location.
func (s *CalendarService) toInterval(slot models.BusySlot) (models.Interval, bool) {
	start, ok := s.parseBound(slot.Start)
	if !ok {
		return models.Interval{}, false
	}
	end, ok := s.parseBound(slot.End)
	if !ok || !start.Before(end) {
		return models.Interval{}, false
	}
	return models.Interval{Start: start, End: end}, true
}

func (s *CalendarService) parseBound(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(dateLayout, raw, s.loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
