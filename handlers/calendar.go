package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"calbook/models"
	"calbook/services/availability"
	"calbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultDurationMinutes  = 30
	defaultIncrementMinutes = 15
)

// CalendarAPI is what the calendar endpoints need from the service layer.
type CalendarAPI interface {
	Location() *time.Location
	Availability(ctx context.Context, window models.Window, pageToken string) (models.EventPage, error)
	FreeSlots(ctx context.Context, window models.Window, duration time.Duration) ([]models.Slot, error)
	SuggestSlots(ctx context.Context, window models.Window, params models.SuggestionParams) ([]models.Slot, error)
	CreateEvent(ctx context.Context, req models.EventRequest, conversationID string) (models.EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (models.EventDetail, error)
	CancelEvent(ctx context.Context, eventID string) (models.CancelResponse, error)
}

type CalendarHandler struct {
	svc CalendarAPI
}

func NewCalendarHandler(svc CalendarAPI) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// CreateEvent handles POST /events.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Debug("invalid event payload", zap.Error(err))
		utils.RespondError(c, utils.NewValidationError("body", "summary, start_time and end_time are required"))
		return
	}
	resp, err := h.svc.CreateEvent(c.Request.Context(), req, "")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Availability handles GET /availability.
func (h *CalendarHandler) Availability(c *gin.Context) {
	window, err := h.window(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page, err := h.svc.Availability(c.Request.Context(), window, c.Query("page_token"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	resp := models.AvailabilityResponse{
		BusySlots:     page.BusySlots,
		NextPageToken: page.NextPageToken,
		TimeZone:      page.TimeZone,
	}

	raw := c.Query("duration_minutes")
	if raw == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("duration_minutes", "duration_minutes must be an integer"))
		return
	}
	duration, err := availability.Minutes("duration_minutes", minutes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	slots, err := h.svc.FreeSlots(c.Request.Context(), window, duration)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AvailabilityWithFreeSlots{
		AvailabilityResponse: resp,
		FreeSlots:            toSuggested(slots, minutes),
	})
}

// SuggestSlots handles GET /suggest-slots.
func (h *CalendarHandler) SuggestSlots(c *gin.Context) {
	window, err := h.window(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	duration, err := intQuery(c, "duration_minutes", defaultDurationMinutes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	increment, err := intQuery(c, "increment_minutes", defaultIncrementMinutes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	params, err := availability.NewParams(duration, increment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	slots, err := h.svc.SuggestSlots(c.Request.Context(), window, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuggestionsResponse{Suggestions: toSuggested(slots, duration)})
}

// GetEvent handles GET /events/:event_id.
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	detail, err := h.svc.GetEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelEvent handles DELETE /events/:event_id.
func (h *CalendarHandler) CancelEvent(c *gin.Context) {
	resp, err := h.svc.CancelEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalendarHandler) window(c *gin.Context) (models.Window, error) {
	loc := h.svc.Location()
	start, err := availability.ParseInstant("start_time", c.Query("start_time"), loc)
	if err != nil {
		return models.Window{}, err
	}
	end, err := availability.ParseInstant("end_time", c.Query("end_time"), loc)
	if err != nil {
		return models.Window{}, err
	}
	return availability.NewWindow(start, end)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.NewValidationError(name, name+" must be an integer")
	}
	return n, nil
}

func toSuggested(slots []models.Slot, minutes int) []models.SuggestedSlot {
	out := make([]models.SuggestedSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, models.SuggestedSlot{
			Start:           s.Start.Format(time.RFC3339),
			End:             s.End.Format(time.RFC3339),
			DurationMinutes: minutes,
		})
	}
	return out
}
