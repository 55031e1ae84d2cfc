package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sessionRepo "calbook/database/repository/session"
	"calbook/models"
	"calbook/services/booking"
	"calbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bookingFailedText = "Sorry, I couldn't book your meeting. Please try again later."

// EventBooker creates the calendar event for a confirmed booking.
type EventBooker interface {
	CreateEvent(ctx context.Context, req models.EventRequest, conversationID string) (models.EventResponse, error)
}

// ConversationService runs chat turns: one turn at a time per conversation,
// one session write or delete per turn.
type ConversationService struct {
	responder Responder
	sessions  sessionRepo.SessionStore
	booker    EventBooker
	locks     *keyedMutex
	now       func() time.Time
	logger    *zap.Logger
}

func NewConversationService(responder Responder, sessions sessionRepo.SessionStore, booker EventBooker, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		responder: responder,
		sessions:  sessions,
		booker:    booker,
		locks:     newKeyedMutex(),
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source used to resolve relative dates.
func (s *ConversationService) WithClock(now func() time.Time) *ConversationService {
	s.now = now
	return s
}

func (s *ConversationService) HandleTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	switch req.Action {
	case models.ActionNone, models.ActionConfirm, models.ActionEdit, models.ActionCancel:
	default:
		return nil, utils.NewValidationError("action", "action must be confirm, edit or cancel")
	}

	unlock := s.locks.Lock(conversationID)
	defer unlock()

	session, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Error("failed to load booking session", zap.String("conversationID", conversationID), zap.Error(err))
		return nil, utils.NewUpstreamError("session store", err)
	}

	next, result, err := s.responder.Respond(ctx, session, TurnInput{
		ConversationID: conversationID,
		Text:           req.Message,
		Action:         req.Action,
		Field:          req.Field,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}

	resp := &models.ChatResponse{
		ConversationID:    conversationID,
		Output:            result.Text,
		State:             result.Phase,
		NeedsFollowup:     result.NeedsFollowup,
		NeedsConfirmation: result.NeedsConfirmation,
		LLMUsed:           result.LLMUsed,
	}
	if result.Pending != nil {
		resp.BookingDetails = booking.Details(*result.Pending)
	}

	if result.Dispatch != nil {
		eventReq := result.Dispatch.EventRequest()
		if session != nil {
			eventReq.IdempotencyKey = session.BookingKey
		}
		event, err := s.booker.CreateEvent(ctx, eventReq, conversationID)
		if err != nil {
			// The stored session stays Ready so the user can confirm again.
			s.logger.Error("booking dispatch failed",
				zap.String("conversationID", conversationID),
				zap.Error(err))
			resp.Output = bookingFailedText
			resp.State = models.PhaseReady
			resp.NeedsConfirmation = true
			resp.ErrorCode = errorCode(err)
			return resp, nil
		}
		resp.Event = &event
		resp.Output = bookedText(event)
	}

	s.stampBookingKey(next)
	if err := s.persist(ctx, conversationID, session, next); err != nil {
		return nil, err
	}
	return resp, nil
}

// Cancel drops any session for the conversation.
func (s *ConversationService) Cancel(ctx context.Context, conversationID string) error {
	unlock := s.locks.Lock(conversationID)
	defer unlock()
	if err := s.sessions.Delete(ctx, conversationID); err != nil {
		return utils.NewUpstreamError("session store", err)
	}
	return nil
}

// Ping reports session store health.
func (s *ConversationService) Ping(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// stampBookingKey keeps one key per Ready booking. Leaving Ready drops it so
// an edited booking gets a new event.
func (s *ConversationService) stampBookingKey(next *models.BookingSession) {
	if next == nil {
		return
	}
	if next.Phase != models.PhaseReady {
		next.BookingKey = ""
		return
	}
	if next.BookingKey == "" {
		next.BookingKey = bookingKey()
	}
}

// bookingKey is a provider-safe event id (lowercase hex, no dashes).
func bookingKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *ConversationService) persist(ctx context.Context, conversationID string, prev, next *models.BookingSession) error {
	var err error
	switch {
	case next != nil:
		err = s.sessions.Save(ctx, next)
	case prev != nil:
		err = s.sessions.Delete(ctx, conversationID)
	}
	if err != nil {
		s.logger.Error("failed to store booking session", zap.String("conversationID", conversationID), zap.Error(err))
		return utils.NewUpstreamError("session store", err)
	}
	return nil
}

func bookedText(event models.EventResponse) string {
	text := fmt.Sprintf("Your meeting is booked (event %s).", event.EventID)
	if event.HTMLLink != "" {
		text += " " + event.HTMLLink
	}
	return text
}

func errorCode(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "upstream_unavailable"
}
