package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"calbook/config"
	recordsRepo "calbook/database/repository/records"
	sessionRepo "calbook/database/repository/session"
	"calbook/models"
	"calbook/services/booking"
	"calbook/services/calendar"
	"calbook/utils"

	"go.uber.org/zap"
)

var clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeBooker struct {
	err   error
	calls int
	last  models.EventRequest
}

func (f *fakeBooker) CreateEvent(_ context.Context, req models.EventRequest, _ string) (models.EventResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return models.EventResponse{}, f.err
	}
	return models.EventResponse{EventID: "evt1", Status: "scheduled", HTMLLink: "https://calendar.example/evt1"}, nil
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f fakeGenerator) GenerateContent(context.Context, string) (string, error) {
	return f.reply, f.err
}

// blockingGenerator never answers before its context ends.
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// flakyDeleteStore fails the first Delete it sees.
type flakyDeleteStore struct {
	sessionRepo.SessionStore
	failed bool
}

func (f *flakyDeleteStore) Delete(ctx context.Context, id string) error {
	if !f.failed {
		f.failed = true
		return errors.New("redis down")
	}
	return f.SessionStore.Delete(ctx, id)
}

func newMachine() *booking.Machine {
	return booking.NewMachine(booking.NewAssembler(booking.NewNaturalResolver(time.UTC), time.UTC, zap.NewNop()))
}

func newConversation(booker EventBooker) (*ConversationService, *sessionRepo.MemorySessionStore) {
	store := sessionRepo.NewMemorySessionStore(time.Hour)
	svc := NewConversationService(NewRuleBasedResponder(newMachine()), store, booker, zap.NewNop()).
		WithClock(func() time.Time { return clock })
	return svc, store
}

func say(t *testing.T, svc *ConversationService, id string, messages ...string) *models.ChatResponse {
	t.Helper()
	var resp *models.ChatResponse
	for _, msg := range messages {
		var err error
		resp, err = svc.HandleTurn(context.Background(), models.ChatRequest{ConversationID: id, Message: msg})
		if err != nil {
			t.Fatalf("turn %q: %v", msg, err)
		}
	}
	return resp
}

func TestConversationBooksOnConfirm(t *testing.T) {
	booker := &fakeBooker{}
	svc, store := newConversation(booker)

	resp := say(t, svc, "c1", "book a meeting", "Sync", "2025-03-11", "14:00", "30 mins", "a@example.com")
	if resp.State != models.PhaseReady || !resp.NeedsConfirmation || resp.BookingDetails == nil {
		t.Fatalf("expected ready response, got %+v", resp)
	}
	if resp.BookingDetails.StartTime != "2025-03-11T14:00:00Z" || resp.BookingDetails.EndTime != "2025-03-11T14:30:00Z" {
		t.Fatalf("unexpected details %+v", resp.BookingDetails)
	}

	resp = say(t, svc, "c1", "yes")
	if resp.Event == nil || resp.Event.EventID != "evt1" {
		t.Fatalf("expected booked event, got %+v", resp)
	}
	if booker.calls != 1 || booker.last.AttendeeEmail != "a@example.com" {
		t.Fatalf("unexpected dispatch %+v", booker.last)
	}
	if s, _ := store.Get(context.Background(), "c1"); s != nil {
		t.Fatalf("session should be removed after booking, got %+v", s)
	}
}

func TestConversationKeepsSessionWhenDispatchFails(t *testing.T) {
	booker := &fakeBooker{err: utils.NewUpstreamError("create_event", errors.New("boom"))}
	svc, store := newConversation(booker)

	say(t, svc, "c1", "book", "Sync", "2025-03-11", "14:00", "1 hour", "")
	before, _ := store.Get(context.Background(), "c1")

	resp, err := svc.HandleTurn(context.Background(), models.ChatRequest{ConversationID: "c1", Action: models.ActionConfirm})
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if resp.ErrorCode != "upstream_unavailable" || resp.Output != bookingFailedText {
		t.Fatalf("expected degraded response, got %+v", resp)
	}
	if strings.Contains(resp.Output, "boom") {
		t.Fatalf("upstream error text leaked: %q", resp.Output)
	}
	after, _ := store.Get(context.Background(), "c1")
	if after == nil || after.Phase != models.PhaseReady || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("session should be unchanged, got %+v", after)
	}
}

func TestConversationAssignsIDAndAnswersSmallTalk(t *testing.T) {
	svc, _ := newConversation(&fakeBooker{})
	resp, err := svc.HandleTurn(context.Background(), models.ChatRequest{Message: "am I free on Friday?"})
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if resp.ConversationID == "" || resp.State != models.PhaseIdle {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Output != availabilityGuidance || resp.LLMUsed {
		t.Fatalf("expected availability guidance, got %q", resp.Output)
	}
}

func TestConversationRejectsUnknownAction(t *testing.T) {
	svc, _ := newConversation(&fakeBooker{})
	_, err := svc.HandleTurn(context.Background(), models.ChatRequest{ConversationID: "c1", Message: "x", Action: "launch"})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
}

func TestConversationCancel(t *testing.T) {
	svc, store := newConversation(&fakeBooker{})
	say(t, svc, "c1", "book", "Sync")
	if err := svc.Cancel(context.Background(), "c1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s, _ := store.Get(context.Background(), "c1"); s != nil {
		t.Fatalf("expected no session, got %+v", s)
	}
}

func TestLanguageModelResponder(t *testing.T) {
	r := NewLanguageModelResponder(newMachine(), fakeGenerator{reply: "Hi! I can book meetings."}, time.Second, zap.NewNop())
	_, res, err := r.Respond(context.Background(), nil, TurnInput{ConversationID: "c1", Text: "hello", Now: clock})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !res.LLMUsed || res.Text != "Hi! I can book meetings." {
		t.Fatalf("unexpected result %+v", res)
	}

	next, res, _ := r.Respond(context.Background(), nil, TurnInput{ConversationID: "c1", Text: "schedule a meeting", Now: clock})
	if res.LLMUsed || next == nil || next.Phase != models.PhaseCollecting {
		t.Fatalf("booking intent should go to the state machine, got %+v", res)
	}
}

func TestLanguageModelResponderFallsBack(t *testing.T) {
	r := NewLanguageModelResponder(newMachine(), fakeGenerator{err: ErrEmptyCompletion}, time.Second, zap.NewNop())
	_, res, err := r.Respond(context.Background(), nil, TurnInput{Text: "what can you do?", Now: clock})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.LLMUsed || res.Text != helpText {
		t.Fatalf("expected rule-based help text, got %+v", res)
	}
}

func TestNewResponderSelection(t *testing.T) {
	m := newMachine()
	gen := fakeGenerator{reply: "ok"}

	r, err := NewResponder(config.Config{GeminiAPIKey: "k"}, m, gen, nil)
	if err != nil || r.Name() != "language_model" {
		t.Fatalf("expected language model responder, got %v, %v", r, err)
	}
	r, err = NewResponder(config.Config{RuleBasedFallbackEnabled: true}, m, nil, nil)
	if err != nil || r.Name() != "rule_based" {
		t.Fatalf("expected rule based responder, got %v, %v", r, err)
	}
	if _, err := NewResponder(config.Config{}, m, nil, nil); !errors.Is(err, config.ErrNoResponder) {
		t.Fatalf("expected ErrNoResponder, got %v", err)
	}
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()
	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("c1")
			n := inside.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Fatalf("expected one holder at a time, saw %d", peak.Load())
	}
	if len(locks.locks) != 0 {
		t.Fatalf("expected idle keys to be released, got %d", len(locks.locks))
	}
}

func TestConversationConfirmRetryBooksOnce(t *testing.T) {
	calSvc := calendar.NewCalendarService(calendar.NewMemoryGateway(0, "UTC"), recordsRepo.NewMemoryRecordRepo(),
		calendar.Options{Retry: calendar.RetryPolicy{MaxAttempts: 1}}, zap.NewNop())
	store := &flakyDeleteStore{SessionStore: sessionRepo.NewMemorySessionStore(time.Hour)}
	svc := NewConversationService(NewRuleBasedResponder(newMachine()), store, calSvc, zap.NewNop()).
		WithClock(func() time.Time { return clock })

	say(t, svc, "c1", "book", "Sync", "2025-03-11", "14:00", "1 hour", "")
	if _, err := svc.HandleTurn(context.Background(), models.ChatRequest{ConversationID: "c1", Message: "yes"}); err == nil {
		t.Fatal("expected session store error on first confirm")
	}
	stale, _ := store.Get(context.Background(), "c1")
	if stale == nil || stale.Phase != models.PhaseReady || stale.BookingKey == "" {
		t.Fatalf("expected ready session with booking key, got %+v", stale)
	}

	resp := say(t, svc, "c1", "yes")
	if resp.Event == nil || resp.Event.EventID != stale.BookingKey {
		t.Fatalf("expected event %s, got %+v", stale.BookingKey, resp.Event)
	}
	window := models.Window{Start: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)}
	busy, err := calSvc.BusyIntervals(context.Background(), window)
	if err != nil {
		t.Fatalf("busy: %v", err)
	}
	if len(busy) != 1 {
		t.Fatalf("expected one event after retried confirm, got %d", len(busy))
	}
}

func TestConversationEditRenewsBookingKey(t *testing.T) {
	svc, store := newConversation(&fakeBooker{})
	say(t, svc, "c1", "book", "Sync", "2025-03-11", "14:00", "1 hour", "")
	first, _ := store.Get(context.Background(), "c1")
	if first == nil || first.BookingKey == "" {
		t.Fatalf("expected booking key on ready session, got %+v", first)
	}

	say(t, svc, "c1", "ok then")
	same, _ := store.Get(context.Background(), "c1")
	if same.BookingKey != first.BookingKey {
		t.Fatalf("key should survive a re-shown summary: %s vs %s", same.BookingKey, first.BookingKey)
	}

	say(t, svc, "c1", "edit duration")
	editing, _ := store.Get(context.Background(), "c1")
	if editing.Phase != models.PhaseCollecting || editing.BookingKey != "" {
		t.Fatalf("expected key dropped while editing, got %+v", editing)
	}
	say(t, svc, "c1", "30 mins")
	renewed, _ := store.Get(context.Background(), "c1")
	if renewed.Phase != models.PhaseReady || renewed.BookingKey == "" || renewed.BookingKey == first.BookingKey {
		t.Fatalf("expected a new key after edit, got %+v", renewed)
	}
}

func TestConversationBoundsLanguageModelCall(t *testing.T) {
	store := sessionRepo.NewMemorySessionStore(time.Hour)
	responder := NewLanguageModelResponder(newMachine(), blockingGenerator{}, 20*time.Millisecond, zap.NewNop())
	svc := NewConversationService(responder, store, &fakeBooker{}, zap.NewNop()).
		WithClock(func() time.Time { return clock })

	done := make(chan *models.ChatResponse, 1)
	go func() {
		resp, err := svc.HandleTurn(context.Background(), models.ChatRequest{ConversationID: "c1", Message: "hello"})
		if err != nil {
			t.Errorf("turn: %v", err)
		}
		done <- resp
	}()
	select {
	case resp := <-done:
		if resp == nil || resp.LLMUsed || resp.Output != helpText {
			t.Fatalf("expected rule-based answer after timeout, got %+v", resp)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("turn still blocked on the language model")
	}

	// the conversation lock must be free again
	resp := say(t, svc, "c1", "book a meeting")
	if resp.State != models.PhaseCollecting {
		t.Fatalf("expected collecting, got %+v", resp)
	}
}
