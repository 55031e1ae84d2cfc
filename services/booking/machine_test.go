package booking

import (
	"strings"
	"testing"
	"time"

	"calbook/models"

	"go.uber.org/zap"
)

var clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type stubResolver struct {
	at     time.Time
	ok     bool
	unread []string
}

func (s stubResolver) Resolve(string, time.Time) (Resolution, bool) {
	return Resolution{Time: s.at, Unread: s.unread}, s.ok
}

func newMachine() *Machine {
	return NewMachine(NewAssembler(NewNaturalResolver(time.UTC), time.UTC, zap.NewNop()))
}

func drive(t *testing.T, m *Machine, s *models.BookingSession, texts ...string) (*models.BookingSession, Outcome) {
	t.Helper()
	var out Outcome
	for _, text := range texts {
		s, out = m.Step(s, Turn{SessionID: "c1", Text: text, Now: clock})
	}
	return s, out
}

func TestIdleIgnoresSmallTalk(t *testing.T) {
	s, out := newMachine().Step(nil, Turn{SessionID: "c1", Text: "hello there", Now: clock})
	if s != nil {
		t.Fatalf("expected no session, got %+v", s)
	}
	if out.Handled {
		t.Fatalf("small talk should be left to the responder")
	}
}

func TestBookingIntentStartsCollection(t *testing.T) {
	s, out := newMachine().Step(nil, Turn{SessionID: "c1", Text: "Can you book a meeting?", Now: clock})
	if s == nil || s.Phase != models.PhaseCollecting || s.Step != 1 {
		t.Fatalf("unexpected session %+v", s)
	}
	if !strings.HasPrefix(out.Text, introText) || !strings.HasSuffix(out.Text, Prompt(1)) {
		t.Fatalf("unexpected prompt %q", out.Text)
	}
	if !out.NeedsFollowup || out.NeedsConfirmation {
		t.Fatalf("unexpected flags %+v", out)
	}
}

func TestFiveTurnFlowReachesReady(t *testing.T) {
	m := newMachine()
	s, out := drive(t, m, nil, "schedule a meeting", "Sync", "tomorrow", "2pm", "1 hour", "a@example.com")
	if s == nil || s.Phase != models.PhaseReady {
		t.Fatalf("expected ready session, got %+v", s)
	}
	if !out.NeedsConfirmation || out.NeedsFollowup {
		t.Fatalf("unexpected flags %+v", out)
	}
	req := out.Pending
	if req == nil {
		t.Fatalf("expected pending booking")
	}
	if got := req.End.Sub(req.Start); got != time.Hour {
		t.Fatalf("expected a one hour span, got %v", got)
	}
	y, mo, d := req.Start.Date()
	if y != 2025 || mo != time.March || d != 11 {
		t.Fatalf("expected start on 2025-03-11, got %v", req.Start)
	}
	if req.Summary != "Sync" || req.AttendeeEmail != "a@example.com" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Degraded) != 0 {
		t.Fatalf("unexpected degraded fields %v", req.Degraded)
	}
	if !strings.Contains(out.Text, "Sync") || !strings.Contains(out.Text, "1 hour") {
		t.Fatalf("summary missing details: %q", out.Text)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	m := newMachine()
	s, _ := drive(t, m, nil, "book", "Sync")
	before := s.Clone()
	_, _ = m.Step(s, Turn{Text: "tomorrow", Now: clock})
	if s.Step != before.Step || len(s.Collected) != len(before.Collected) {
		t.Fatalf("input session mutated: %+v", s)
	}
}

func TestCancelWhileCollecting(t *testing.T) {
	m := newMachine()
	s, _ := drive(t, m, nil, "book", "Sync")
	s, out := m.Step(s, Turn{Text: "Cancel", Now: clock})
	if s != nil {
		t.Fatalf("expected session to end, got %+v", s)
	}
	if out.Text != cancelledText || out.Phase != models.PhaseTerminal {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestCancelWordIsDataOnlyWhenNotExact(t *testing.T) {
	m := newMachine()
	s, _ := drive(t, m, nil, "book", "cancel the old sync")
	if s == nil || s.Collected[models.FieldMeetingTitle] != "cancel the old sync" {
		t.Fatalf("title should be stored verbatim, got %+v", s)
	}
}

func readySession(t *testing.T, m *Machine) *models.BookingSession {
	t.Helper()
	s, _ := drive(t, m, nil, "book", "Sync", "tomorrow", "2pm", "30 mins", "")
	if s == nil || s.Phase != models.PhaseReady {
		t.Fatalf("expected ready session, got %+v", s)
	}
	return s
}

func TestReadyConfirm(t *testing.T) {
	for _, text := range []string{"confirm", "Yes", "y", "ok", "book it"} {
		m := newMachine()
		s := readySession(t, m)
		next, out := m.Step(s, Turn{Text: text, Now: clock})
		if next != nil {
			t.Fatalf("%q: expected session to end", text)
		}
		if out.Dispatch == nil || out.Dispatch.Summary != "Sync" {
			t.Fatalf("%q: expected dispatch, got %+v", text, out)
		}
	}
}

func TestReadyConfirmAction(t *testing.T) {
	m := newMachine()
	_, out := m.Step(readySession(t, m), Turn{Action: models.ActionConfirm, Now: clock})
	if out.Dispatch == nil || out.Dispatch.End.Sub(out.Dispatch.Start) != 30*time.Minute {
		t.Fatalf("unexpected dispatch %+v", out.Dispatch)
	}
}

func TestReadyCancel(t *testing.T) {
	m := newMachine()
	next, out := m.Step(readySession(t, m), Turn{Text: "nevermind", Now: clock})
	if next != nil || out.Text != cancelledText {
		t.Fatalf("expected cancellation, got %+v %+v", next, out)
	}
}

func TestReadyUnrelatedTextRepeatsSummary(t *testing.T) {
	m := newMachine()
	s := readySession(t, m)
	next, out := m.Step(s, Turn{Text: "what's the weather?", Now: clock})
	if next == nil || next.Phase != models.PhaseReady {
		t.Fatalf("expected to stay ready, got %+v", next)
	}
	if out.Text != Summary(*s.Pending) || !out.NeedsConfirmation {
		t.Fatalf("expected the summary again, got %q", out.Text)
	}
}

func TestEditWithoutFieldRestarts(t *testing.T) {
	m := newMachine()
	next, out := m.Step(readySession(t, m), Turn{Text: "edit", Now: clock})
	if next == nil || next.Phase != models.PhaseCollecting || next.Step != 1 {
		t.Fatalf("expected restart at step 1, got %+v", next)
	}
	if len(next.Collected) != 0 || next.Pending != nil {
		t.Fatalf("expected cleared collection, got %+v", next)
	}
	if !strings.HasSuffix(out.Text, Prompt(1)) {
		t.Fatalf("unexpected prompt %q", out.Text)
	}
}

func TestEditSingleFieldReturnsToReady(t *testing.T) {
	m := newMachine()
	s := readySession(t, m)
	s, out := m.Step(s, Turn{Action: models.ActionEdit, Field: models.FieldDuration, Now: clock})
	if s.Phase != models.PhaseCollecting || s.EditField != models.FieldDuration {
		t.Fatalf("expected duration re-entry, got %+v", s)
	}
	if out.Text != Prompt(StepOf(models.FieldDuration)) {
		t.Fatalf("unexpected prompt %q", out.Text)
	}
	s, out = m.Step(s, Turn{Text: "2 hours", Now: clock})
	if s.Phase != models.PhaseReady || s.EditField != "" {
		t.Fatalf("expected ready after edit, got %+v", s)
	}
	if got := out.Pending.End.Sub(out.Pending.Start); got != 2*time.Hour {
		t.Fatalf("expected two hours, got %v", got)
	}
	if s.Collected[models.FieldMeetingTitle] != "Sync" {
		t.Fatalf("other fields should be kept, got %+v", s.Collected)
	}
}

func TestEditFieldByText(t *testing.T) {
	m := newMachine()
	s, _ := m.Step(readySession(t, m), Turn{Text: "change the date", Now: clock})
	if s.EditField != models.FieldDate || s.Step != StepOf(models.FieldDate) {
		t.Fatalf("expected date re-entry, got %+v", s)
	}
}

func TestUnparseableStartFallsBackToNextHour(t *testing.T) {
	m := NewMachine(NewAssembler(stubResolver{}, time.UTC, zap.NewNop()))
	_, out := drive(t, m, nil, "book", "Sync", "someday", "whenever", "1 hour", "")
	if out.Pending == nil {
		t.Fatalf("expected pending booking")
	}
	if !out.Pending.Start.Equal(clock.Add(time.Hour)) {
		t.Fatalf("expected start %v, got %v", clock.Add(time.Hour), out.Pending.Start)
	}
	if !strings.Contains(out.Text, "defaults were used") {
		t.Fatalf("summary should flag defaults: %q", out.Text)
	}
}
