package booking

import (
	"time"

	"calbook/models"
)

// Turn is one user input applied to a session.
type Turn struct {
	SessionID string
	Text      string
	Action    models.TurnAction
	Field     models.BookingField
	Now       time.Time
}

// Outcome describes the result of a transition. A nil Session in the
// returned pair means the conversation is back to idle.
type Outcome struct {
	Text              string
	Phase             models.SessionPhase
	NeedsFollowup     bool
	NeedsConfirmation bool
	Pending           *models.BookingRequest
	// Dispatch is set when the user confirmed; the caller creates the event.
	Dispatch *models.BookingRequest
	// Handled is false when the turn was not booking related and should be
	// answered by a general responder.
	Handled bool
}

// Machine is the pure booking transition function. It holds no session state.
type Machine struct {
	assembler *Assembler
}

func NewMachine(assembler *Assembler) *Machine {
	return &Machine{assembler: assembler}
}

// Step applies a turn to the current session and returns the next session
// and the outcome. The input session is never mutated.
func (m *Machine) Step(session *models.BookingSession, turn Turn) (*models.BookingSession, Outcome) {
	if session == nil || session.Phase == models.PhaseIdle || session.Phase == models.PhaseTerminal {
		return m.idle(turn)
	}
	next := session.Clone()
	next.UpdatedAt = turn.Now
	switch session.Phase {
	case models.PhaseCollecting:
		return m.collect(next, turn)
	case models.PhaseReady:
		return m.ready(next, turn)
	}
	return m.idle(turn)
}

func (m *Machine) idle(turn Turn) (*models.BookingSession, Outcome) {
	if !IsBookingIntent(turn.Text) {
		return nil, Outcome{Phase: models.PhaseIdle}
	}
	s := &models.BookingSession{
		ID:        turn.SessionID,
		Phase:     models.PhaseCollecting,
		Step:      1,
		Collected: make(map[models.BookingField]string, FieldCount),
		CreatedAt: turn.Now,
		UpdatedAt: turn.Now,
	}
	return s, prompting(introText+Prompt(1), models.PhaseCollecting)
}

func (m *Machine) collect(s *models.BookingSession, turn Turn) (*models.BookingSession, Outcome) {
	if turn.Action == models.ActionCancel || isCancel(turn.Text) {
		return cancelled()
	}

	if s.EditField != "" {
		s.Collected[s.EditField] = turn.Text
		s.EditField = ""
		return m.toReady(s, turn.Now)
	}

	field, ok := FieldAt(s.Step)
	if !ok {
		// A stored step outside the field list cannot be resumed.
		s.Step = 1
		return s, prompting(Prompt(1), models.PhaseCollecting)
	}
	s.Collected[field] = turn.Text
	if s.Step < FieldCount {
		s.Step++
		return s, prompting(Prompt(s.Step), models.PhaseCollecting)
	}
	return m.toReady(s, turn.Now)
}

func (m *Machine) ready(s *models.BookingSession, turn Turn) (*models.BookingSession, Outcome) {
	if s.Pending == nil {
		req := m.assembler.Assemble(s.Collected, turn.Now)
		s.Pending = &req
	}
	action, field := turn.Action, turn.Field
	if action == models.ActionNone {
		action, field = readyIntent(turn.Text)
	}

	switch action {
	case models.ActionConfirm:
		req := s.Pending
		return nil, Outcome{
			Phase:    models.PhaseTerminal,
			Pending:  req,
			Dispatch: req,
			Handled:  true,
		}
	case models.ActionCancel:
		return cancelled()
	case models.ActionEdit:
		if step := StepOf(field); step > 0 {
			s.Phase = models.PhaseCollecting
			s.Step = step
			s.EditField = field
			return s, prompting(Prompt(step), models.PhaseCollecting)
		}
		s.Phase = models.PhaseCollecting
		s.Step = 1
		s.EditField = ""
		s.Pending = nil
		s.Collected = make(map[models.BookingField]string, FieldCount)
		return s, prompting(restartText+Prompt(1), models.PhaseCollecting)
	}
	return s, readyOutcome(s)
}

func (m *Machine) toReady(s *models.BookingSession, now time.Time) (*models.BookingSession, Outcome) {
	req := m.assembler.Assemble(s.Collected, now)
	s.Phase = models.PhaseReady
	s.Step = FieldCount
	s.Pending = &req
	return s, readyOutcome(s)
}

func readyOutcome(s *models.BookingSession) Outcome {
	return Outcome{
		Text:              Summary(*s.Pending),
		Phase:             models.PhaseReady,
		NeedsConfirmation: true,
		Pending:           s.Pending,
		Handled:           true,
	}
}

func prompting(text string, phase models.SessionPhase) Outcome {
	return Outcome{Text: text, Phase: phase, NeedsFollowup: true, Handled: true}
}

func cancelled() (*models.BookingSession, Outcome) {
	return nil, Outcome{Text: cancelledText, Phase: models.PhaseTerminal, Handled: true}
}
