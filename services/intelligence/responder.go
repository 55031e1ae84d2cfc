package ai

import (
	"context"
	"time"

	"calbook/config"
	"calbook/models"
	"calbook/services/booking"

	"go.uber.org/zap"
)

const defaultLLMTimeout = 10 * time.Second

// RuleBasedResponder answers idle chatter from a fixed keyword classifier.
type RuleBasedResponder struct {
	machine *booking.Machine
}

func NewRuleBasedResponder(machine *booking.Machine) *RuleBasedResponder {
	return &RuleBasedResponder{machine: machine}
}

func (r *RuleBasedResponder) Name() string { return "rule_based" }

func (r *RuleBasedResponder) Respond(_ context.Context, session *models.BookingSession, in TurnInput) (*models.BookingSession, TurnResult, error) {
	next, out := r.machine.Step(session, toTurn(in))
	if !out.Handled {
		out.Text = classify(in.Text)
	}
	return next, TurnResult{Outcome: out}, nil
}

// LanguageModelResponder forwards idle chatter to a language model and falls
// back to the keyword classifier when the model cannot answer.
type LanguageModelResponder struct {
	machine   *booking.Machine
	generator TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLanguageModelResponder bounds each model call by timeout; a
// non-positive timeout uses the default.
func NewLanguageModelResponder(machine *booking.Machine, generator TextGenerator, timeout time.Duration, logger *zap.Logger) *LanguageModelResponder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &LanguageModelResponder{machine: machine, generator: generator, timeout: timeout, logger: logger}
}

func (r *LanguageModelResponder) Name() string { return "language_model" }

func (r *LanguageModelResponder) Respond(ctx context.Context, session *models.BookingSession, in TurnInput) (*models.BookingSession, TurnResult, error) {
	next, out := r.machine.Step(session, toTurn(in))
	if out.Handled {
		return next, TurnResult{Outcome: out}, nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	text, err := r.generator.GenerateContent(llmCtx, llmPrompt(in))
	if err != nil {
		r.logger.Error("language model failed, using rule-based answer",
			zap.String("conversationID", in.ConversationID),
			zap.Error(err))
		out.Text = classify(in.Text)
		return next, TurnResult{Outcome: out}, nil
	}
	out.Text = text
	return next, TurnResult{Outcome: out, LLMUsed: true}, nil
}

// NewResponder picks the responder variant once from configuration. A nil
// generator means no language model is reachable.
func NewResponder(cfg config.Config, machine *booking.Machine, generator TextGenerator, logger *zap.Logger) (Responder, error) {
	if cfg.LLMEnabled() && generator != nil {
		return NewLanguageModelResponder(machine, generator, cfg.UpstreamTimeout(), logger), nil
	}
	if cfg.RuleBasedFallbackEnabled {
		return NewRuleBasedResponder(machine), nil
	}
	return nil, config.ErrNoResponder
}

func llmPrompt(in TurnInput) string {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return "Current time: " + now.Format(time.RFC3339) + " (" + now.Weekday().String() + ")\nUser question: " + in.Text
}

func toTurn(in TurnInput) booking.Turn {
	return booking.Turn{
		SessionID: in.ConversationID,
		Text:      in.Text,
		Action:    in.Action,
		Field:     in.Field,
		Now:       in.Now,
	}
}
