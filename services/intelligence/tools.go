package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"calbook/models"
	"calbook/services/availability"

	genai "github.com/google/generative-ai-go/genai"
)

const (
	toolCheckAvailability = "check_availability"
	toolSuggestSlots      = "suggest_slots"

	// maxToolRounds bounds model -> tool -> model exchanges within one turn.
	maxToolRounds = 5
)

var ErrToolLoop = errors.New("language model kept calling tools")

// CalendarReader is the read-only calendar surface exposed to the model.
// Booking always goes through the state machine.
type CalendarReader interface {
	Location() *time.Location
	BusyIntervals(ctx context.Context, window models.Window) ([]models.Interval, error)
	SuggestSlots(ctx context.Context, window models.Window, params models.SuggestionParams) ([]models.Slot, error)
}

// CalendarTools declares calendar functions to the model and executes the
// calls it makes.
type CalendarTools struct {
	calendar CalendarReader
}

func NewCalendarTools(calendar CalendarReader) *CalendarTools {
	return &CalendarTools{calendar: calendar}
}

func (t *CalendarTools) Declarations() []*genai.FunctionDeclaration {
	window := map[string]*genai.Schema{
		"start_time": {Type: genai.TypeString, Description: "Window start, ISO-8601"},
		"end_time":   {Type: genai.TypeString, Description: "Window end, ISO-8601"},
	}
	suggest := map[string]*genai.Schema{
		"duration_minutes":  {Type: genai.TypeInteger, Description: "Meeting length in minutes"},
		"increment_minutes": {Type: genai.TypeInteger, Description: "Step between candidate starts in minutes, default 15"},
	}
	for k, v := range window {
		suggest[k] = v
	}
	return []*genai.FunctionDeclaration{
		{
			Name:        toolCheckAvailability,
			Description: "List the busy periods on the calendar between start_time and end_time.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: window,
				Required:   []string{"start_time", "end_time"},
			},
		},
		{
			Name:        toolSuggestSlots,
			Description: "Suggest free meeting slots of duration_minutes between start_time and end_time.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: suggest,
				Required:   []string{"start_time", "end_time", "duration_minutes"},
			},
		},
	}
}

// Call runs one function call. The result only holds values the model API
// can encode: strings, numbers, slices and maps.
func (t *CalendarTools) Call(ctx context.Context, call genai.FunctionCall) (map[string]any, error) {
	if call.Name != toolCheckAvailability && call.Name != toolSuggestSlots {
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
	loc := t.calendar.Location()
	start, err := availability.ParseInstant("start_time", stringArg(call.Args, "start_time"), loc)
	if err != nil {
		return nil, err
	}
	end, err := availability.ParseInstant("end_time", stringArg(call.Args, "end_time"), loc)
	if err != nil {
		return nil, err
	}
	window, err := availability.NewWindow(start, end)
	if err != nil {
		return nil, err
	}

	switch call.Name {
	case toolCheckAvailability:
		busy, err := t.calendar.BusyIntervals(ctx, window)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(busy))
		for _, iv := range busy {
			out = append(out, map[string]any{
				"start": iv.Start.In(loc).Format(time.RFC3339),
				"end":   iv.End.In(loc).Format(time.RFC3339),
			})
		}
		return map[string]any{"busy": out, "time_zone": loc.String()}, nil

	default:
		params, err := availability.NewParams(intArg(call.Args, "duration_minutes", 30), intArg(call.Args, "increment_minutes", 15))
		if err != nil {
			return nil, err
		}
		slots, err := t.calendar.SuggestSlots(ctx, window, params)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(slots))
		for _, s := range slots {
			out = append(out, map[string]any{
				"start": s.Start.In(loc).Format(time.RFC3339),
				"end":   s.End.In(loc).Format(time.RFC3339),
			})
		}
		return map[string]any{"suggestions": out, "time_zone": loc.String()}, nil
	}
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// intArg reads a whole number; JSON numbers arrive as float64.
func intArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0
		}
		return int(v)
	case int:
		return v
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0
		}
		return int(v)
	}
	return fallback
}

// chatSender is the part of *genai.ChatSession the tool loop needs.
type chatSender interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// converse sends prompt and answers the model's function calls until it
// replies with text. Tool failures are reported back to the model.
func converse(ctx context.Context, cs chatSender, tools *CalendarTools, prompt string) (string, error) {
	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	for round := 0; ; round++ {
		if err != nil {
			return "", fmt.Errorf("gemini generate error: %w", err)
		}
		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", ErrEmptyCompletion
		}
		calls := functionCalls(resp.Candidates[0].Content)
		if len(calls) == 0 || tools == nil {
			return replyText(resp.Candidates[0].Content)
		}
		if round >= maxToolRounds {
			return "", ErrToolLoop
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, callErr := tools.Call(ctx, call)
			if callErr != nil {
				result = map[string]any{"error": callErr.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		resp, err = cs.SendMessage(ctx, replies...)
	}
}

func functionCalls(content *genai.Content) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}
