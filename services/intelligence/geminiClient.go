package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator produces a free-form reply for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyCompletion = errors.New("language model returned no candidates")

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tools  *CalendarTools
}

// NewGeminiClient builds the Gemini client. With tools set the model may read
// the calendar through function calls before answering.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, tools *CalendarTools) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	if tools != nil {
		model.Tools = []*genai.Tool{{FunctionDeclarations: tools.Declarations()}}
	}
	return &GeminiClient{client: client, model: model, tools: tools}, nil
}

// GenerateContent runs one exchange on a fresh chat so tool calls and their
// results stay scoped to this prompt.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return converse(ctx, g.model.StartChat(), g.tools, prompt)
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func replyText(content *genai.Content) (string, error) {
	var sb strings.Builder
	for _, part := range content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

const systemInstruction = `You are an expert calendar assistant. Help users manage their schedules.
Use check_availability to see when the calendar is busy and suggest_slots to find free times.
Pass times as ISO-8601 and work out dates from the current time given with each question.
You cannot book meetings yourself: tell the user to say "book a meeting" to start a booking.
Keep answers short and never invent calendar data.`
