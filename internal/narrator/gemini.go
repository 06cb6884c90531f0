package narrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const completionPrompt = `The following letters were finger-spelled in sign language, one letter per sign.
Continue them into one short, natural English sentence. Reply with the sentence only.

Letters: %s`

// GeminiConfig configures the Gemini completer.
type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	Temperature     float32
}

// GeminiCompleter implements Completer using Google's Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *zap.Logger
}

// NewGeminiCompleter creates a Gemini client.
func NewGeminiCompleter(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiCompleter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiCompleter{
		client: client,
		model:  model,
		config: generationConfig(config),
		logger: logger,
	}, nil
}

func generationConfig(config GeminiConfig) *genai.GenerateContentConfig {
	maxTokens := config.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 50
	}
	temperature := config.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}
}

// Complete asks the model to turn the finger-spelled text into a sentence.
func (g *GeminiCompleter) Complete(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(text), genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	out := responseText(resp)
	if out == "" {
		return "", fmt.Errorf("gemini: empty response")
	}

	g.logger.Debug("Completed sentence", zap.String("model", g.model), zap.String("input", text))
	return out, nil
}

func buildPrompt(text string) string {
	return fmt.Sprintf(completionPrompt, strings.TrimSpace(text))
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
