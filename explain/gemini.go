package explain

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConfig configures a GeminiExplainer.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// DefaultGeminiConfig returns conservative defaults for the summarisation
// hook.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{Model: "gemini-1.5-flash", Temperature: 0.3}
}

// GeminiExplainer implements Explainer via the official
// google/generative-ai-go client, superseding the teacher's hand-rolled
// HTTP call to the Gemini REST API with proper SDK usage.
type GeminiExplainer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ Explainer = (*GeminiExplainer)(nil)

// NewGeminiExplainer connects a GeminiExplainer to the Generative Language
// API.
func NewGeminiExplainer(ctx context.Context, cfg GeminiConfig) (*GeminiExplainer, error) {
	if cfg.Model == "" {
		cfg = DefaultGeminiConfig()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You summarise plagiarism-detection results in two sentences. Never restate or adjust the numeric percentage or severity; treat them as already final.",
	))

	return &GeminiExplainer{client: client, model: model}, nil
}

// Explain renders s into a short natural-language explanation.
func (e *GeminiExplainer) Explain(ctx context.Context, s Summary) (string, error) {
	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt(s)))
	if err != nil {
		return "", fmt.Errorf("gemini explanation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini explanation: empty response")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("gemini explanation: no text part in response")
}

// Close releases the underlying client connection.
func (e *GeminiExplainer) Close() error {
	return e.client.Close()
}
