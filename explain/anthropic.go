package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// AnthropicConfig configures an AnthropicExplainer.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultAnthropicConfig returns the teacher's default Claude model and
// sampling parameters.
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		Model:       "claude-sonnet-4-5-20250929",
		MaxTokens:   512,
		Temperature: 0.3,
	}
}

// AnthropicExplainer implements Explainer via the Anthropic Messages API,
// adapted from the teacher's contrib/provider/claude.Provider (stripped of
// the agent/tool-call plumbing this hook does not need).
type AnthropicExplainer struct {
	cfg    AnthropicConfig
	client anthropic.Client
}

var _ Explainer = (*AnthropicExplainer)(nil)

// NewAnthropicExplainer builds an AnthropicExplainer from cfg.
func NewAnthropicExplainer(cfg AnthropicConfig) *AnthropicExplainer {
	if cfg.Model == "" {
		cfg = DefaultAnthropicConfig()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicExplainer{cfg: cfg, client: anthropic.NewClient(opts...)}
}

// Explain renders s into a short natural-language explanation.
func (e *AnthropicExplainer) Explain(ctx context.Context, s Summary) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.cfg.Model),
		MaxTokens: e.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: "You summarise plagiarism-detection results in two sentences. Never restate or adjust the numeric percentage or severity; treat them as already final."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt(s))),
		},
	}
	if e.cfg.Temperature > 0 {
		params.Temperature = param.NewOpt(e.cfg.Temperature)
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic explanation: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic explanation: no text content in response")
}

func prompt(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plagiarism check result: %.1f%% (%s), %d matching passages.\n", s.Percentage, s.Severity, s.MatchCount)
	if len(s.TopDocTitles) > 0 {
		fmt.Fprintf(&b, "Top matched sources: %s.\n", strings.Join(s.TopDocTitles, ", "))
	}
	b.WriteString("Summarise this finding for a reviewer in two sentences.")
	return b.String()
}
