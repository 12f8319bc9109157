// Package explain implements the optional, non-contractual "AI
// explanation" hook of §9: a natural-language summary of a verdict,
// produced by a pluggable LLM provider. It MUST NOT influence the
// percentage or severity computed in §4.7 — callers pass those in already
// final and only ask for prose.
package explain

import "context"

// Summary is the data an Explainer renders into prose. Fields mirror the
// Verdict the detector has already finalised.
type Summary struct {
	Percentage   float64
	Severity     string
	MatchCount   int
	TopDocTitles []string
}

// Explainer turns a finalised Summary into a short natural-language
// explanation. Implementations must not be consulted for the numeric
// verdict itself.
type Explainer interface {
	Explain(ctx context.Context, s Summary) (string, error)
}
