// Package detector implements C7: the orchestrator that wires the
// chunker, embedder, vector store, lexical scorer, citation detector and
// aggregator into a single CheckPlagiarism call, and computes the final
// percentage/severity verdict (§4.7). Concurrency follows the teacher's
// runner.Runner semaphore pattern, generalised away from agent execution.
package detector

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/corpusguard/plagdetect/aggregator"
	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/citation"
	"github.com/corpusguard/plagdetect/document"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/embedder"
	"github.com/corpusguard/plagdetect/explain"
	"github.com/corpusguard/plagdetect/lexical"
	pkgerrors "github.com/corpusguard/plagdetect/pkg/errors"
	"github.com/corpusguard/plagdetect/vectorstore"
)

// Severity is the banded plagiarism classification of §4.7.
type Severity string

const (
	SeveritySafe     Severity = "SAFE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severity thresholds, as fractions of 100 (§6).
const (
	thresholdCritical = 95.0
	thresholdHigh     = 85.0
	thresholdMedium   = 70.0
	thresholdLow      = 50.0
)

// SeverityForPercentage bands a percentage per §4.7.
func SeverityForPercentage(percentage float64) Severity {
	switch {
	case percentage >= thresholdCritical:
		return SeverityCritical
	case percentage >= thresholdHigh:
		return SeverityHigh
	case percentage >= thresholdMedium:
		return SeverityMedium
	case percentage >= thresholdLow:
		return SeverityLow
	default:
		return SeveritySafe
	}
}

// ChunkAnalysis is the per-chunk evidence summary of §3.
type ChunkAnalysis struct {
	ChunkIndex            int
	Text                  string
	MaxCombinedSimilarity float64
	Severity              Severity
	BestMatchDocID        string
}

// Match is a global, de-duplicated match returned to the caller.
type Match struct {
	DocID            string
	DocTitle         string
	MatchedChunkText string
	InputChunkText   string
	SemanticScore    float64
	LexicalScore     float64
	CombinedScore    float64
	Position         int
}

// Metrics reports processing statistics for one CheckPlagiarism call.
type Metrics struct {
	ChunkCount     int
	CandidateCount int
	Duration       time.Duration
}

// Verdict is the result of CheckPlagiarism (§3).
type Verdict struct {
	Percentage    float64
	Severity      Severity
	Matches       []Match
	ChunkAnalyses []ChunkAnalysis
	Metrics       Metrics
	Explanation   string
}

// CheckOptions parameterises a single CheckPlagiarism call (§6).
type CheckOptions struct {
	MinSimilarity     float64
	TopK              int
	IncludeAIAnalysis bool
	ExcludeDocs       map[string]struct{}
}

// DefaultCheckOptions returns the documented RPC defaults.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{MinSimilarity: 0.50, TopK: 10, IncludeAIAnalysis: true}
}

// Config wires the detector's tunables (§6).
type Config struct {
	Chunking              chunking.Config
	Aggregator            aggregator.Config
	MaxParallelSearches   int
	EmbedTimeout          time.Duration
	KNNTimeout            time.Duration
	RequestTimeout        time.Duration
	AIRequestTimeoutExtra time.Duration
}

// DefaultConfig returns the documented defaults (§5, §6).
func DefaultConfig() Config {
	return Config{
		Chunking:              chunking.DefaultConfig(),
		Aggregator:            aggregator.DefaultConfig(),
		MaxParallelSearches:   runtime.NumCPU(),
		EmbedTimeout:          60 * time.Second,
		KNNTimeout:            10 * time.Second,
		RequestTimeout:        300 * time.Second,
		AIRequestTimeoutExtra: 60 * time.Second,
	}
}

// Detector orchestrates C1 through C6 into a single plagiarism check.
type Detector struct {
	chunker   chunking.Chunker
	embedder  embedder.Embedder
	store     vectorstore.Store
	registry  docregistry.Registry
	explainer explain.Explainer
	cfg       Config
}

// New builds a Detector. explainer may be nil to disable the AI
// explanation hook regardless of CheckOptions.IncludeAIAnalysis.
func New(chunker chunking.Chunker, emb embedder.Embedder, store vectorstore.Store, registry docregistry.Registry, explainer explain.Explainer, cfg Config) *Detector {
	return &Detector{chunker: chunker, embedder: emb, store: store, registry: registry, explainer: explainer, cfg: cfg}
}

// CheckPlagiarism runs the full detection pipeline over text (§4.7).
func (d *Detector) CheckPlagiarism(ctx context.Context, text string, opts CheckOptions) (Verdict, error) {
	start := time.Now()
	requestID := uuid.NewString()

	timeout := d.cfg.RequestTimeout
	if opts.IncludeAIAnalysis && d.explainer != nil {
		timeout += d.cfg.AIRequestTimeoutExtra
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = aggregator.DefaultConfig().MinScoreThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = aggregator.DefaultConfig().TopK
	}

	ephemeral := document.Document{ID: requestID, Content: text}
	chunks, err := d.chunker.Chunk(reqCtx, ephemeral)
	if err != nil {
		return Verdict{}, pkgerrors.Internal("chunk input", err)
	}
	if len(chunks) == 0 {
		return emptyVerdict(start), nil
	}

	embedCtx, embedCancel := context.WithTimeout(reqCtx, d.cfg.EmbedTimeout)
	defer embedCancel()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := d.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		return Verdict{}, classifyDependencyError("embed input", embedCtx, err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	perChunkMatches, err := d.searchAll(reqCtx, chunks, opts)
	if err != nil {
		return Verdict{}, classifyDependencyError("search vector store", reqCtx, err)
	}

	docInfo := d.fetchDocInfo(reqCtx, perChunkMatches)

	analyses := make([]ChunkAnalysis, len(chunks))
	var candidates []aggregator.Candidate
	candidateCount := 0

	queryText := make(map[string]string, len(chunks))
	queryPosition := make(map[string]int, len(chunks))
	matchedText := make(map[string]string)
	for i, chunk := range chunks {
		queryText[chunk.ID] = chunk.Text
		queryPosition[chunk.ID] = chunk.Position
		for _, m := range perChunkMatches[i] {
			matchedText[m.ChunkID] = m.Text
		}
	}

	for i, chunk := range chunks {
		matches := perChunkMatches[i]
		best := ChunkAnalysis{ChunkIndex: i, Text: chunk.Text, Severity: SeveritySafe}

		for _, m := range matches {
			lex := lexical.Score(chunk.Text, m.Text)
			info := docInfo[m.DocID]
			candidateCount++
			candidates = append(candidates, aggregator.Candidate{
				QueryChunkID:       chunk.ID,
				MatchedChunkID:     m.ChunkID,
				MatchedDocID:       m.DocID,
				InputText:          chunk.Text,
				MatchedText:        m.Text,
				MatchedDocTitle:    info.Title,
				MatchedDocMetadata: info.Metadata,
				Semantic:           clampUnit(m.Score),
				Lexical:            lex,
			})

			raw := aggregator.SemanticWeight*clampUnit(m.Score) + aggregator.LexicalWeight*lex
			combined := citation.Apply(raw, chunk.Text, info.Title, info.Metadata)
			if combined > best.MaxCombinedSimilarity {
				best.MaxCombinedSimilarity = combined
				best.BestMatchDocID = m.DocID
			}
		}
		best.Severity = SeverityForPercentage(best.MaxCombinedSimilarity * 100)
		analyses[i] = best
	}

	aggCfg := d.cfg.Aggregator
	aggCfg.MinScoreThreshold = opts.MinSimilarity
	aggCfg.TopK = opts.TopK
	aggregated := aggregator.Aggregate(candidates, aggCfg)

	matches := make([]Match, 0, len(aggregated))
	for _, am := range aggregated {
		matches = append(matches, Match{
			DocID:            am.MatchedDocID,
			DocTitle:         docInfo[am.MatchedDocID].Title,
			MatchedChunkText: matchedText[am.MatchedChunkID],
			InputChunkText:   queryText[am.QueryChunkID],
			SemanticScore:    am.Semantic,
			LexicalScore:     am.Lexical,
			CombinedScore:    am.Combined,
			Position:         queryPosition[am.QueryChunkID],
		})
	}

	percentage := computePercentage(chunks, analyses, opts.MinSimilarity)
	severity := SeverityForPercentage(percentage)

	verdict := Verdict{
		Percentage:    percentage,
		Severity:      severity,
		Matches:       matches,
		ChunkAnalyses: analyses,
		Metrics: Metrics{
			ChunkCount:     len(chunks),
			CandidateCount: candidateCount,
			Duration:       time.Since(start),
		},
		Explanation: deterministicExplanation(severity, len(matches)),
	}

	if opts.IncludeAIAnalysis && d.explainer != nil {
		titles := topDocTitles(matches, 3)
		text, err := d.explainer.Explain(reqCtx, explain.Summary{
			Percentage:   percentage,
			Severity:     string(severity),
			MatchCount:   len(matches),
			TopDocTitles: titles,
		})
		if err == nil && text != "" {
			verdict.Explanation = text
		}
	}

	return verdict, nil
}

// searchAll issues one kNN query per chunk, bounded by
// Config.MaxParallelSearches, preserving chunk order in the result
// (§5 ordering guarantee).
func (d *Detector) searchAll(ctx context.Context, chunks []document.Chunk, opts CheckOptions) ([][]vectorstore.Match, error) {
	runner := newBoundedRunner(d.cfg.MaxParallelSearches)

	results, err := runner.run(ctx, len(chunks), func(taskCtx context.Context, i int) (any, error) {
		knnCtx, cancel := context.WithTimeout(taskCtx, d.cfg.KNNTimeout)
		defer cancel()

		return d.store.Query(knnCtx, chunks[i].Embedding, vectorstore.QueryOptions{
			K:                   opts.TopK,
			NumCandidates:       vectorstore.NumCandidatesFor(opts.TopK),
			ExcludeDocIDs:       opts.ExcludeDocs,
			MinScore:            opts.MinSimilarity,
			MaxResultsPerSource: vectorstore.DefaultMaxResultsPerSource,
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([][]vectorstore.Match, len(chunks))
	for i, r := range results {
		if r == nil {
			out[i] = nil
			continue
		}
		out[i] = r.([]vectorstore.Match)
	}
	return out, nil
}

// docMeta is the slice of document.Document the citation check (§4.5)
// needs to tell whether a marker names the matched document as its source.
type docMeta struct {
	Title    string
	Metadata map[string]string
}

// fetchDocInfo resolves title/metadata once per distinct matched document
// across every chunk's results, rather than once per match, since the same
// source document is typically matched from several chunks.
func (d *Detector) fetchDocInfo(ctx context.Context, perChunkMatches [][]vectorstore.Match) map[string]docMeta {
	out := make(map[string]docMeta)
	if d.registry == nil {
		return out
	}
	for _, matches := range perChunkMatches {
		for _, m := range matches {
			if _, ok := out[m.DocID]; ok {
				continue
			}
			if doc, ok, _ := d.registry.Get(ctx, m.DocID, false); ok {
				out[m.DocID] = docMeta{Title: doc.Title, Metadata: doc.Metadata}
			} else {
				out[m.DocID] = docMeta{}
			}
		}
	}
	return out
}

// computePercentage implements §4.7's weighted formula.
func computePercentage(chunks []document.Chunk, analyses []ChunkAnalysis, similarityLow float64) float64 {
	var numer, denom float64
	for i, chunk := range chunks {
		wc := float64(chunk.WordCount)
		denom += wc
		if analyses[i].MaxCombinedSimilarity >= similarityLow {
			numer += wc * analyses[i].MaxCombinedSimilarity
		}
	}
	if denom == 0 {
		return 0
	}
	return 100 * numer / denom
}

func emptyVerdict(start time.Time) Verdict {
	return Verdict{
		Percentage:  0,
		Severity:    SeveritySafe,
		Matches:     nil,
		Explanation: deterministicExplanation(SeveritySafe, 0),
		Metrics:     Metrics{Duration: time.Since(start)},
	}
}

func deterministicExplanation(severity Severity, matchCount int) string {
	switch severity {
	case SeveritySafe:
		return "No significant overlap with the corpus was found."
	default:
		return fmt.Sprintf("Found %d matching passage(s); severity assessed as %s.", matchCount, severity)
	}
}

func topDocTitles(matches []Match, limit int) []string {
	seen := make(map[string]struct{})
	var titles []string
	for _, m := range matches {
		if m.DocTitle == "" {
			continue
		}
		if _, ok := seen[m.DocTitle]; ok {
			continue
		}
		seen[m.DocTitle] = struct{}{}
		titles = append(titles, m.DocTitle)
		if len(titles) == limit {
			break
		}
	}
	return titles
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func classifyDependencyError(op string, ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return pkgerrors.DeadlineExceeded(op, ctx.Err())
	}
	return pkgerrors.Unavailable(op, err)
}
