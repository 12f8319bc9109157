// Package aggregator implements C6: fusing each chunk's semantic and
// lexical scores, applying the citation penalty, re-capping per source via
// the MMR-adapted Diversify, deduplicating, ranking, and truncating to
// top_k (§4.6). The per-source cap is grounded in the teacher's
// contrib/reranker/mmr.Reranker, adapted from MMR's query/candidate
// tradeoff to the aggregator's combined-score/source-spread tradeoff.
package aggregator

import (
	"sort"

	"github.com/corpusguard/plagdetect/citation"
	"github.com/corpusguard/plagdetect/lexical"
)

// SemanticWeight and LexicalWeight are the fixed 50/50 fusion weights
// (§4.6).
const (
	SemanticWeight = 0.5
	LexicalWeight  = 0.5
)

// Candidate is one chunk pairing the aggregator scores and ranks.
type Candidate struct {
	QueryChunkID   string
	MatchedChunkID string
	MatchedDocID   string
	// InputText is the query-side chunk's text; citation detection runs
	// against it, since §4.5 discounts a match when the citing side
	// (the submitted text) visibly attributes its source.
	InputText string
	// MatchedText is the matched chunk's own text, carried through so the
	// per-source cap can tell near-duplicate hits from one document apart
	// from genuinely distinct ones.
	MatchedText string
	// MatchedDocTitle and MatchedDocMetadata identify the matched document,
	// so the citation penalty (§4.5) can tell whether InputText's citation
	// marker actually names this document as its source.
	MatchedDocTitle    string
	MatchedDocMetadata map[string]string
	Semantic           float64
	Lexical            float64
}

// Match is a scored, ranked result of the aggregation step.
type Match struct {
	QueryChunkID   string
	MatchedChunkID string
	MatchedDocID   string
	MatchedText    string
	Combined       float64
	Semantic       float64
	Lexical        float64
	CitationFlag   bool
}

// Config parameterises aggregation thresholds and caps (§6).
type Config struct {
	MinScoreThreshold   float64
	MaxResultsPerSource int
	TopK                int
}

// DefaultConfig returns the documented thresholds.
func DefaultConfig() Config {
	return Config{MinScoreThreshold: 0.50, MaxResultsPerSource: 3, TopK: 10}
}

// Aggregate fuses candidates into ranked Matches: combined score,
// citation-penalty application, minimum-score discard, per-source cap,
// global dedup by (doc, chunk) keeping the highest score, then ranking
// and top_k truncation (§4.6).
func Aggregate(candidates []Candidate, cfg Config) []Match {
	if cfg.MinScoreThreshold == 0 && cfg.MaxResultsPerSource == 0 && cfg.TopK == 0 {
		cfg = DefaultConfig()
	}

	best := make(map[string]Match) // keyed by doc_id + "#" + matched_chunk_id
	for _, c := range candidates {
		raw := SemanticWeight*c.Semantic + LexicalWeight*c.Lexical
		combined := citation.Apply(raw, c.InputText, c.MatchedDocTitle, c.MatchedDocMetadata)
		cited := citation.Detect(c.InputText)
		if combined < cfg.MinScoreThreshold {
			continue
		}

		key := c.MatchedDocID + "#" + c.MatchedChunkID
		m := Match{
			QueryChunkID:   c.QueryChunkID,
			MatchedChunkID: c.MatchedChunkID,
			MatchedDocID:   c.MatchedDocID,
			MatchedText:    c.MatchedText,
			Combined:       combined,
			Semantic:       c.Semantic,
			Lexical:        c.Lexical,
			CitationFlag:   cited,
		}
		if existing, ok := best[key]; !ok || combined > existing.Combined {
			best[key] = m
		}
	}

	flat := make([]Match, 0, len(best))
	for _, m := range best {
		flat = append(flat, m)
	}

	flat = capPerSource(flat, cfg.MaxResultsPerSource)
	rank(flat)

	k := cfg.TopK
	if k <= 0 || k > len(flat) {
		k = len(flat)
	}
	return flat[:k]
}

// capPerSource keeps at most cap matches per source document. Within a
// source that exceeds the cap, the MMR-adapted Diversify picks the subset
// rather than a plain top-N by score, so a document that matched the same
// sentence ten times over doesn't crowd out its other, distinct matches.
func capPerSource(matches []Match, cap int) []Match {
	if cap <= 0 {
		cap = 3
	}
	rank(matches)

	bySource := make(map[string][]Match)
	order := make([]string, 0)
	for _, m := range matches {
		if _, ok := bySource[m.MatchedDocID]; !ok {
			order = append(order, m.MatchedDocID)
		}
		bySource[m.MatchedDocID] = append(bySource[m.MatchedDocID], m)
	}

	div := NewDiversify()
	out := make([]Match, 0, len(matches))
	for _, docID := range order {
		group := bySource[docID]
		if len(group) <= cap {
			out = append(out, group...)
			continue
		}
		out = append(out, div.Select(group, cap, matchTextSimilarity)...)
	}
	return out
}

func matchTextSimilarity(a, b Match) float64 {
	return lexical.Score(a.MatchedText, b.MatchedText)
}

// rank orders matches by combined score descending, ties broken by
// semantic score descending, then by matched chunk id ascending for a
// stable, deterministic order (§4.6).
func rank(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Combined != matches[j].Combined {
			return matches[i].Combined > matches[j].Combined
		}
		if matches[i].Semantic != matches[j].Semantic {
			return matches[i].Semantic > matches[j].Semantic
		}
		return matches[i].MatchedChunkID < matches[j].MatchedChunkID
	})
}
