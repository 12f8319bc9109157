package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateFusesScoresFiftyFifty(t *testing.T) {
	candidates := []Candidate{
		{QueryChunkID: "q#0", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "plain text", Semantic: 0.8, Lexical: 0.6},
	}
	matches := Aggregate(candidates, DefaultConfig())
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.7, matches[0].Combined, 1e-9)
}

func TestAggregateAppliesCitationPenalty(t *testing.T) {
	candidates := []Candidate{
		{QueryChunkID: "q#0", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "as noted (Doe, 2020)", Semantic: 0.9, Lexical: 0.9},
	}
	matches := Aggregate(candidates, DefaultConfig())
	require.Len(t, matches, 1)
	assert.True(t, matches[0].CitationFlag)
	assert.InDelta(t, 0.9*0.85, matches[0].Combined, 1e-9)
}

func TestAggregateSkipsPenaltyWhenCitingTheMatchedDoc(t *testing.T) {
	candidates := []Candidate{
		{
			QueryChunkID:    "q#0",
			MatchedChunkID:  "d1#0",
			MatchedDocID:    "d1",
			InputText:       "as noted (Doe, 2020)",
			MatchedDocTitle: "Doe: A Survey of Widgets",
			Semantic:        0.9,
			Lexical:         0.9,
		},
	}
	matches := Aggregate(candidates, DefaultConfig())
	require.Len(t, matches, 1)
	assert.True(t, matches[0].CitationFlag)
	assert.InDelta(t, 0.9, matches[0].Combined, 1e-9)
}

func TestAggregateDiscardsBelowThreshold(t *testing.T) {
	candidates := []Candidate{
		{QueryChunkID: "q#0", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "x", Semantic: 0.1, Lexical: 0.1},
	}
	matches := Aggregate(candidates, DefaultConfig())
	assert.Empty(t, matches)
}

func TestAggregateCapsPerSource(t *testing.T) {
	var candidates []Candidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, Candidate{
			QueryChunkID:   "q#0",
			MatchedChunkID: "d1#" + string(rune('0'+i)),
			MatchedDocID:   "d1",
			InputText:    "unique text block",
			Semantic:       0.9,
			Lexical:        0.9,
		})
	}
	cfg := DefaultConfig()
	matches := Aggregate(candidates, cfg)
	assert.LessOrEqual(t, len(matches), cfg.MaxResultsPerSource)
}

func TestAggregateDedupKeepsHighestScore(t *testing.T) {
	candidates := []Candidate{
		{QueryChunkID: "q#0", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "x", Semantic: 0.9, Lexical: 0.9},
		{QueryChunkID: "q#1", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "x", Semantic: 0.6, Lexical: 0.6},
	}
	matches := Aggregate(candidates, DefaultConfig())
	require.Len(t, matches, 1)
	assert.Equal(t, "q#0", matches[0].QueryChunkID)
}

func TestAggregateRanksByCombinedDescending(t *testing.T) {
	candidates := []Candidate{
		{QueryChunkID: "q#0", MatchedChunkID: "d1#0", MatchedDocID: "d1", InputText: "x", Semantic: 0.6, Lexical: 0.6},
		{QueryChunkID: "q#0", MatchedChunkID: "d2#0", MatchedDocID: "d2", InputText: "x", Semantic: 0.9, Lexical: 0.9},
	}
	matches := Aggregate(candidates, DefaultConfig())
	require.Len(t, matches, 2)
	assert.Equal(t, "d2", matches[0].MatchedDocID)
}

func TestDiversifySelectPenalisesRedundantPicks(t *testing.T) {
	d := NewDiversify()
	matches := []Match{
		{MatchedChunkID: "a", Combined: 0.9},
		{MatchedChunkID: "b", Combined: 0.89},
		{MatchedChunkID: "c", Combined: 0.6},
	}
	sim := func(x, y Match) float64 {
		if (x.MatchedChunkID == "a" && y.MatchedChunkID == "b") || (x.MatchedChunkID == "b" && y.MatchedChunkID == "a") {
			return 0.95 // near-duplicate
		}
		return 0.1
	}
	selected := d.Select(matches, 2, sim)
	require.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].MatchedChunkID)
	assert.Equal(t, "c", selected[1].MatchedChunkID) // less redundant than b despite lower raw score
}
