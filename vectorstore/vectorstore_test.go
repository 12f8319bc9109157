package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusguard/plagdetect/document"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
}

func TestNumCandidatesForFloor(t *testing.T) {
	assert.Equal(t, 100, NumCandidatesFor(5))
	assert.Equal(t, 200, NumCandidatesFor(20))
}

func TestInMemoryStoreQueryRespectsExclusionAndCap(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	chunks := []document.Chunk{
		{ID: "a#0", DocID: "a", Text: "t1", Embedding: []float32{1, 0, 0}},
		{ID: "a#1", DocID: "a", Text: "t2", Embedding: []float32{1, 0, 0}},
		{ID: "a#2", DocID: "a", Text: "t3", Embedding: []float32{1, 0, 0}},
		{ID: "a#3", DocID: "a", Text: "t4", Embedding: []float32{1, 0, 0}},
		{ID: "b#0", DocID: "b", Text: "t5", Embedding: []float32{1, 0, 0}},
		{ID: "excluded#0", DocID: "excluded", Text: "t6", Embedding: []float32{1, 0, 0}},
	}
	require.NoError(t, s.Upsert(ctx, chunks))

	matches, err := s.Query(ctx, []float32{1, 0, 0}, QueryOptions{
		K:                   10,
		MinScore:            0.5,
		MaxResultsPerSource: 3,
		ExcludeDocIDs:       map[string]struct{}{"excluded": {}},
	})
	require.NoError(t, err)

	perSource := map[string]int{}
	for _, m := range matches {
		perSource[m.DocID]++
		assert.NotEqual(t, "excluded", m.DocID)
	}
	assert.LessOrEqual(t, perSource["a"], 3)
}

func TestInMemoryStoreDeleteRemovesDocument(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, []document.Chunk{
		{ID: "a#0", DocID: "a", Text: "t", Embedding: []float32{1, 0}},
	}))
	require.Equal(t, 1, s.Count())
	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, 0, s.Count())
}
