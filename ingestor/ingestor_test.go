package ingestor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/docregistry"
	pkgerrors "github.com/corpusguard/plagdetect/pkg/errors"
	"github.com/corpusguard/plagdetect/vectorstore"
)

type stubEmbedder struct {
	dim    int
	failOn string
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.failOn != "" {
		for _, t := range texts {
			if t == s.failOn {
				return nil, assert.AnError
			}
		}
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func newIngestor() (*Ingestor, *vectorstore.InMemoryStore, *docregistry.InMemoryRegistry) {
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	chunker := chunking.New(chunking.WithChunkSize(20), chunking.WithOverlap(0), chunking.WithMinChunkSize(1))
	emb := &stubEmbedder{dim: 3}
	return New(chunker, emb, store, registry), store, registry
}

func TestUploadIndexesAndRegisters(t *testing.T) {
	ing, store, registry := newIngestor()

	res, err := ing.Upload(context.Background(), Input{Title: "Doc", Content: "one two three four five"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.DocID)
	assert.Equal(t, 1, res.ChunkCount)

	doc, ok, err := registry.Get(context.Background(), res.DocID, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Doc", doc.Title)
	assert.Equal(t, 1, store.Count())
}

func TestUploadRejectsEmptyContent(t *testing.T) {
	ing, _, _ := newIngestor()

	_, err := ing.Upload(context.Background(), Input{Title: "Doc", Content: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.KindInvalidArgument, pkgerrors.KindOf(err))
}

func TestUploadLeavesNoPartialStateOnEmbedFailure(t *testing.T) {
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	chunker := chunking.New(chunking.WithChunkSize(20), chunking.WithOverlap(0), chunking.WithMinChunkSize(1))
	emb := &stubEmbedder{dim: 3, failOn: "one two three four five"}
	ing := New(chunker, emb, store, registry)

	_, err := ing.Upload(context.Background(), Input{Title: "Doc", Content: "one two three four five"})
	require.Error(t, err)
	assert.Equal(t, 0, store.Count())
	count, _ := registry.Count(context.Background())
	assert.Equal(t, 0, count)
}

func TestBatchUploadRecordsPerDocumentFailures(t *testing.T) {
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	chunker := chunking.New(chunking.WithChunkSize(20), chunking.WithOverlap(0), chunking.WithMinChunkSize(1))
	emb := &stubEmbedder{dim: 3, failOn: "bad content here now"}
	ing := New(chunker, emb, store, registry)

	results := ing.BatchUpload(context.Background(), []Input{
		{Title: "Good", Content: "good content here now"},
		{Title: "Bad", Content: "bad content here now"},
		{Title: "Also Good", Content: "also good content now"},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ing, _, _ := newIngestor()

	res, err := ing.Upload(context.Background(), Input{Title: "Doc", Content: "one two three four five"})
	require.NoError(t, err)

	ok, err := ing.Delete(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ing.Delete(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.False(t, ok)
}
