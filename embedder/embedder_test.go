package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	dim       int
	calls     [][]string
	failTimes int
}

func (f *fakeBackend) Dimension() int { return f.dim }

func (f *fakeBackend) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.failTimes > 0 {
		f.failTimes--
		return nil, assert.AnError
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

type fakeCache struct {
	store map[string][]float32
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]float32{}} }

func (c *fakeCache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	v, ok := c.store[text]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, text string, embedding []float32) error {
	c.store[text] = embedding
	return nil
}

func TestBatchedEmbedderDeduplicatesRepeatedText(t *testing.T) {
	backend := &fakeBackend{dim: 1}
	be := New(backend, nil, DefaultConfig())

	vecs, err := be.EmbedBatch(context.Background(), []string{"a", "bb", "a", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 4)
	assert.Equal(t, vecs[0], vecs[2])

	total := 0
	for _, call := range backend.calls {
		total += len(call)
	}
	assert.Equal(t, 3, total) // "a" embedded once despite appearing twice.
}

func TestBatchedEmbedderUsesCache(t *testing.T) {
	backend := &fakeBackend{dim: 1}
	cache := newFakeCache()
	cache.store["cached"] = []float32{9}
	be := New(backend, cache, DefaultConfig())

	vecs, err := be.EmbedBatch(context.Background(), []string{"cached", "fresh"})
	require.NoError(t, err)
	assert.Equal(t, []float32{9}, vecs[0])
	assert.Len(t, backend.calls, 1)
	assert.Equal(t, []string{"fresh"}, backend.calls[0])
}

func TestBatchedEmbedderRespectsBatchSize(t *testing.T) {
	backend := &fakeBackend{dim: 1}
	be := New(backend, nil, Config{BatchSize: 2, MaxRetries: 1, RetryBase: 0})

	_, err := be.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	require.Len(t, backend.calls, 3)
	assert.Len(t, backend.calls[0], 2)
	assert.Len(t, backend.calls[2], 1)
}

func TestBatchedEmbedderRetriesOnFailure(t *testing.T) {
	backend := &fakeBackend{dim: 1, failTimes: 1}
	be := New(backend, nil, Config{BatchSize: 10, MaxRetries: 3, RetryBase: 0})

	vecs, err := be.EmbedBatch(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Len(t, backend.calls, 2) // first call failed, second succeeded.
}

func TestBatchedEmbedderEmptyInput(t *testing.T) {
	backend := &fakeBackend{dim: 1}
	be := New(backend, nil, DefaultConfig())

	vecs, err := be.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
