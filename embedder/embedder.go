// Package embedder implements C2: batched embedding of chunk text, with
// retry and an optional cache in front of the network call. Grounded in
// the teacher's vector.Embedder interface and contrib/embedder/openai's
// batching client.
package embedder

import (
	"context"
	"time"
)

// DefaultDimension is the embedding vector length the detector assumes
// when no backend-specific override applies (§6 EMBEDDING_DIMS).
const DefaultDimension = 768

// DefaultBatchSize bounds how many texts go into a single backend call.
const DefaultBatchSize = 32

// DefaultMaxRetries bounds how many attempts a batch embed call gets before
// giving up.
const DefaultMaxRetries = 3

// Embedder converts chunk text into fixed-length embedding vectors.
type Embedder interface {
	// Dimension reports the length of vectors this Embedder returns.
	Dimension() int

	// EmbedBatch embeds texts in input order. The returned slice has the
	// same length and order as texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Cache memoizes embeddings across calls, keyed by raw chunk text.
type Cache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, embedding []float32) error
}

// Config controls batching and retry behaviour shared by every backend.
type Config struct {
	BatchSize  int
	MaxRetries int
	RetryBase  time.Duration
}

// DefaultConfig returns the documented batching/retry defaults.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize, MaxRetries: DefaultMaxRetries, RetryBase: 200 * time.Millisecond}
}

// BatchedEmbedder wraps a backend Embedder with request de-duplication
// (embed each unique text once per call), cache lookups, batching, and
// exponential-backoff retry.
type BatchedEmbedder struct {
	backend Embedder
	cache   Cache
	cfg     Config
}

// New wraps backend with the given cache (nil disables caching) and
// Config.
func New(backend Embedder, cache Cache, cfg Config) *BatchedEmbedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	return &BatchedEmbedder{backend: backend, cache: cache, cfg: cfg}
}

// Dimension delegates to the backend.
func (e *BatchedEmbedder) Dimension() int {
	return e.backend.Dimension()
}

// EmbedBatch embeds texts, deduplicating repeated text within the call,
// consulting the cache first, and batching/retrying the remaining
// backend calls. The result preserves the order and length of texts.
func (e *BatchedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	// firstIndex maps a unique text to the first position it occupies in
	// texts, so the backend is asked to embed it only once.
	firstIndex := make(map[string]int)
	var toEmbed []string

	for i, text := range texts {
		if _, seen := firstIndex[text]; seen {
			continue
		}
		firstIndex[text] = i

		if e.cache != nil {
			if vec, ok, err := e.cache.Get(ctx, text); err == nil && ok {
				results[i] = vec
				continue
			}
		}
		toEmbed = append(toEmbed, text)
	}

	embedded, err := e.embedInBatches(ctx, toEmbed)
	if err != nil {
		return nil, err
	}

	for i, text := range toEmbed {
		idx := firstIndex[text]
		results[idx] = embedded[i]
		if e.cache != nil {
			_ = e.cache.Set(ctx, text, embedded[i])
		}
	}

	// Fill in duplicate positions from their first occurrence.
	for i, text := range texts {
		if results[i] == nil {
			results[i] = results[firstIndex[text]]
		}
	}

	return results, nil
}

func (e *BatchedEmbedder) embedInBatches(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vecs, err := e.embedWithRetry(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *BatchedEmbedder) embedWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	delay := e.cfg.RetryBase
	for attempt := 0; attempt < e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		vecs, err := e.backend.EmbedBatch(ctx, batch)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
