// Package chunking implements C1: normalising input text and splitting it
// into overlapping, word-windowed chunks (spec §4.1). The windowing
// algorithm is adapted from the teacher's rag/chunking.SimpleChunker, but
// replaces heading/paragraph-aware splitting with the fixed word-window
// policy the detector's numerical contract depends on.
package chunking

import (
	"context"
	"strings"
	"unicode"

	"github.com/corpusguard/plagdetect/document"
	"github.com/corpusguard/plagdetect/tokenizer"
)

// Chunker splits normalised document content into ordered, overlapping
// word-windowed chunks.
type Chunker interface {
	Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error)
}

// Config controls the windowing policy (§6 env vars: CHUNK_SIZE,
// CHUNK_OVERLAP, MIN_CHUNK_SIZE).
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// DefaultConfig returns the smaller of the two documented default sets
// (100/20/30), adopted per §9's design note.
func DefaultConfig() Config {
	return Config{ChunkSize: 100, ChunkOverlap: 20, MinChunkSize: 30}
}

// LargePreset returns the alternate, larger default set (250/50/50) that the
// source documentation also mentions; exposed so callers can opt into it
// explicitly (§9).
func LargePreset() Config {
	return Config{ChunkSize: 250, ChunkOverlap: 50, MinChunkSize: 50}
}

// Option customises a WordWindowChunker.
type Option func(*Config)

// WithChunkSize overrides the window size in words.
func WithChunkSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ChunkSize = n
		}
	}
}

// WithOverlap overrides the overlap size in words.
func WithOverlap(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.ChunkOverlap = n
		}
	}
}

// WithMinChunkSize overrides the minimum trailing-chunk size in words.
func WithMinChunkSize(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MinChunkSize = n
		}
	}
}

var _ Chunker = (*WordWindowChunker)(nil)

// WordWindowChunker implements the fixed overlapping word-window policy of
// §4.1.
type WordWindowChunker struct {
	cfg Config
}

// New constructs a WordWindowChunker with the 100/20/30 defaults, or the
// overrides supplied via Option.
func New(opts ...Option) *WordWindowChunker {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WordWindowChunker{cfg: cfg}
}

// Normalize collapses whitespace runs, strips control characters, and keeps
// letters/digits/punctuation, preserving casing (§4.1 steps 1-3).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := false
	for _, r := range text {
		switch {
		case unicode.IsControl(r) && r != '\n' && r != '\t':
			continue
		case unicode.IsSpace(r):
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		default:
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// Chunk normalises doc.Content and splits it into overlapping word windows.
// Empty or whitespace-only input yields zero chunks (§4.1 failure mode).
func (c *WordWindowChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	normalized := Normalize(doc.Content)
	if normalized == "" {
		return nil, nil
	}

	words := tokenizer.Words(normalized)
	if len(words) == 0 {
		return nil, nil
	}

	size := c.cfg.ChunkSize
	overlap := c.cfg.ChunkOverlap
	minSize := c.cfg.MinChunkSize
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []document.Chunk
	position := 0
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]

		// Trailing runt: merge into the previous chunk instead of emitting
		// a new one (§4.1).
		if len(window) < minSize && len(chunks) > 0 {
			prev := &chunks[len(chunks)-1]
			prevStart := start - step
			merged := words[prevStart:end]
			prev.Text = strings.Join(merged, " ")
			prev.WordCount = len(merged)
			break
		}

		chunks = append(chunks, document.Chunk{
			ID:        document.ChunkID(doc.ID, position),
			DocID:     doc.ID,
			Text:      strings.Join(window, " "),
			Position:  position,
			WordCount: len(window),
		})
		position++

		if end == len(words) {
			break
		}
	}

	// A single runt-only document (fewer words than minSize and no prior
	// chunk to merge into) still yields the one chunk it produced above;
	// the invariant "chunk_count(T) >= 1 for |T| >= min_chunk_size" holds
	// because that branch is only taken when len(chunks) > 0.
	return chunks, nil
}
