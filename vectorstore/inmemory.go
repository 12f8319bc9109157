package vectorstore

import (
	"context"
	"sync"

	"github.com/corpusguard/plagdetect/document"
)

// InMemoryStore implements Store over a guarded map, used for tests and
// small local corpora. Adapted from the teacher's
// contrib/vector/inmemory.InMemoryVectorStore.
type InMemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]document.Chunk // keyed by chunk id.
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{chunks: make(map[string]document.Chunk)}
}

func (s *InMemoryStore) CreateIndex(ctx context.Context, dims int) error { return nil }

func (s *InMemoryStore) Upsert(ctx context.Context, chunks []document.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c.Clone()
	}
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.chunks {
		if c.DocID == docID {
			delete(s.chunks, id)
		}
	}
	return nil
}

func (s *InMemoryStore) Query(ctx context.Context, queryVec []float32, opts QueryOptions) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]Match, 0, len(s.chunks))
	for _, c := range s.chunks {
		if opts.ExcludeDocIDs != nil {
			if _, excluded := opts.ExcludeDocIDs[c.DocID]; excluded {
				continue
			}
		}
		score := CosineSimilarity(queryVec, c.Embedding)
		candidates = append(candidates, Match{
			ChunkID: c.ID,
			DocID:   c.DocID,
			Text:    c.Text,
			Score:   score,
		})
	}

	sortMatchesDescending(candidates)
	numCandidates := opts.NumCandidates
	if numCandidates <= 0 {
		numCandidates = NumCandidatesFor(opts.K)
	}
	if numCandidates < len(candidates) {
		candidates = candidates[:numCandidates]
	}

	return postProcess(candidates, opts), nil
}

func (s *InMemoryStore) Close() error { return nil }

// Count returns the number of indexed chunks, for diagnostics/tests.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
