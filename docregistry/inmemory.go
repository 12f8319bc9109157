package docregistry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/corpusguard/plagdetect/document"
)

// InMemoryRegistry implements Registry over a guarded map, used for tests
// and single-process local runs. Adapted from the teacher's
// memory/store.InMemoryStore.
type InMemoryRegistry struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

var _ Registry = (*InMemoryRegistry)(nil)

// NewInMemoryRegistry returns an empty InMemoryRegistry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{docs: make(map[string]document.Document)}
}

func (r *InMemoryRegistry) Put(ctx context.Context, doc document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *InMemoryRegistry) Get(ctx context.Context, id string, includeContent bool) (document.Document, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return document.Document{}, false, nil
	}
	out := doc.Clone()
	if !includeContent {
		out.Content = ""
	}
	return out, true, nil
}

func (r *InMemoryRegistry) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

func (r *InMemoryRegistry) Search(ctx context.Context, q SearchQuery) ([]document.Document, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]document.Document, 0, len(r.docs))
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	for _, doc := range r.docs {
		if needle == "" ||
			strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) {
			matches = append(matches, doc.Clone())
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if q.Limit > 0 && offset+q.Limit < end {
		end = offset + q.Limit
	}
	return matches[offset:end], total, nil
}

func (r *InMemoryRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}

func (r *InMemoryRegistry) Close() error { return nil }
