package audit

import (
	"context"
	"sync"
	"time"
)

// InMemoryLog implements Log over a guarded slice, for tests.
type InMemoryLog struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Log = (*InMemoryLog)(nil)

// NewInMemoryLog returns an empty InMemoryLog.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

func (l *InMemoryLog) Record(ctx context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a snapshot of recorded entries, for assertions in tests.
func (l *InMemoryLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *InMemoryLog) Close(ctx context.Context) error { return nil }
