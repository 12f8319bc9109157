// Package audit records an append-only history of detection requests for
// later analyst review. It is observational: nothing in C1-C8 reads it
// back, so it does not reintroduce the "no durable write-ahead logging"
// Non-goal. Grounded in the teacher's memory/store.MongoStore.
package audit

import (
	"context"
	"time"
)

// Entry is one CheckPlagiarism call's outcome and processing metrics.
type Entry struct {
	RequestID       string        `bson:"_id"`
	DocumentID      string        `bson:"document_id,omitempty"`
	Percentage      float64       `bson:"percentage"`
	Severity        string        `bson:"severity"`
	MatchCount      int           `bson:"match_count"`
	ChunkCount      int           `bson:"chunk_count"`
	Duration        time.Duration `bson:"duration_ns"`
	Err             string        `bson:"error,omitempty"`
	CreatedAt       time.Time     `bson:"created_at"`
}

// Log appends detection Entries.
type Log interface {
	Record(ctx context.Context, entry Entry) error
	Close(ctx context.Context) error
}
