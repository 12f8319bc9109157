// Package docregistry persists Document metadata and content so the
// detector and GetDocument/DeleteDocument/SearchDocuments RPCs can look
// documents up without touching the vector store (§6). Grounded in the
// teacher's memory/store package: Postgres for the durable backend, an
// in-memory implementation for tests and local runs.
package docregistry

import (
	"context"

	"github.com/corpusguard/plagdetect/document"
)

// SearchQuery filters SearchDocuments results (supplemented feature: §6
// requires the RPC but spec.md does not detail its semantics).
type SearchQuery struct {
	Text   string // substring match against title/content, case-insensitive.
	Limit  int
	Offset int
}

// Registry stores and retrieves Document metadata and content.
type Registry interface {
	// Put persists doc, creating or overwriting it wholesale (ingestion is
	// the only writer; documents are otherwise immutable per §3).
	Put(ctx context.Context, doc document.Document) error

	// Get returns the document with id. includeContent controls whether
	// the (potentially large) Content field is populated.
	Get(ctx context.Context, id string, includeContent bool) (document.Document, bool, error)

	// Delete removes the document with id. It is idempotent: deleting an
	// unknown id reports ok=false rather than an error.
	Delete(ctx context.Context, id string) (ok bool, err error)

	// Search returns documents matching q, newest first, with the
	// requested pagination window applied.
	Search(ctx context.Context, q SearchQuery) ([]document.Document, int, error)

	// Count returns the total number of registered documents.
	Count(ctx context.Context) (int, error)

	Close() error
}
