// Package ingestor implements C8: turning raw document text into chunks,
// embeddings, and registry/vector-store writes, with all-or-nothing
// failure semantics for a single document (§4.8). Batch uploads process
// documents sequentially but share one batched embedding call per
// document, matching the teacher's rag/retriever.go IndexDocuments
// pattern.
package ingestor

import (
	"context"
	"strings"

	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/document"
	"github.com/corpusguard/plagdetect/embedder"
	pkgerrors "github.com/corpusguard/plagdetect/pkg/errors"
	"github.com/corpusguard/plagdetect/vectorstore"
)

// Input is a single document submitted for ingestion.
type Input struct {
	ID       string // optional; a UUIDv4 is generated if empty (§3).
	Title    string
	Content  string
	Language string
	Metadata map[string]string
}

// Result reports the outcome of ingesting one document.
type Result struct {
	DocID      string
	ChunkCount int
}

// BatchResult reports one document's outcome within a BatchUpload call.
// Per-document failures are recorded without aborting the remaining
// documents in the batch (§7: the sole exception to "no partial success").
type BatchResult struct {
	DocID      string
	ChunkCount int
	Err        error
}

// Ingestor writes documents into the document registry and vector store.
type Ingestor struct {
	chunker  chunking.Chunker
	embedder embedder.Embedder
	store    vectorstore.Store
	registry docregistry.Registry
}

// New builds an Ingestor from its four collaborators.
func New(chunker chunking.Chunker, emb embedder.Embedder, store vectorstore.Store, registry docregistry.Registry) *Ingestor {
	return &Ingestor{chunker: chunker, embedder: emb, store: store, registry: registry}
}

// Upload chunks, embeds, and indexes a single document. On any failure the
// document is left entirely unregistered: no partial chunk set is ever
// visible to search (§4.8 atomicity).
func (ing *Ingestor) Upload(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.Content) == "" {
		return Result{}, pkgerrors.Invalid("upload document", errEmptyContent)
	}

	id := in.ID
	if id == "" {
		id = document.NewID()
	}

	doc := document.Document{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Language: in.Language,
		Metadata: in.Metadata,
	}

	chunks, err := ing.chunker.Chunk(ctx, doc)
	if err != nil {
		return Result{}, pkgerrors.Internal("chunk document", err)
	}
	if len(chunks) == 0 {
		return Result{}, pkgerrors.Invalid("upload document", errNoChunks)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Result{}, classifyError("embed document", ctx, err)
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}

	if err := ing.store.Upsert(ctx, chunks); err != nil {
		return Result{}, classifyError("index document", ctx, err)
	}

	doc.ChunkCount = len(chunks)
	if err := ing.registry.Put(ctx, doc); err != nil {
		// The vector store write already succeeded; roll it back so a
		// registry failure never leaves orphaned, searchable chunks with
		// no matching document record (§4.8 atomicity).
		_ = ing.store.Delete(ctx, doc.ID)
		return Result{}, classifyError("register document", ctx, err)
	}

	return Result{DocID: doc.ID, ChunkCount: len(chunks)}, nil
}

// BatchUpload ingests inputs in order, recording each document's outcome
// independently. A failure on one document does not stop the rest of the
// batch from being attempted (§7).
func (ing *Ingestor) BatchUpload(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))
	for i, in := range inputs {
		res, err := ing.Upload(ctx, in)
		results[i] = BatchResult{DocID: res.DocID, ChunkCount: res.ChunkCount, Err: err}
	}
	return results
}

// Delete removes a document from both the registry and the vector store.
// It is idempotent: deleting an unknown id reports ok=false, not an error
// (§8 testable property).
func (ing *Ingestor) Delete(ctx context.Context, docID string) (bool, error) {
	ok, err := ing.registry.Delete(ctx, docID)
	if err != nil {
		return false, classifyError("delete document", ctx, err)
	}
	if !ok {
		return false, nil
	}
	if err := ing.store.Delete(ctx, docID); err != nil {
		return true, classifyError("delete document chunks", ctx, err)
	}
	return true, nil
}

func classifyError(op string, ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return pkgerrors.DeadlineExceeded(op, ctx.Err())
	}
	return pkgerrors.Unavailable(op, err)
}

var (
	errEmptyContent = pkgerrors.ErrInvalidInput
	errNoChunks     = pkgerrors.ErrInvalidInput
)
