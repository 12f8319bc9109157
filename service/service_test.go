package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusguard/plagdetect/audit"
	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/detector"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/ingestor"
	"github.com/corpusguard/plagdetect/vectorstore"
)

// stubEmbedder returns a fixed-length zero vector with a single 1 at an
// index derived from text length, giving deterministic, cheap-to-reason
// similarity behaviour without a real embedding backend.
type stubEmbedder struct{ dim int }

func (e *stubEmbedder) Dimension() int { return e.dim }

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, e.dim)
		v[len(t)%e.dim] = 1
		out[i] = v
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *docregistry.InMemoryRegistry, *vectorstore.InMemoryStore) {
	t.Helper()
	chunker := chunking.New(chunking.WithChunkSize(20), chunking.WithOverlap(0), chunking.WithMinChunkSize(1))
	emb := &stubEmbedder{dim: 32}
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	auditLog := audit.NewInMemoryLog()

	det := detector.New(chunker, emb, store, registry, nil, detector.DefaultConfig())
	ing := ingestor.New(chunker, emb, store, registry)

	svc := New(det, ing, registry, auditLog, nil)
	return svc, registry, store
}

func TestUploadThenGetDocumentRoundTrips(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.UploadDocument(ctx, UploadRequest{Title: "doc one", Content: "the quick brown fox jumps over the lazy dog"})
	require.NoError(t, err)
	require.NotEmpty(t, res.DocID)

	doc, err := svc.GetDocument(ctx, res.DocID, true)
	require.NoError(t, err)
	assert.Equal(t, "doc one", doc.Title)
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", doc.Content)
}

func TestGetDocumentUnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetDocument(context.Background(), "missing-id", false)
	require.Error(t, err)
}

func TestUploadDocumentRejectsEmptyContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.UploadDocument(context.Background(), UploadRequest{Title: "empty"})
	require.Error(t, err)
}

func TestDeleteDocumentIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.UploadDocument(ctx, UploadRequest{Title: "doc", Content: "some words go here for chunking purposes"})
	require.NoError(t, err)

	ok, err := svc.DeleteDocument(ctx, res.DocID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.DeleteDocument(ctx, res.DocID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBatchUploadRecordsPerDocumentOutcomes(t *testing.T) {
	svc, _, _ := newTestService(t)
	results, err := svc.BatchUpload(context.Background(), BatchUploadRequest{Documents: []UploadRequest{
		{Title: "a", Content: "alpha beta gamma delta epsilon zeta eta theta"},
		{Title: "b", Content: ""},
		{Title: "c", Content: "iota kappa lambda mu nu xi omicron pi"},
	}})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestCheckPlagiarismExactDuplicateIsCritical(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	text := "the quick brown fox jumps over the lazy dog near the riverbank"
	_, err := svc.UploadDocument(ctx, UploadRequest{Title: "source", Content: text})
	require.NoError(t, err)

	verdict, err := svc.CheckPlagiarism(ctx, CheckRequest{Text: text, Options: detector.DefaultCheckOptions()})
	require.NoError(t, err)
	assert.Equal(t, detector.SeverityCritical, verdict.Severity)
	assert.InDelta(t, 100.0, verdict.Percentage, 0.5)
}

func TestCheckPlagiarismRejectsEmptyText(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CheckPlagiarism(context.Background(), CheckRequest{Text: "   "})
	require.Error(t, err)
}

func TestHealthCheckReportsRegistryReachable(t *testing.T) {
	svc, _, _ := newTestService(t)
	status := svc.HealthCheck(context.Background())
	assert.True(t, status.Healthy)
}

func TestSearchDocumentsFindsBySubstring(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UploadDocument(ctx, UploadRequest{Title: "machine learning basics", Content: "gradient descent optimizes loss functions iteratively over time"})
	require.NoError(t, err)

	docs, total, err := svc.SearchDocuments(ctx, SearchRequest{Text: "machine learning", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "machine learning basics", docs[0].Title)
}

func TestPdfOperationsDisabledWithoutFetcher(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.IndexPdfFromMinio(ctx, PdfRequest{ObjectPath: "papers/one.pdf"})
	require.Error(t, err)

	_, err = svc.CheckPdfFromMinio(ctx, PdfRequest{ObjectPath: "papers/one.pdf"})
	require.Error(t, err)
}
