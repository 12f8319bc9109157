package detector

import (
	"context"
	"hash/fnv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/document"
	"github.com/corpusguard/plagdetect/tokenizer"
	"github.com/corpusguard/plagdetect/vectorstore"
)

// hashingEmbedder is a deterministic stand-in for a real embedding backend:
// it places one unit of mass per normalised token into a hashed bucket, so
// cosine similarity tracks token overlap the way a real embedding space
// would for near-duplicate text. It exists purely to make detector tests
// reproducible without a network call.
type hashingEmbedder struct {
	dim int
}

func (h *hashingEmbedder) Dimension() int { return h.dim }

func (h *hashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, h.dim)
		for _, tok := range tokenizer.NormalizedWords(text) {
			sum := fnv.New32a()
			_, _ = sum.Write([]byte(tok))
			vec[int(sum.Sum32())%h.dim]++
		}
		out[i] = vec
	}
	return out, nil
}

// testRig bundles an isolated detector and its backing stores for one test.
type testRig struct {
	detector *Detector
	store    *vectorstore.InMemoryStore
	registry *docregistry.InMemoryRegistry
	chunker  *chunking.WordWindowChunker
	embedder *hashingEmbedder
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	chunker := chunking.New(chunking.WithChunkSize(50), chunking.WithOverlap(0), chunking.WithMinChunkSize(1))
	emb := &hashingEmbedder{dim: 4096}

	cfg := DefaultConfig()
	cfg.Chunking = chunking.Config{ChunkSize: 50, ChunkOverlap: 0, MinChunkSize: 1}
	cfg.MaxParallelSearches = 4
	cfg.RequestTimeout = 10 * time.Second
	cfg.EmbedTimeout = 5 * time.Second
	cfg.KNNTimeout = 5 * time.Second

	det := New(chunker, emb, store, registry, nil, cfg)
	return &testRig{detector: det, store: store, registry: registry, chunker: chunker, embedder: emb}
}

// ingest chunks, embeds, and indexes content as a document, mirroring what
// the ingestor package does at upload time (§4.8), so tests exercise the
// same chunk/embedding path CheckPlagiarism does.
func (r *testRig) ingest(t *testing.T, id, title, content string) {
	t.Helper()
	ctx := context.Background()

	chunks, err := r.chunker.Chunk(ctx, document.Document{ID: id, Content: content})
	require.NoError(t, err)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}

	require.NoError(t, r.store.Upsert(ctx, chunks))
	require.NoError(t, r.registry.Put(ctx, document.Document{
		ID: id, Title: title, Content: content, ChunkCount: len(chunks), CreatedAt: time.Unix(0, 0),
	}))
}

func TestCheckPlagiarismEmptyCorpusIsSafe(t *testing.T) {
	rig := newTestRig(t)

	verdict, err := rig.detector.CheckPlagiarism(context.Background(), "alpha bravo charlie delta echo", DefaultCheckOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, verdict.Percentage)
	assert.Equal(t, SeveritySafe, verdict.Severity)
	assert.Empty(t, verdict.Matches)
}

func TestCheckPlagiarismExactDuplicateIsCritical(t *testing.T) {
	rig := newTestRig(t)
	content := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	rig.ingest(t, "doc-1", "Source One", content)

	verdict, err := rig.detector.CheckPlagiarism(context.Background(), content, DefaultCheckOptions())
	require.NoError(t, err)

	assert.InDelta(t, 100.0, verdict.Percentage, 0.01)
	assert.Equal(t, SeverityCritical, verdict.Severity)
	require.Len(t, verdict.Matches, 1)
	assert.Equal(t, "doc-1", verdict.Matches[0].DocID)
}

func TestCheckPlagiarismMildParaphraseIsMediumBand(t *testing.T) {
	rig := newTestRig(t)
	original := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	rig.ingest(t, "doc-1", "Source One", original)

	// Shares the first 8 of 10 tokens with the source; the last two differ.
	paraphrase := "alpha bravo charlie delta echo foxtrot golf hotel xray yankee"
	verdict, err := rig.detector.CheckPlagiarism(context.Background(), paraphrase, DefaultCheckOptions())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, verdict.Percentage, 70.0)
	assert.Less(t, verdict.Percentage, 95.0)
	assert.Contains(t, []Severity{SeverityMedium, SeverityHigh}, verdict.Severity)
}

func TestCheckPlagiarismExclusionRemovesMatches(t *testing.T) {
	rig := newTestRig(t)
	content := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	rig.ingest(t, "doc-excluded", "Excluded Source", content)

	opts := DefaultCheckOptions()
	opts.ExcludeDocs = map[string]struct{}{"doc-excluded": {}}

	verdict, err := rig.detector.CheckPlagiarism(context.Background(), content, opts)
	require.NoError(t, err)

	assert.Equal(t, 0.0, verdict.Percentage)
	assert.Equal(t, SeveritySafe, verdict.Severity)
	assert.Empty(t, verdict.Matches)
}

func TestCheckPlagiarismCitationLowersSeverity(t *testing.T) {
	rig := newTestRig(t)
	original := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	rig.ingest(t, "doc-1", "Source One", original)

	uncited := original + " smith 2020"
	cited := original + " (Smith, 2020)"

	uncitedVerdict, err := rig.detector.CheckPlagiarism(context.Background(), uncited, DefaultCheckOptions())
	require.NoError(t, err)
	citedVerdict, err := rig.detector.CheckPlagiarism(context.Background(), cited, DefaultCheckOptions())
	require.NoError(t, err)

	assert.Less(t, citedVerdict.Percentage, uncitedVerdict.Percentage)
	assert.InDelta(t, uncitedVerdict.Percentage*0.85, citedVerdict.Percentage, 0.5)
}

func TestCheckPlagiarismMonotonicMinSimilarity(t *testing.T) {
	rig := newTestRig(t)
	content := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	rig.ingest(t, "doc-1", "Source One", content)

	loose := DefaultCheckOptions()
	loose.MinSimilarity = 0.1
	strict := DefaultCheckOptions()
	strict.MinSimilarity = 0.9

	looseVerdict, err := rig.detector.CheckPlagiarism(context.Background(), content, loose)
	require.NoError(t, err)
	strictVerdict, err := rig.detector.CheckPlagiarism(context.Background(), content, strict)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(looseVerdict.Matches), len(strictVerdict.Matches))
	assert.GreaterOrEqual(t, looseVerdict.Percentage, strictVerdict.Percentage)
}

func TestSeverityForPercentageBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want Severity
	}{
		{0, SeveritySafe},
		{49.9, SeveritySafe},
		{50, SeverityLow},
		{69.9, SeverityLow},
		{70, SeverityMedium},
		{84.9, SeverityMedium},
		{85, SeverityHigh},
		{94.9, SeverityHigh},
		{95, SeverityCritical},
		{100, SeverityCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SeverityForPercentage(c.pct))
	}
}
