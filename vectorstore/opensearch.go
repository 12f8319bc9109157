package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	opensearchapi "github.com/opensearch-project/opensearch-go/v2"

	"github.com/corpusguard/plagdetect/document"
)

// OpenSearchConfig holds client connection parameters, mirroring the
// env-tag shape the rest of the retrieval pack uses for this client
// (github.com/caarlos0/env-compatible struct tags).
type OpenSearchConfig struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	Index        string   `env:"OPENSEARCH_INDEX" envDefault:"plagdetect-chunks"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
}

// OpenSearchStore implements Store against an OpenSearch cluster using its
// k-NN plugin, adapted from dmitrymomot-saaskit's pkg/opensearch connection
// helper. Each chunk is indexed as its own flat document (doc_id, chunk_id,
// text and a knn_vector embedding compared by cosine similarity); chunks are
// not nested under a parent document.
type OpenSearchStore struct {
	client *opensearchapi.Client
	index  string
}

var _ Store = (*OpenSearchStore)(nil)

// NewOpenSearchStore connects to OpenSearch and verifies the cluster is
// reachable.
func NewOpenSearchStore(ctx context.Context, cfg OpenSearchConfig) (*OpenSearchStore, error) {
	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.DisableRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "plagdetect-chunks"
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ping opensearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("ping opensearch: status %s", res.Status())
	}

	return &OpenSearchStore{client: client, index: index}, nil
}

// CreateIndex provisions the chunks index with a k-NN-enabled dense_vector
// field of the given dimensionality, if it does not already exist.
func (s *OpenSearchStore) CreateIndex(ctx context.Context, dims int) error {
	exists, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"doc_id":    map[string]any{"type": "keyword"},
				"chunk_id":  map[string]any{"type": "keyword"},
				"text":      map[string]any{"type": "text"},
				"embedding": map[string]any{
					"type":      "knn_vector",
					"dimension": dims,
					"method": map[string]any{
						"name":       "hnsw",
						"space_type": "cosinesimil",
						"engine":     "lucene",
					},
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal index mapping: %w", err)
	}

	res, err := s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: status %s", res.Status())
	}
	return nil
}

type chunkDoc struct {
	DocID     string    `json:"doc_id"`
	ChunkID   string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Upsert bulk-indexes chunks, one bulk request per call so a document's
// chunks land atomically from the caller's perspective.
func (s *OpenSearchStore) Upsert(ctx context.Context, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, c := range chunks {
		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": c.ID}}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal bulk meta: %w", err)
		}
		doc := chunkDoc{DocID: c.DocID, ChunkID: c.ID, Text: c.Text, Embedding: c.Embedding}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal chunk doc: %w", err)
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.index),
	)
	if err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk upsert: status %s", res.Status())
	}
	return nil
}

// Delete removes every chunk of docID via a delete-by-query.
func (s *OpenSearchStore) Delete(ctx context.Context, docID string) error {
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"doc_id": docID},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("marshal delete query: %w", err)
	}

	res, err := s.client.DeleteByQuery([]string{s.index}, bytes.NewReader(body),
		s.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("delete by query: status %s", res.Status())
	}
	return nil
}

type knnSearchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64  `json:"_score"`
			Source chunkDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Query runs a k-NN search against the embedding field and applies the
// shared min-score/per-source-cap/ordering post-processing.
func (s *OpenSearchStore) Query(ctx context.Context, queryVec []float32, opts QueryOptions) ([]Match, error) {
	numCandidates := opts.NumCandidates
	if numCandidates <= 0 {
		numCandidates = NumCandidatesFor(opts.K)
	}

	knnQuery := map[string]any{
		"vector": queryVec,
		"k":      numCandidates,
	}

	var filter []map[string]any
	if len(opts.ExcludeDocIDs) > 0 {
		ids := make([]string, 0, len(opts.ExcludeDocIDs))
		for id := range opts.ExcludeDocIDs {
			ids = append(ids, id)
		}
		filter = append(filter, map[string]any{
			"bool": map[string]any{
				"must_not": map[string]any{
					"terms": map[string]any{"doc_id": ids},
				},
			},
		})
	}
	if len(filter) > 0 {
		knnQuery["filter"] = map[string]any{"bool": map[string]any{"must": filter}}
	}

	body := map[string]any{
		"size": numCandidates,
		"query": map[string]any{
			"knn": map[string]any{"embedding": knnQuery},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal knn query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("knn search: status %s", res.Status())
	}

	var parsed knnSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode knn response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		matches = append(matches, Match{
			ChunkID: h.Source.ChunkID,
			DocID:   h.Source.DocID,
			Text:    h.Source.Text,
			Score:   h.Score,
		})
	}

	return postProcess(matches, opts), nil
}

// Close is a no-op: the opensearch-go client owns no long-lived resources
// beyond its internal HTTP transport.
func (s *OpenSearchStore) Close() error { return nil }

// IndexName reports the index this store targets, for diagnostics.
func (s *OpenSearchStore) IndexName() string { return s.index }
