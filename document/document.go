// Package document holds the corpus data model: Documents and the Chunks
// derived from them during ingestion.
package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is a knowledge source ingested into the corpus. Once created it
// is never mutated except by delete (see §3 of the detection spec).
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Language  string            `json:"language"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ChunkCount int              `json:"chunk_count"`
}

// Chunk is a word-windowed slice of a Document produced by the chunker and
// embedded for similarity search.
type Chunk struct {
	ID         string    `json:"id"`
	DocID      string    `json:"doc_id"`
	Text       string    `json:"text"`
	Position   int       `json:"position"`
	WordCount  int       `json:"word_count"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// NewID returns a fresh UUIDv4 document identifier.
func NewID() string {
	return uuid.NewString()
}

// ChunkID derives the stable, deterministic id of the chunk at the given
// position within a document: "<doc_id>#<position>" per §3.
func ChunkID(docID string, position int) string {
	return fmt.Sprintf("%s#%d", docID, position)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the chunk, including its embedding slice.
func (c Chunk) Clone() Chunk {
	out := c
	if c.Embedding != nil {
		out.Embedding = append([]float32(nil), c.Embedding...)
	}
	return out
}
