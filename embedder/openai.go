package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIBackend implements Embedder over the OpenAI embeddings API,
// adapted from the teacher's contrib/embedder/openai.OpenAIEmbedder.
type OpenAIBackend struct {
	client    openaisdk.Client
	model     openaisdk.EmbeddingModel
	dimension int
}

var _ Embedder = (*OpenAIBackend)(nil)

// NewOpenAIBackend constructs an OpenAIBackend. baseURL may be empty to use
// the default OpenAI endpoint.
func NewOpenAIBackend(apiKey, baseURL string, model openaisdk.EmbeddingModel, dimension int) *OpenAIBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIBackend{
		client:    openaisdk.NewClient(opts...),
		model:     model,
		dimension: dimension,
	}
}

// Dimension returns the configured embedding length.
func (b *OpenAIBackend) Dimension() int {
	return b.dimension
}

// EmbedBatch sends texts to the OpenAI embeddings endpoint in a single
// request and converts the response to fixed-length float32 vectors.
func (b *OpenAIBackend) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := b.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: b.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("embeddings response size mismatch")
	}

	out := make([][]float32, len(resp.Data))
	for i, emb := range resp.Data {
		out[i] = convertVector(emb.Embedding, b.dimension)
	}
	return out, nil
}

func convertVector(input []float64, expected int) []float32 {
	vec := make([]float32, expected)
	for i := 0; i < len(input) && i < expected; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}
