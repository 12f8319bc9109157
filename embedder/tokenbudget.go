package embedder

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token cost of embedder batches and can report
// how many leading texts fit a token budget (FitBatch). BatchedEmbedder does
// not use it: its batches are sized by the fixed BatchSize count only.
// Adapted from the teacher's contrib/tokenizer/tiktoken wrapper.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter builds a TokenCounter for the given model or encoding
// name, trying model-aware resolution first and falling back to a direct
// encoding name (e.g. "cl100k_base").
func NewTokenCounter(nameOrModel string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(nameOrModel)
	if err != nil {
		enc, err = tiktoken.GetEncoding(nameOrModel)
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{enc: enc}, nil
}

// Count returns the number of tokens text encodes to.
func (t *TokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// FitBatch greedily packs texts into the longest prefix whose total token
// count stays within budget, returning how many leading texts fit.
func (t *TokenCounter) FitBatch(texts []string, budget int) int {
	total := 0
	for i, text := range texts {
		total += t.Count(text)
		if total > budget {
			return i
		}
	}
	return len(texts)
}
