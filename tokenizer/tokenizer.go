// Package tokenizer provides the whitespace/word tokenisation shared by the
// chunker (§4.1 windows by whitespace-token count) and the lexical scorer
// (§4.4 lowercases and strips punctuation). It intentionally does not use a
// subword tokenizer: the spec's word-count invariants must hold exactly.
package tokenizer

import (
	"strings"
	"unicode"
)

// Words splits text on whitespace, the same boundary the chunker windows by.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordCount returns the whitespace-token count of text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NormalizeToken lowercases a token and strips leading/trailing punctuation,
// used by the lexical scorer's set/sequence comparisons. Stopwords are
// deliberately preserved (§4.4: "stopwords are NOT removed").
func NormalizeToken(tok string) string {
	tok = strings.ToLower(tok)
	return strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NormalizedWords tokenises and normalises text in one pass, dropping tokens
// that vanish entirely (e.g. a lone "--").
func NormalizedWords(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		n := NormalizeToken(f)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
