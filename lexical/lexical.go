// Package lexical implements C4: the surface-level text similarity scorer
// that complements the embedder's semantic signal. It is grounded in the
// Jaccard/sequence-ratio style of rag's retrieval helpers, adapted to the
// symmetric/asymmetric dual-mode contract of §4.4.
package lexical

import (
	"github.com/corpusguard/plagdetect/tokenizer"
)

// Weights for the two scoring modes (§4.4).
const (
	symmetricJaccardWeight = 0.6
	symmetricLCSWeight     = 0.4

	asymmetricContainmentWeight = 0.6
	asymmetricCharSeqWeight     = 0.4

	// lenRatioThreshold selects asymmetric (containment) scoring when the
	// shorter text is not within this fraction of the longer one's length.
	lenRatioThreshold = 0.7
)

// Score computes the lexical similarity between two chunk texts, choosing
// symmetric or asymmetric scoring based on their relative lengths (§4.4).
func Score(a, b string) float64 {
	tokensA := tokenizer.NormalizedWords(a)
	tokensB := tokenizer.NormalizedWords(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	if lengthRatio(tokensA, tokensB) > lenRatioThreshold {
		return symmetricJaccardWeight*jaccard(tokensA, tokensB) + symmetricLCSWeight*lcsRatio(tokensA, tokensB)
	}
	return asymmetricContainmentWeight*containment(tokensA, tokensB) + asymmetricCharSeqWeight*charSequenceRatio(a, b)
}

// lengthRatio is the shorter token count divided by the longer, in (0, 1].
func lengthRatio(a, b []string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// jaccard is |A ∩ B| / |A ∪ B| over token sets.
func jaccard(a, b []string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// containment is |S ∩ L| / |S|, where S is the token set of whichever input
// token list is shorter and L that of the other, i.e. how much of the shorter
// text is contained in the longer one, used for the asymmetric near-duplicate
// case where one text is an excerpt of the other.
func containment(a, b []string) float64 {
	shorter, longer := a, b
	if len(longer) < len(shorter) {
		shorter, longer = longer, shorter
	}
	setShort := tokenSet(shorter)
	setLong := tokenSet(longer)
	if len(setShort) == 0 {
		return 0
	}
	hit := 0
	for t := range setShort {
		if _, ok := setLong[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(setShort))
}

// lcsRatio is the longest-common-subsequence length over tokens, normalised
// by the longer token sequence's length.
func lcsRatio(a, b []string) float64 {
	n := lcsLength(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return float64(n) / float64(longest)
}

func lcsLength(a, b []string) int {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

// charSequenceRatio is a Ratcliff/Obershelp-style matching-characters ratio
// over raw runes: 2*M / (|a|+|b|), where M is the total length of matching
// blocks found by recursively splitting on the longest common substring.
func charSequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matches := matchingBlockLength(ra, rb)
	return 2 * float64(matches) / float64(len(ra)+len(rb))
}

// matchingBlockLength recursively finds the longest common substring and
// sums match lengths on either side of it.
func matchingBlockLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	bestLen, aStart, bStart := longestCommonSubstring(a, b)
	if bestLen == 0 {
		return 0
	}
	left := matchingBlockLength(a[:aStart], b[:bStart])
	right := matchingBlockLength(a[aStart+bestLen:], b[bStart+bestLen:])
	return bestLen + left + right
}

func longestCommonSubstring(a, b []rune) (length, aStart, bStart int) {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	best, bestA, bestB := 0, 0, 0
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestA = i - curr[j]
					bestB = j - curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return best, bestA, bestB
}
