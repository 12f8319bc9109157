// Package citation implements C5: heuristic detection of in-text citation
// markers, used by the aggregator to discount matches that are properly
// attributed rather than plagiarised (§4.5). Detection is regex-based, in
// the same spirit as the teacher's lightweight pattern helpers elsewhere in
// the corpus, rather than a full bibliographic parser.
package citation

import (
	"regexp"
	"strings"
)

// Penalty is the multiplicative discount applied to a match's combined
// score when a citation marker is found that does not identify the
// matched document as its source (§4.5).
const Penalty = 0.15

var (
	authorYearPattern = regexp.MustCompile(`\(([A-Z][\w.'-]*)(?:(?:,?\s+(?:and|&)\s+[A-Z][\w.'-]*)|(?:\s+et al\.?))?,?\s+\d{4}[a-z]?\)`)
	numberedPattern   = regexp.MustCompile(`\[\d{1,3}(?:\s*,\s*\d{1,3})*\]`)
	doiPattern        = regexp.MustCompile(`10\.\d{4,9}/\S+`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
)

var patterns = []*regexp.Regexp{authorYearPattern, numberedPattern, doiPattern, urlPattern}

// Detect reports whether text contains at least one recognised citation
// marker.
func Detect(text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// CitesSource reports whether one of text's citation markers plausibly
// identifies docTitle/docMetadata as the thing it cites: an author-year
// marker whose surname appears in docTitle, or a DOI/URL marker that
// appears verbatim in docTitle or one of docMetadata's values. Numbered
// markers ("[1]", "[23]") carry no resolvable identity on their own, so
// they never count as citing a source.
func CitesSource(text, docTitle string, docMetadata map[string]string) bool {
	for _, m := range authorYearPattern.FindAllStringSubmatch(text, -1) {
		if containsFold(docTitle, m[1]) {
			return true
		}
	}
	for _, p := range []*regexp.Regexp{doiPattern, urlPattern} {
		for _, tok := range p.FindAllString(text, -1) {
			if containsFold(docTitle, tok) {
				return true
			}
			for _, v := range docMetadata {
				if containsFold(v, tok) {
					return true
				}
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Apply discounts score by Penalty when text has a citation marker that
// does not identify docTitle/docMetadata as the cited source (§4.5): a
// correctly-attributed quote of the very document it cites is not
// penalised. The discount fires at most once per chunk regardless of how
// many markers are present.
func Apply(score float64, text, docTitle string, docMetadata map[string]string) float64 {
	if Detect(text) && !CitesSource(text, docTitle, docMetadata) {
		return score * (1 - Penalty)
	}
	return score
}
