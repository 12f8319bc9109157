// Package preprocess cleans raw document text — HTML markup, OCR
// artefacts, boilerplate noise — before it reaches the chunker, so
// chunk/word-count invariants aren't skewed by markup or navigation
// cruft. Adapted from the teacher's rag/preprocess.Cleaner, generalised
// from its web-scrape-specific noise patterns to document ingestion in
// general.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

var ligatureFixes = map[string]string{
	"ﬁ": "fi", "ﬂ": "fl",
	"—": "-", "–": "-",
	"·": ".", "•": "-",
}

// CleanBasic strips control characters (preserving newlines), repairs
// common ligature/OCR artefacts, and collapses redundant whitespace.
func CleanBasic(text string) string {
	if text == "" {
		return ""
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	for broken, fixed := range ligatureFixes {
		cleaned = strings.ReplaceAll(cleaned, broken, fixed)
	}

	cleaned = spacesRe.ReplaceAllString(cleaned, " ")
	cleaned = newlinesRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// HTMLToText extracts heading/paragraph/list/code/table content from HTML,
// discarding markup and script/style noise entirely.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var out []string
	doc.Find("h1,h2,h3,h4,p,li,pre,code,table").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1":
			out = append(out, "# "+strings.TrimSpace(s.Text()))
		case "h2":
			out = append(out, "## "+strings.TrimSpace(s.Text()))
		case "h3", "h4":
			out = append(out, "### "+strings.TrimSpace(s.Text()))
		case "p":
			out = append(out, strings.TrimSpace(s.Text()))
		case "li":
			out = append(out, "- "+strings.TrimSpace(s.Text()))
		case "pre", "code":
			out = append(out, "```\n"+strings.TrimSpace(s.Text())+"\n```")
		case "table":
			out = append(out, tableToText(s))
		}
	})
	return strings.Join(out, "\n\n"), nil
}

func tableToText(sel *goquery.Selection) string {
	var rows []string
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cols []string
		tr.Find("th,td").Each(func(_ int, td *goquery.Selection) {
			cols = append(cols, strings.TrimSpace(td.Text()))
		})
		if len(cols) > 0 {
			rows = append(rows, "| "+strings.Join(cols, " | ")+" |")
		}
	})
	return strings.Join(rows, "\n")
}

// RemoveDuplicateParagraphs drops exact-duplicate paragraphs (blank-line
// separated blocks), which both scraped HTML and repeated PDF
// headers/footers tend to produce.
func RemoveDuplicateParagraphs(text string) string {
	parts := strings.Split(text, "\n\n")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}

// Document runs the full cleanup pipeline over raw text destined for the
// chunker: control-character/ligature cleanup, then duplicate-paragraph
// removal.
func Document(raw string) string {
	cleaned := CleanBasic(raw)
	return RemoveDuplicateParagraphs(cleaned)
}
