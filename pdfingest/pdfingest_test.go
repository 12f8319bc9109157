package pdfingest

import "testing"

func TestIsBoilerplateDiscardsShortBlocks(t *testing.T) {
	if !isBoilerplate("Page 3 of 42") {
		t.Fatal("expected short page-footer block to be discarded")
	}
}

func TestIsBoilerplateDiscardsKnownSectionHeadings(t *testing.T) {
	longReferences := "References\n" + repeat("Smith, J. (2020). A Study. Journal of Things. ", 10)
	if !isBoilerplate("Table of Contents") {
		t.Fatal("expected table-of-contents heading to be discarded")
	}
	if isBoilerplate(longReferences) {
		t.Fatal("a long references list body is not itself the bare heading pattern and should survive")
	}
}

func TestIsBoilerplateKeepsSubstantiveBlocks(t *testing.T) {
	body := repeat("This is a substantive paragraph describing the methodology in detail. ", 5)
	if isBoilerplate(body) {
		t.Fatalf("expected long substantive block to survive, got discarded: %q", body)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
