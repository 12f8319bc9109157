package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAuthorDate(t *testing.T) {
	assert.True(t, Detect("as shown previously (Smith, 2020) the effect holds"))
	assert.True(t, Detect("multiple studies agree (Smith and Jones, 2019) on this"))
}

func TestDetectNumberedBracket(t *testing.T) {
	assert.True(t, Detect("this was established in prior work [12]"))
	assert.True(t, Detect("see [1, 2, 3] for background"))
}

func TestDetectDOI(t *testing.T) {
	assert.True(t, Detect("available at 10.1234/abcd.5678 for reference"))
}

func TestDetectURL(t *testing.T) {
	assert.True(t, Detect("described at https://example.com/paper for details"))
}

func TestDetectNoMarker(t *testing.T) {
	assert.False(t, Detect("this is plain text with no attribution at all"))
}

func TestCitesSourceMatchesAuthorSurnameInTitle(t *testing.T) {
	assert.True(t, CitesSource("as noted (Doe, 2021)", "Doe: A Survey of Widgets", nil))
}

func TestCitesSourceDoesNotMatchUnrelatedTitle(t *testing.T) {
	assert.False(t, CitesSource("as noted (Doe, 2021)", "Widgets at Scale", nil))
}

func TestCitesSourceMatchesURLInMetadata(t *testing.T) {
	meta := map[string]string{"source_url": "https://example.com/paper"}
	assert.True(t, CitesSource("described at https://example.com/paper", "Untitled", meta))
}

func TestCitesSourceNumberedMarkerNeverMatches(t *testing.T) {
	assert.False(t, CitesSource("as shown in [12]", "Twelve: A Study", nil))
}

func TestApplyDiscountsWhenNotCitingMatchedDoc(t *testing.T) {
	score := Apply(1.0, "as noted (Doe, 2021) and also [3] and [4]", "Unrelated Document", nil)
	assert.InDelta(t, 0.85, score, 1e-9)
}

func TestApplyNoOpWhenCitingTheMatchedDoc(t *testing.T) {
	score := Apply(1.0, "as noted (Doe, 2021)", "Doe: A Survey of Widgets", nil)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestApplyNoOpWithoutMarker(t *testing.T) {
	score := Apply(0.9, "no markers here", "Any Title", nil)
	assert.InDelta(t, 0.9, score, 1e-9)
}
