package footnotes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/markdown"
)

const legacyDoc = `<p>Claim<sup id="fnref1"><a href="#fn1">1</a></sup></p>
<ol><li id="fn1">Note <a href="#fnref1">back</a></li></ol>`

var (
	idAttr   = regexp.MustCompile(`id="([^"]+)"`)
	hrefAttr = regexp.MustCompile(`href="#([^"]+)"`)
)

func attrs(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestApply_TwoDocumentsGetDistinctIDs(t *testing.T) {
	var o Offsetter
	page := o.Apply(legacyDoc) + o.Apply(legacyDoc)

	ids := attrs(idAttr, page)
	assert.ElementsMatch(t, []string{"fnref1-0", "fn1-0", "fnref1-1", "fn1-1"}, ids)

	// Every link must point at an id present on the page.
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	for _, href := range attrs(hrefAttr, page) {
		assert.True(t, set[href], "dangling href %s", href)
	}
	assert.Equal(t, 2, o.next)
}

func TestApply_GoldmarkOutput(t *testing.T) {
	conv := markdown.New()
	doc, err := conv.Render([]byte("One[^1] and two[^1].\n\n[^1]: Note."))
	require.NoError(t, err)

	var o Offsetter
	page := o.Apply(doc) + o.Apply(doc)

	ids := attrs(idAttr, page)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	for _, href := range attrs(hrefAttr, page) {
		assert.True(t, seen[href], "dangling href %s", href)
	}
	assert.Contains(t, page, `id="fn:1-0"`)
	assert.Contains(t, page, `id="fn:1-1"`)
}

func TestApply_LeavesOtherAnchorsAlone(t *testing.T) {
	in := `<a href="#fnord">x</a><h2 id="fn">y</h2><a href="/fn1">z</a><p>fn1 in text</p>`
	var o Offsetter
	assert.Equal(t, in, o.Apply(in))
}

func TestApply_CounterAdvancesWithoutFootnotes(t *testing.T) {
	var o Offsetter
	o.Apply("<p>plain</p>")
	assert.Contains(t, o.Apply(legacyDoc), `id="fn1-1"`)
}

func TestApply_HeadingIDsThatLookLikeFootnotes(t *testing.T) {
	conv := markdown.New()
	doc, err := conv.Render([]byte("## fn2\n\nText[^1].\n\n[^1]: Note."))
	require.NoError(t, err)
	require.Contains(t, doc, `id="fn2"`)

	var o Offsetter
	out := o.Apply(doc)
	assert.Contains(t, out, `id="fn2"`)
	assert.Contains(t, out, `id="fn:1-0"`)
	assert.Contains(t, out, `href="#fn:1-0"`)
}

func TestApply_LegacyDocumentKeepsHeadingIDs(t *testing.T) {
	in := `<h2 id="fn3">fn3</h2>` + legacyDoc
	var o Offsetter
	out := o.Apply(in)
	assert.Contains(t, out, `<h2 id="fn3">`)
	assert.Contains(t, out, `<li id="fn1-0">`)
	assert.Contains(t, out, `<sup id="fnref1-0"><a href="#fn1-0">`)
}
