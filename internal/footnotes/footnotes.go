// Package footnotes keeps footnote identifiers unique when several rendered
// documents are composed onto one page.
package footnotes

import (
	"regexp"
	"strconv"
)

var (
	// colonAttr matches goldmark's footnote ids: fn:1, fnref:1 and fnrefK:N for
	// repeated references. Auto-generated heading ids never contain ':'.
	colonAttr = regexp.MustCompile(`((?:id|href)="#?)(fnref\d*:\d+|fn:\d+)(")`)

	// The bare fn1 and fnref1 forms are also valid heading ids, so they are
	// only rewritten inside footnote markup.
	footnoteTag = regexp.MustCompile(`<(?:sup|li|a)\b[^>]*>`)
	bareAttr    = regexp.MustCompile(`((?:id|href)="#?)(fn(?:ref)?\d+)(")`)
	bareID      = regexp.MustCompile(`\bid="(fn(?:ref)?\d+)"`)
)

// Offsetter suffixes footnote identifiers with a per-document counter.
// A zero Offsetter is ready to use; it is not safe for concurrent use and
// should live for exactly one composed page.
type Offsetter struct {
	next int
}

// Apply rewrites every footnote identifier in html with the current counter
// as a "-N" suffix, then advances the counter. All identifiers of one
// document receive the same suffix, so anchors keep matching their
// back-references.
func (o *Offsetter) Apply(html string) string {
	suffix := "-" + strconv.Itoa(o.next)
	o.next++

	html = colonAttr.ReplaceAllString(html, "${1}${2}"+suffix+"${3}")

	defined := bareFootnoteIDs(html)
	if len(defined) == 0 {
		return html
	}
	return footnoteTag.ReplaceAllStringFunc(html, func(tag string) string {
		return bareAttr.ReplaceAllStringFunc(tag, func(attr string) string {
			m := bareAttr.FindStringSubmatch(attr)
			if !defined[m[2]] {
				return attr
			}
			return m[1] + m[2] + suffix + m[3]
		})
	})
}

// bareFootnoteIDs collects bare footnote ids declared on footnote markup.
func bareFootnoteIDs(html string) map[string]bool {
	ids := make(map[string]bool)
	for _, tag := range footnoteTag.FindAllString(html, -1) {
		for _, m := range bareID.FindAllStringSubmatch(tag, -1) {
			ids[m[1]] = true
		}
	}
	return ids
}
