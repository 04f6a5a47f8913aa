// Package markdown converts post bodies to HTML with goldmark.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders markdown to HTML. It is safe for concurrent use.
//
// Footnotes are emitted as goldmark does: references carry id="fnref:N" and
// link to "#fn:N", list items carry id="fn:N" and link back to "#fnref:N".
// Raw HTML in posts is passed through unchanged.
type Converter struct {
	md goldmark.Markdown
}

// New returns a Converter with the extensions the archive relies on.
func New() *Converter {
	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithXHTML()),
	)}
}

// Render converts src to an HTML fragment.
func (c *Converter) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
