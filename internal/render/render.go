// Package render turns post sources into complete HTML pages.
//
// A page is the site header, the post header, the markdown body, the post
// footer and the site footer, in that order. Placeholders of the form
// @@key@@ in the body and site chrome are replaced from the document's
// merged metadata.
package render

import (
	"bytes"
	"html/template"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/markdown"
	"git.home.luguber.info/inful/daybook/internal/metadata"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/store"
)

// Derived metadata keys set on every rendered document.
const (
	KeyRelativeLink = "relativeLink"
	KeyPermalink    = "permalink"
	KeyLinked       = "linked"
	KeyTitle        = "title"
	KeyHeader       = "header"
	KeyFooter       = "footer"
	KeyBodyClass    = "bodyClass"
)

// Options configures a Renderer.
type Options struct {
	Marker   string
	Location *time.Location
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Renderer is safe for concurrent use once constructed.
type Renderer struct {
	conv         *markdown.Converter
	tpl          *Templates
	marker       string
	placeholders *regexp.Regexp
	funcs        Funcs
	logger       *slog.Logger
	recorder     metrics.Recorder
}

// New returns a Renderer over the given converter and site chrome.
func New(conv *markdown.Converter, tpl *Templates, opts Options) *Renderer {
	if opts.Marker == "" {
		opts.Marker = defaultMarker
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Renderer{
		conv:         conv,
		tpl:          tpl,
		marker:       opts.Marker,
		placeholders: placeholderPattern(opts.Marker),
		funcs:        Funcs{Location: opts.Location},
		logger:       opts.Logger,
		recorder:     opts.Recorder,
	}
}

// Defaults returns a copy of the site-wide metadata.
func (r *Renderer) Defaults() metadata.Map { return r.tpl.Defaults.Clone() }

// Funcs returns the template helpers bound to the site timezone.
func (r *Renderer) Funcs() Funcs { return r.funcs }

// Substitute replaces placeholders using this renderer's marker.
func (r *Renderer) Substitute(m metadata.Map, haystack string) string {
	return substitute(r.placeholders, m, haystack)
}

// Metadata parses and merges a document's metadata and adds the derived
// keys, without rendering its body.
func (r *Renderer) Metadata(id, source string) (metadata.Map, string, error) {
	lines, body := metadata.SplitSource(source, r.marker)
	logger := r.logger.With(logfields.DocumentID(id))
	doc := metadata.Parse(lines, r.marker, logger)
	m := metadata.Merge(doc, r.tpl.Defaults, logger)

	permalink := "/" + id
	if m.Bool("Linked") && m.Get("Link") != "" {
		m[KeyRelativeLink] = m.Get("Link")
		m[KeyLinked] = "linked"
	} else {
		m[KeyRelativeLink] = permalink
		m[KeyLinked] = "notLinked"
	}
	m[KeyPermalink] = permalink

	if _, ok := m["Title"]; !ok {
		m["Title"] = cases.Title(language.English).String(strings.ReplaceAll(store.Slug(id), "-", " "))
	}
	m[KeyTitle] = ""
	if t := m.Get("Title"); t != "" {
		m[KeyTitle] = t + " &mdash; "
	}

	if store.IsPost(id) {
		m[KeyBodyClass] = "post"
	} else if _, ok := m[KeyBodyClass]; !ok {
		m[KeyBodyClass] = ""
	}

	header, err := execute(r.tpl.PostHeader, m)
	if err != nil {
		return nil, "", r.renderFailure(err, id, PostHeaderFile)
	}
	footer, err := execute(r.tpl.PostFooter, m)
	if err != nil {
		return nil, "", r.renderFailure(err, id, PostFooterFile)
	}
	m[KeyHeader] = header
	m[KeyFooter] = footer

	return m, body, nil
}

// Render produces the cache entry for one document: the full page, the
// unwrapped body used by the feed, the merged metadata and a content
// fingerprint.
func (r *Renderer) Render(id, source string) (cache.Entry, error) {
	start := time.Now()
	entry, err := r.render(id, source)
	r.recorder.ObserveRenderDuration(time.Since(start), err == nil)
	if err != nil {
		return cache.Entry{}, err
	}
	r.logger.Debug("Rendered document", logfields.DocumentID(id), logfields.Duration(time.Since(start)))
	return entry, nil
}

func (r *Renderer) render(id, source string) (cache.Entry, error) {
	m, body, err := r.Metadata(id, source)
	if err != nil {
		return cache.Entry{}, err
	}

	html, err := r.conv.Render([]byte(body))
	if err != nil {
		return cache.Entry{}, r.renderFailure(err, id, "markdown")
	}
	unwrapped := r.Substitute(m, html)

	var page strings.Builder
	page.Grow(len(r.tpl.Header) + len(unwrapped) + len(r.tpl.Footer) + len(m[KeyHeader]) + len(m[KeyFooter]))
	page.WriteString(r.Substitute(m, r.tpl.Header))
	page.WriteString(m[KeyHeader])
	page.WriteString(unwrapped)
	page.WriteString(m[KeyFooter])
	page.WriteString(r.Substitute(m, r.tpl.Footer))

	return cache.Entry{
		ID:            id,
		Body:          page.String(),
		UnwrappedBody: unwrapped,
		Metadata:      m,
		Fingerprint:   fingerprint(source, r.marker),
	}, nil
}

// Wrap surrounds body with the site header and footer, substituting
// placeholders from m, which is typically the site defaults plus a Title.
func (r *Renderer) Wrap(m metadata.Map, body string) string {
	merged := metadata.Merge(m, r.tpl.Defaults, r.logger)
	if _, ok := merged[KeyTitle]; !ok {
		merged[KeyTitle] = ""
		if t := merged.Get("Title"); t != "" {
			merged[KeyTitle] = t + " &mdash; "
		}
	}
	if _, ok := merged[KeyBodyClass]; !ok {
		merged[KeyBodyClass] = "listing"
	}
	return r.Substitute(merged, r.tpl.Header) + body + r.Substitute(merged, r.tpl.Footer)
}

// ListFooter renders the pagination footer with prev/next page numbers;
// zero omits a link.
func (r *Renderer) ListFooter(prev, next int) (string, error) {
	return execute(r.tpl.ListFooter, map[string]int{"PrevPage": prev, "NextPage": next})
}

// Header returns the site header substituted from m.
func (r *Renderer) Header(m metadata.Map) string { return r.Substitute(m, r.tpl.Header) }

// Footer returns the site footer substituted from m.
func (r *Renderer) Footer(m metadata.Map) string { return r.Substitute(m, r.tpl.Footer) }

func (r *Renderer) renderFailure(err error, id, stage string) error {
	return errors.RenderError("failed to render document").
		WithCause(err).WithContext("document_id", id).WithContext("stage", stage).Build()
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fingerprint hashes the document's own metadata and body, so it changes
// only when the source does.
func fingerprint(source, marker string) string {
	lines, body := metadata.SplitSource(source, marker)
	doc := metadata.Parse(lines, marker, nil)
	fields := ""
	if len(doc) > 0 {
		if b, err := yaml.Marshal(map[string]string(doc)); err == nil {
			fields = strings.TrimSuffix(string(b), "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts(fields, body)
}
