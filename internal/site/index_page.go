package site

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"strconv"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/footnotes"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metadata"
)

// indexDocument is the archive document whose metadata customizes the home
// page through ArticlePartial, DayTemplate and FooterTemplate.
const indexDocument = "index"

const (
	defaultArticlePartial = `<article class="{{.Metadata.linked}}">` +
		`<h3><a href="{{.Metadata.relativeLink}}">{{.Metadata.Title}}</a></h3>` +
		`{{offsetFootnotes .UnwrappedBody}}` +
		`<footer><a href="{{.Metadata.permalink}}">{{formatPostDate .Metadata.Date}}</a></footer>` +
		`</article>`
	defaultDayTemplate = `<section class="day">` +
		`<h2 class="date"><a href="{{dateLink .Date}}">{{formatDate .Date}}</a></h2>` +
		`{{range .Articles}}{{template "article" .}}{{end}}` +
		`</section>`
)

var titleElement = regexp.MustCompile(`(?s)(<title>).*?(</title>)`)

// IndexPage is one page of the home page listing. When Redirect is set the
// requested page was out of range and nothing else is populated.
type IndexPage struct {
	Number   int
	HTML     string
	HasPrev  bool
	HasNext  bool
	Redirect string
}

func indexKey(page int) string { return "index?p=" + strconv.Itoa(page) }

// IndexPage renders page n of the home page. Rendered pages are cached
// alongside documents until the next flush.
func (s *Service) IndexPage(ctx context.Context, n int) (IndexPage, error) {
	// Read before the index so a page composed from a pre-flush index is
	// never stored in the new epoch.
	epoch := s.cache.Epoch()
	idx, err := s.Index(ctx)
	if err != nil {
		return IndexPage{}, err
	}
	pages := chrono.Paginate(idx, s.opts.PostsPerPage)
	page, redirect := chrono.ResolvePage(n, len(pages))
	if redirect != "" {
		return IndexPage{Redirect: redirect}, nil
	}
	out := IndexPage{Number: page, HasPrev: page > 1, HasNext: len(pages) > page}

	key := indexKey(page)
	if e, ok := s.cache.Get(key); ok {
		out.HTML = e.Body
		return out, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		var days []chrono.Day
		if len(pages) > 0 {
			days = pages[page-1].Days
		}
		html, err := s.composeIndex(ctx, days, out)
		if err != nil {
			return nil, err
		}
		e, stored := s.cache.PutFor(epoch, key, cache.Entry{Body: html})
		if !stored {
			s.logger.Debug("Cache flushed during index compose; not storing",
				logfields.Page(page), logfields.Epoch(epoch))
		}
		return e, nil
	})
	if err != nil {
		return IndexPage{}, err
	}
	out.HTML = v.(cache.Entry).Body
	return out, nil
}

func (s *Service) composeIndex(ctx context.Context, days []chrono.Day, page IndexPage) (string, error) {
	meta := s.indexMetadata(ctx)

	var offsets footnotes.Offsetter
	funcs := s.renderer.Funcs().Index(&offsets)

	partial := meta.Get("ArticlePartial")
	if partial == "" {
		partial = defaultArticlePartial
	}
	dayTpl := meta.Get("DayTemplate")
	if dayTpl == "" {
		dayTpl = defaultDayTemplate
	}
	tpl, err := template.New("day").Funcs(funcs).Option("missingkey=zero").Parse(dayTpl)
	if err == nil {
		_, err = tpl.New("article").Parse(partial)
	}
	if err != nil {
		return "", errors.RenderError("failed to parse index templates").
			WithCause(err).WithContext("document_id", indexDocument).Build()
	}

	var body bytes.Buffer
	for _, d := range days {
		if err := tpl.ExecuteTemplate(&body, "day", d); err != nil {
			return "", errors.RenderError("failed to render index day").
				WithCause(err).WithContext("date", d.Date.Format("2006-01-02")).Build()
		}
	}

	prev, next := 0, 0
	if page.HasPrev {
		prev = page.Number - 1
	}
	if page.HasNext {
		next = page.Number + 1
	}
	footer, err := s.indexFooter(meta.Get("FooterTemplate"), prev, next)
	if err != nil {
		return "", err
	}

	header := s.renderer.Header(meta)
	if site := meta.Get("SiteTitle"); site != "" {
		header = titleElement.ReplaceAllLiteralString(header, "<title>"+site+"</title>")
	}
	return header + s.renderer.Substitute(meta, body.String()) + footer + s.renderer.Footer(meta), nil
}

func (s *Service) indexFooter(src string, prev, next int) (string, error) {
	if src == "" {
		return s.renderer.ListFooter(prev, next)
	}
	tpl, err := template.New("footer").Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", errors.RenderError("failed to parse index footer").WithCause(err).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]int{"PrevPage": prev, "NextPage": next}); err != nil {
		return "", errors.RenderError("failed to render index footer").WithCause(err).Build()
	}
	return buf.String(), nil
}

// indexMetadata is the merged metadata of the index document, or the site
// defaults when the archive has none.
func (s *Service) indexMetadata(ctx context.Context) metadata.Map {
	e, err := s.entry(ctx, indexDocument)
	if err == nil {
		return e.Metadata
	}
	if !errors.IsNotFound(err) {
		s.logger.Warn("Falling back to default index metadata", logfields.Error(err))
	}
	m := s.renderer.Defaults()
	m["title"] = ""
	m["bodyClass"] = "index"
	return m
}
