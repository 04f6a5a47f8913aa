package render

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/footnotes"
)

const (
	shortPostDate = "2006-01-02, 3:04 PM"
	longPostDate  = "Monday 2 January 2006, 3:04 PM"
)

// Funcs builds the template helpers, reading Date values in Location.
type Funcs struct {
	Location *time.Location
}

func (f Funcs) toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.In(f.loc()), !t.IsZero()
	case string:
		return chrono.ParseTimestamp(t, f.loc())
	}
	return time.Time{}, false
}

func (f Funcs) loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

func (f Funcs) formatWith(layout string) func(any) string {
	return func(v any) string {
		t, ok := f.toTime(v)
		if !ok {
			return ""
		}
		return t.Format(layout)
	}
}

func (f Funcs) isoDate(v any) string {
	t, ok := f.toTime(v)
	if !ok {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Short returns the helpers for post footers and list footers.
func (f Funcs) Short() template.FuncMap {
	return template.FuncMap{
		"formatPostDate": f.formatWith(shortPostDate),
		"formatIsoDate":  f.isoDate,
	}
}

// PostHeader returns the helpers for post headers, which spell dates out.
func (f Funcs) PostHeader() template.FuncMap {
	return template.FuncMap{
		"formatPostDate": f.formatWith(longPostDate),
		"formatIsoDate":  f.isoDate,
	}
}

// Index returns the helpers for the home page templates. Footnotes passed
// through offsetFootnotes are suffixed by o, which must be fresh per page.
func (f Funcs) Index(o *footnotes.Offsetter) template.FuncMap {
	fm := f.Short()
	fm["formatDate"] = func(v any) template.HTML {
		t, ok := f.toTime(v)
		if !ok {
			return ""
		}
		// #nosec G203 - only a fixed layout of date parts
		return template.HTML(t.Format("Monday<br />2<br />January<br />2006"))
	}
	fm["dateLink"] = func(v any) string {
		t, ok := f.toTime(v)
		if !ok {
			return "/"
		}
		return chrono.DayLink(t)
	}
	fm["offsetFootnotes"] = func(html string) template.HTML {
		// #nosec G203 - post bodies are trusted archive content
		return template.HTML(o.Apply(html))
	}
	return fm
}
