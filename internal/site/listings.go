package site

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"time"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/metadata"
)

var listingTemplates = template.Must(template.New("listings").Parse(`
{{define "year"}}<h1>Posts for the year {{.Year}}</h1>
{{range .Months}}<h2><a href="/{{$.Year}}/{{.Number}}/">{{.Name}}</a></h2>
<ul>{{range .Articles}}<li><a href="{{index .Metadata "permalink"}}">{{index .Metadata "Title"}}</a></li>{{end}}</ul>
{{end}}{{end}}
{{define "month"}}{{range .Days}}<h1>{{.Date.Format "Monday, January 2"}}</h1><ul>{{range .Articles}}<li><a href="{{index .Metadata "permalink"}}">{{index .Metadata "Title"}}</a></li>{{end}}</ul>
{{end}}{{end}}
{{define "day"}}<h1>Posts from {{.Date.Format "Monday, January 2"}}</h1><ul>{{range .Articles}}<li><a href="{{index .Metadata "relativeLink"}}">{{index .Metadata "Title"}}</a></li>{{end}}</ul>
{{end}}`))

type monthGroup struct {
	Number   int
	Name     string
	Articles []cache.Entry
}

func executeListing(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := listingTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.RenderError("failed to render listing").
			WithCause(err).WithContext("listing", name).Build()
	}
	return buf.String(), nil
}

// YearListing lists a year's posts grouped by month, newest first.
func (s *Service) YearListing(ctx context.Context, year int) (string, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return "", err
	}
	var months []*monthGroup
	for _, d := range idx.Year(year) {
		m := int(d.Date.Month())
		if len(months) == 0 || months[len(months)-1].Number != m {
			months = append(months, &monthGroup{Number: m, Name: d.Date.Month().String()})
		}
		cur := months[len(months)-1]
		cur.Articles = append(cur.Articles, d.Articles...)
	}
	body, err := executeListing("year", map[string]any{"Year": year, "Months": months})
	if err != nil {
		return "", err
	}
	return s.renderer.Wrap(metadata.Map{"Title": "Posts for " + strconv.Itoa(year)}, body), nil
}

// MonthListing lists a month's posts under a heading per day, newest first.
func (s *Service) MonthListing(ctx context.Context, year int, month time.Month) (string, error) {
	if month < time.January || month > time.December {
		return "", errors.NotFoundError("no such month").WithContext("month", int(month)).Build()
	}
	idx, err := s.Index(ctx)
	if err != nil {
		return "", err
	}
	days := idx.Month(year, month)
	if len(days) == 0 {
		return "", errors.NotFoundError("no posts for month").
			WithContext("year", year).WithContext("month", int(month)).Build()
	}
	body, err := executeListing("month", map[string]any{"Days": days})
	if err != nil {
		return "", err
	}
	title := month.String() + " " + strconv.Itoa(year)
	return s.renderer.Wrap(metadata.Map{"Title": title}, body), nil
}

// DayListing lists one day's posts, oldest first.
func (s *Service) DayListing(ctx context.Context, year int, month time.Month, day int) (string, error) {
	listings, err := s.store.ListDay(ctx, year, int(month), day)
	if err != nil {
		return "", err
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, s.opts.Location)
	articles := make([]cache.Entry, 0, len(listings))
	for _, l := range listings {
		if l.Redirect {
			continue
		}
		e, err := s.entry(ctx, l.ID)
		if err != nil {
			return "", err
		}
		articles = append(articles, e)
	}
	chrono.SortArticles(articles, s.opts.Location, false)

	body, err := executeListing("day", chrono.Day{Date: date, Articles: articles})
	if err != nil {
		return "", err
	}
	return s.renderer.Wrap(metadata.Map{"Title": date.Format("Monday, January 2")}, body), nil
}
