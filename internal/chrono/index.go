// Package chrono groups posts by calendar day and paginates them.
package chrono

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/store"
)

// Day groups the articles published on one calendar date.
type Day struct {
	Date     time.Time
	Articles []cache.Entry
}

// Index is every day with at least one article, newest first.
type Index []Day

// Loader renders (or fetches from cache) one document.
type Loader func(ctx context.Context, id string) (cache.Entry, error)

type buildConfig struct {
	loc         *time.Location
	concurrency int
	logger      *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithLocation sets the timezone used to read Date metadata.
func WithLocation(loc *time.Location) BuildOption {
	return func(c *buildConfig) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithConcurrency bounds how many documents load at once.
func WithConcurrency(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger for skipped documents.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Build loads every non-redirect listing and groups the results by the day
// in their path. Days are sorted newest first, and so are the articles
// within each day. Listings that vanish before they load are skipped.
func Build(ctx context.Context, docs []store.Listing, load Loader, opts ...BuildOption) (Index, error) {
	cfg := buildConfig{loc: time.UTC, concurrency: runtime.GOMAXPROCS(0), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	posts := make([]store.Listing, 0, len(docs))
	for _, d := range docs {
		if !d.Redirect {
			posts = append(posts, d)
		}
	}

	loaded := make([]*cache.Entry, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, d := range posts {
		g.Go(func() error {
			e, err := load(gctx, d.ID)
			if err != nil {
				if errors.IsNotFound(err) {
					cfg.logger.Warn("Skipping vanished post", logfields.DocumentID(d.ID))
					return nil
				}
				return err
			}
			loaded[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type civil struct {
		year  int
		month time.Month
		day   int
	}
	byDay := make(map[civil]*Day)
	for i, d := range posts {
		if loaded[i] == nil {
			continue
		}
		key := civil{d.Date.Year(), d.Date.Month(), d.Date.Day()}
		day, ok := byDay[key]
		if !ok {
			day = &Day{Date: calendarDay(d.Date, cfg.loc)}
			byDay[key] = day
		}
		day.Articles = append(day.Articles, *loaded[i])
	}

	index := make(Index, 0, len(byDay))
	for _, day := range byDay {
		SortArticles(day.Articles, cfg.loc, true)
		index = append(index, *day)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Date.After(index[j].Date) })
	return index, nil
}

// SortArticles orders articles by publication time, newest first when
// descending is set. Ties fall back to the identifier.
func SortArticles(articles []cache.Entry, loc *time.Location, descending bool) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, tj := Timestamp(articles[i], loc), Timestamp(articles[j], loc)
		if ti.Equal(tj) {
			return articles[i].ID < articles[j].ID
		}
		if descending {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

// Count returns the number of articles and days in the index.
func (x Index) Count() (articles, days int) {
	for _, d := range x {
		articles += len(d.Articles)
	}
	return articles, len(x)
}

// Articles flattens the index, newest first.
func (x Index) Articles() []cache.Entry {
	var out []cache.Entry
	for _, d := range x {
		out = append(out, d.Articles...)
	}
	return out
}

// Year returns the days falling in year.
func (x Index) Year(year int) Index {
	var out Index
	for _, d := range x {
		if d.Date.Year() == year {
			out = append(out, d)
		}
	}
	return out
}

// Month returns the days falling in the given month.
func (x Index) Month(year int, month time.Month) Index {
	var out Index
	for _, d := range x {
		if d.Date.Year() == year && d.Date.Month() == month {
			out = append(out, d)
		}
	}
	return out
}

// DayLink is the listing path of a day, e.g. "/2014/3/17/".
func DayLink(t time.Time) string {
	return "/" + strconv.Itoa(t.Year()) + "/" + strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day()) + "/"
}
