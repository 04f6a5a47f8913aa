// Package site is the cache-through read API over the post archive. Every
// page the server sends is produced here: single documents, index pages,
// the feed and the date listings.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/feed"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metadata"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/render"
	"git.home.luguber.info/inful/daybook/internal/store"
)

// Document is a rendered page ready to send.
type Document struct {
	ID          string
	HTML        string
	Metadata    metadata.Map
	Fingerprint string
}

// RedirectSignal is returned in place of a document that points elsewhere.
// It is not a failure; callers should answer with Status and Location.
type RedirectSignal struct {
	Status   int
	Location string
}

func (r *RedirectSignal) Error() string {
	return fmt.Sprintf("redirect %d to %s", r.Status, r.Location)
}

// Options tunes a Service.
type Options struct {
	PostsPerPage int
	Feed         feed.Options
	Location     *time.Location
	Concurrency  int
	Logger       *slog.Logger
	Recorder     metrics.Recorder
}

// Service is safe for concurrent use. Concurrent misses for the same key
// share one render.
type Service struct {
	store    *store.FS
	cache    *cache.Cache
	renderer *render.Renderer
	opts     Options
	group    singleflight.Group
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New wires a Service over its collaborators.
func New(st *store.FS, c *cache.Cache, r *render.Renderer, opts Options) *Service {
	if opts.PostsPerPage <= 0 {
		opts.PostsPerPage = 5
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	opts.Feed.Location = opts.Location
	return &Service{
		store:    st,
		cache:    c,
		renderer: r,
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
}

// Cache exposes the underlying cache for diagnostics.
func (s *Service) Cache() *cache.Cache { return s.cache }

// CachedEntries reports how many rendered pages are cached.
func (s *Service) CachedEntries() int { return s.cache.Len() }

// PostsPerPage is the index page size.
func (s *Service) PostsPerPage() int { return s.opts.PostsPerPage }

// NormalizeID resolves a request path to a document identifier.
func (s *Service) NormalizeID(p string) string { return s.store.NormalizeID(p) }

// Document returns the rendered page for id, from cache when possible.
// A redirect marker yields a *RedirectSignal; a missing document a
// not_found error.
func (s *Service) Document(ctx context.Context, id string) (Document, error) {
	e, err := s.entry(ctx, s.store.NormalizeID(id))
	if err != nil {
		return Document{}, err
	}
	return Document{ID: e.ID, HTML: e.Body, Metadata: e.Metadata, Fingerprint: e.Fingerprint}, nil
}

// entry is the cache-through loader shared by documents and the index.
func (s *Service) entry(ctx context.Context, id string) (cache.Entry, error) {
	if e, ok := s.cache.Get(id); ok {
		return e, nil
	}
	v, err, shared := s.group.Do("doc:"+id, func() (any, error) {
		// Other callers may be waiting on this render.
		ctx := context.WithoutCancel(ctx)
		epoch := s.cache.Epoch()
		src, err := s.store.ReadSource(ctx, id)
		if err != nil {
			if !errors.IsNotFound(err) {
				return nil, err
			}
			redirect, rerr := s.store.ReadRedirect(ctx, id)
			if rerr != nil {
				return nil, err
			}
			return nil, &RedirectSignal{Status: redirect.Status, Location: redirect.Location}
		}
		rendered, err := s.renderer.Render(id, src)
		if err != nil {
			return nil, err
		}
		e, stored := s.cache.PutFor(epoch, id, rendered)
		if !stored {
			s.logger.Debug("Cache flushed during render; not storing", logfields.DocumentID(id), logfields.Epoch(epoch))
		}
		return e, nil
	})
	if err != nil {
		return cache.Entry{}, err
	}
	if shared {
		s.logger.Debug("Shared in-flight render", logfields.DocumentID(id))
	}
	return v.(cache.Entry), nil
}

// Source returns a document's raw markdown.
func (s *Service) Source(ctx context.Context, id string) (string, error) {
	return s.store.ReadSource(ctx, s.store.NormalizeID(id))
}

// Index returns the chronological index for the current cache epoch.
func (s *Service) Index(ctx context.Context) (chrono.Index, error) {
	if v, ok := s.cache.Index(); ok {
		if idx, ok := v.(chrono.Index); ok {
			return idx, nil
		}
	}
	v, err, _ := s.group.Do("index", func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		epoch := s.cache.Epoch()
		start := time.Now()

		listings, err := s.store.List(ctx, "")
		if err != nil {
			if !errors.IsNotFound(err) {
				return nil, err
			}
			listings = nil
		}
		idx, err := chrono.Build(ctx, listings, s.entry,
			chrono.WithLocation(s.opts.Location),
			chrono.WithConcurrency(s.opts.Concurrency),
			chrono.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		// A flush while building means idx may hold stale renders.
		if !s.cache.SetIndexFor(epoch, idx) {
			s.logger.Debug("Cache flushed during index build; not storing", logfields.Epoch(epoch))
		}
		s.recorder.ObserveAggregateBuild(metrics.AggregateIndex, time.Since(start))
		articles, days := idx.Count()
		s.logger.Info("Built chronological index",
			slog.Int("articles", articles), slog.Int("days", days),
			logfields.Duration(time.Since(start)))
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(chrono.Index), nil
}

// Feed returns the RSS payload, rebuilt at most once per feed TTL.
func (s *Service) Feed(ctx context.Context) ([]byte, error) {
	if b, ok := s.cache.Feed(); ok {
		return b, nil
	}
	v, err, _ := s.group.Do("feed", func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		start := time.Now()
		idx, err := s.Index(ctx)
		if err != nil {
			return nil, err
		}
		opts := s.opts.Feed
		opts.Now = time.Now()
		b, err := feed.Build(idx, opts)
		if err != nil {
			return nil, err
		}
		s.cache.SetFeed(b)
		s.recorder.ObserveAggregateBuild(metrics.AggregateFeed, time.Since(start))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Flush empties every cached page and aggregate.
func (s *Service) Flush(reason metrics.FlushReason) {
	s.cache.Flush(reason)
}

// Count reports how many articles and days the archive holds.
func (s *Service) Count(ctx context.Context) (articles, days int, err error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return 0, 0, err
	}
	articles, days = idx.Count()
	return articles, days, nil
}

// NotFoundPage renders the archive's 404 document, or a plain page when
// the archive has none.
func (s *Service) NotFoundPage(ctx context.Context) string {
	doc, err := s.Document(ctx, "404")
	if err == nil {
		return doc.HTML
	}
	if !errors.IsNotFound(err) {
		s.logger.Warn("Failed to render 404 page", logfields.Error(err))
	}
	return s.renderer.Wrap(metadata.Map{"Title": "Not Found"}, "<h1>Not found</h1>\n")
}
