package site

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/config"
	"git.home.luguber.info/inful/daybook/internal/feed"
	"git.home.luguber.info/inful/daybook/internal/markdown"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/render"
	"git.home.luguber.info/inful/daybook/internal/store"
)

// NewFromConfig assembles the store, cache, renderer and service described
// by cfg.
func NewFromConfig(cfg *config.Config, rec metrics.Recorder, logger *slog.Logger) (*Service, error) {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Site.Location()

	funcs := render.Funcs{Location: loc}
	tpl, err := render.LoadTemplates(cfg.Content.TemplatesRoot, cfg.Content.MetadataMarker, funcs, logger)
	if err != nil {
		return nil, err
	}
	renderer := render.New(markdown.New(), tpl, render.Options{
		Marker:   cfg.Content.MetadataMarker,
		Location: loc,
		Logger:   logger,
		Recorder: rec,
	})

	c := cache.New(
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithFeedTTL(cfg.Cache.FeedTTL),
		cache.WithRecorder(rec),
		cache.WithLogger(logger),
	)

	title := cfg.Feed.Title
	if title == "" {
		title = tpl.Defaults.Get("SiteTitle")
	}
	description := cfg.Feed.Description
	if description == "" && title != "" {
		description = "Posts to " + title
	}
	copyright := cfg.Feed.Copyright
	if copyright == "" && cfg.Feed.Author != "" {
		copyright = time.Now().Format("2006") + " " + cfg.Feed.Author
	}

	return New(store.NewFS(cfg.Content.PostsRoot), c, renderer, Options{
		PostsPerPage: cfg.Index.PostsPerPage,
		Location:     loc,
		Logger:       logger,
		Recorder:     rec,
		Feed: feed.Options{
			Title:       title,
			Description: description,
			FeedURL:     cfg.Feed.FeedURL,
			SiteURL:     cfg.Feed.SiteURL,
			Author:      cfg.Feed.Author,
			WebMaster:   cfg.Feed.WebMaster,
			Copyright:   copyright,
			ImageURL:    cfg.Feed.ImageURL,
			Language:    cfg.Feed.Language,
			TTL:         cfg.Feed.TTL,
			MaxItems:    cfg.Feed.MaxItems,
		},
	}), nil
}
