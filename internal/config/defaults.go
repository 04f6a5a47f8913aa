package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo
)

// Default configuration values.
const (
	DefaultPostsRoot      = "./posts"
	DefaultTemplatesRoot  = "./templates"
	DefaultPublicDir      = "./public"
	DefaultMetadataMarker = "@@"
	DefaultMaxEntries     = 50
	DefaultResetInterval  = 30 * time.Minute
	DefaultFeedTTL        = time.Hour
	DefaultPostsPerPage   = 5
	DefaultFeedMaxItems   = 10
	DefaultPort           = 5000
	DefaultTimezone       = "America/New_York"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&ContentDefaultApplier{},
			&CacheDefaultApplier{},
			&IndexDefaultApplier{},
			&FeedDefaultApplier{},
			&ServerDefaultApplier{},
			&MonitoringDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// SiteDefaultApplier resolves the site timezone.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Timezone == "" {
		cfg.Site.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Site.Timezone, err)
	}
	cfg.Site.location = loc
	cfg.Site.BaseURL = strings.TrimSuffix(cfg.Site.BaseURL, "/")
	return nil
}

// ContentDefaultApplier fills in archive locations.
type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.PostsRoot == "" {
		cfg.Content.PostsRoot = DefaultPostsRoot
	}
	if cfg.Content.TemplatesRoot == "" {
		cfg.Content.TemplatesRoot = DefaultTemplatesRoot
	}
	if cfg.Content.PublicDir == "" {
		cfg.Content.PublicDir = DefaultPublicDir
	}
	if cfg.Content.MetadataMarker == "" {
		cfg.Content.MetadataMarker = DefaultMetadataMarker
	}
	return nil
}

// CacheDefaultApplier fills in cache bounds and expiries.
type CacheDefaultApplier struct{}

func (c *CacheDefaultApplier) Domain() string { return "cache" }

func (c *CacheDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = DefaultMaxEntries
	}
	if cfg.Cache.ResetInterval <= 0 {
		cfg.Cache.ResetInterval = DefaultResetInterval
	}
	if cfg.Cache.FeedTTL <= 0 {
		cfg.Cache.FeedTTL = DefaultFeedTTL
	}
	return nil
}

// IndexDefaultApplier fills in pagination settings.
type IndexDefaultApplier struct{}

func (i *IndexDefaultApplier) Domain() string { return "index" }

func (i *IndexDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Index.PostsPerPage <= 0 {
		cfg.Index.PostsPerPage = DefaultPostsPerPage
	}
	return nil
}

// FeedDefaultApplier fills in RSS channel settings, deriving URLs from the site base URL.
type FeedDefaultApplier struct{}

func (f *FeedDefaultApplier) Domain() string { return "feed" }

func (f *FeedDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Feed.MaxItems <= 0 {
		cfg.Feed.MaxItems = DefaultFeedMaxItems
	}
	if cfg.Feed.TTL <= 0 {
		cfg.Feed.TTL = int(DefaultFeedTTL / time.Minute)
	}
	if cfg.Feed.Language == "" {
		cfg.Feed.Language = "en"
	}
	if cfg.Feed.SiteURL == "" {
		cfg.Feed.SiteURL = cfg.Site.BaseURL
	}
	if cfg.Feed.FeedURL == "" && cfg.Site.BaseURL != "" {
		cfg.Feed.FeedURL = cfg.Site.BaseURL + "/rss"
	}
	return nil
}

// ServerDefaultApplier fills in listener settings.
type ServerDefaultApplier struct{}

func (s *ServerDefaultApplier) Domain() string { return "server" }

func (s *ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.PoweredBy == "" {
		cfg.Server.PoweredBy = "daybook"
	}
	return nil
}

// MonitoringDefaultApplier fills in metrics and logging settings.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = "/metrics"
	}
	cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
	return nil
}
