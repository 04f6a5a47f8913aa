package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

// Config represents the daybook configuration file.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Cache      CacheConfig      `yaml:"cache"`
	Index      IndexConfig      `yaml:"index"`
	Feed       FeedConfig       `yaml:"feed"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SiteConfig holds site-wide identity settings.
type SiteConfig struct {
	BaseURL  string `yaml:"base_url" env:"DAYBOOK_BASE_URL"`
	Timezone string `yaml:"timezone" env:"DAYBOOK_TIMEZONE"` // IANA name used to interpret post Date metadata

	location *time.Location
}

// Location returns the resolved timezone, UTC until defaults have been applied.
func (s SiteConfig) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

// ContentConfig locates the post archive and its templates.
type ContentConfig struct {
	PostsRoot      string `yaml:"posts_root" env:"DAYBOOK_POSTS_ROOT"`
	TemplatesRoot  string `yaml:"templates_root" env:"DAYBOOK_TEMPLATES_ROOT"`
	PublicDir      string `yaml:"public_dir" env:"DAYBOOK_PUBLIC_DIR"`
	MetadataMarker string `yaml:"metadata_marker"`
}

// CacheConfig bounds the rendered-content cache.
type CacheConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	ResetInterval time.Duration `yaml:"reset_interval"`
	FeedTTL       time.Duration `yaml:"feed_ttl"`
	Watch         bool          `yaml:"watch" env:"DAYBOOK_WATCH"` // flush when the content tree changes
}

// IndexConfig controls the paginated chronological index.
type IndexConfig struct {
	PostsPerPage int `yaml:"posts_per_page"`
}

// FeedConfig describes the RSS channel.
type FeedConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	FeedURL     string `yaml:"feed_url"`
	SiteURL     string `yaml:"site_url"`
	Author      string `yaml:"author"`
	WebMaster   string `yaml:"web_master"`
	Copyright   string `yaml:"copyright"`
	ImageURL    string `yaml:"image_url"`
	Language    string `yaml:"language"`
	TTL         int    `yaml:"ttl"` // minutes, advertised to readers
	MaxItems    int    `yaml:"max_items"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PoweredBy       string        `yaml:"powered_by"`
}

// MonitoringConfig toggles metrics and sets logging preferences.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled" env:"DAYBOOK_METRICS"`
	Path    string `yaml:"path"`
}

type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level" env:"DAYBOOK_LOG_LEVEL"`
	Format LogFormat `yaml:"format"`
}

// Load reads the configuration file, expands environment references, applies
// environment overrides and defaults, and validates the result.
// A missing file is not an error: defaults and environment are used instead.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				Fatal().WithContext("path", configPath).Build()
		}
	case os.IsNotExist(err):
		fmt.Fprintf(os.Stderr, "Note: configuration file %s not found, using defaults\n", configPath)
	default:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", configPath).Build()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").
			WithContext("path", configPath).Build()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a fully defaulted configuration without touching the filesystem.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}
	cfg, err := Default()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}
