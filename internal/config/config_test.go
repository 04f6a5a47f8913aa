package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPostsRoot, cfg.Content.PostsRoot)
	assert.Equal(t, DefaultMetadataMarker, cfg.Content.MetadataMarker)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Minute, cfg.Cache.ResetInterval)
	assert.Equal(t, time.Hour, cfg.Cache.FeedTTL)
	assert.Equal(t, 5, cfg.Index.PostsPerPage)
	assert.Equal(t, 10, cfg.Feed.MaxItems)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "America/New_York", cfg.Site.Location().String())
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
}

func TestLoad_FileValuesAndExpansion(t *testing.T) {
	t.Setenv("DAYBOOK_TEST_TITLE", "Expanded Title")
	path := writeConfig(t, `
site:
  base_url: https://example.com/
  timezone: UTC
content:
  posts_root: ./content
cache:
  max_entries: 10
  reset_interval: 5m
index:
  posts_per_page: 3
feed:
  title: ${DAYBOOK_TEST_TITLE}
monitoring:
  logging:
    level: DEBUG
    format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
	assert.Equal(t, "./content", cfg.Content.PostsRoot)
	assert.Equal(t, 10, cfg.Cache.MaxEntries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ResetInterval)
	assert.Equal(t, 3, cfg.Index.PostsPerPage)
	assert.Equal(t, "Expanded Title", cfg.Feed.Title)
	assert.Equal(t, "https://example.com/rss", cfg.Feed.FeedURL)
	assert.Equal(t, "https://example.com", cfg.Feed.SiteURL)
	assert.Equal(t, LogLevelDebug, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
	assert.Equal(t, time.UTC.String(), cfg.Site.Location().String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DAYBOOK_POSTS_ROOT", "/srv/posts")
	path := writeConfig(t, "server:\n  port: 7000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "/srv/posts", cfg.Content.PostsRoot)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "site: [unterminated"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad base url", "site:\n  base_url: not-a-url\n"},
		{"marker with equals", "content:\n  metadata_marker: \"@=\"\n"},
		{"bad timezone", "site:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_InvalidIsConfigCategory(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: -1\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "second init without force must fail")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPostsPerPage, cfg.Index.PostsPerPage)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelError, NormalizeLogLevel("error"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("loud"))
}
