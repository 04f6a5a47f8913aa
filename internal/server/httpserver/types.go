package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/site"
)

// Site is the rendering surface the HTTP layer serves. *site.Service
// implements it.
type Site interface {
	Document(ctx context.Context, id string) (site.Document, error)
	Source(ctx context.Context, id string) (string, error)
	IndexPage(ctx context.Context, n int) (site.IndexPage, error)
	Feed(ctx context.Context) ([]byte, error)
	Flush(reason metrics.FlushReason)
	Count(ctx context.Context) (articles, days int, err error)
	YearListing(ctx context.Context, year int) (string, error)
	MonthListing(ctx context.Context, year int, month time.Month) (string, error)
	DayListing(ctx context.Context, year int, month time.Month, day int) (string, error)
	NotFoundPage(ctx context.Context) string
	CachedEntries() int
}

// Options configures the listener and the optional endpoints.
type Options struct {
	// PublicDir holds static files served ahead of any route. Empty disables it.
	PublicDir string
	PoweredBy string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.Handler
	MetricsPath    string

	Logger *slog.Logger
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Cached    int       `json:"cached_entries"`
}
