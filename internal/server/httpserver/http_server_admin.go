package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/version"
)

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	body, err := s.site.Feed(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write(body)
}

// handleTossCache flushes every cached page and tells the client to reset
// its view.
func (s *Server) handleTossCache(w http.ResponseWriter, _ *http.Request) {
	s.site.Flush(metrics.FlushManual)
	w.WriteHeader(http.StatusResetContent)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	articles, days, err := s.site.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "%d articles, across %d days that have at least one post.", articles, days)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.startTime).Seconds(),
		Cached:    s.site.CachedEntries(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health)
}
