package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	derrors "git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/site"
)

// minArchiveYear separates year listings from numeric page names.
const minArchiveYear = 2000

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /rss", s.handleFeed)
	mux.HandleFunc("GET /tosscache", s.handleTossCache)
	mux.HandleFunc("GET /count", s.handleCount)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.MetricsHandler)
	}

	mux.HandleFunc("GET /{year}/{month}/{day}/{slug}", s.handlePost)
	mux.HandleFunc("GET /{year}/{month}/{day}/{$}", s.handleDay)
	mux.HandleFunc("GET /{year}/{month}/{day}", s.handleDay)
	mux.HandleFunc("GET /{year}/{month}/{$}", s.handleMonth)
	mux.HandleFunc("GET /{year}/{month}", s.handleMonth)
	mux.HandleFunc("GET /{slug}", s.handlePage)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("p"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		n = p
	}
	page, err := s.site.IndexPage(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Redirect != "" {
		http.Redirect(w, r, page.Redirect, http.StatusFound)
		return
	}
	writeHTML(w, http.StatusOK, page.HTML)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := strings.Join([]string{
		r.PathValue("year"), r.PathValue("month"), r.PathValue("day"), r.PathValue("slug"),
	}, "/")
	s.serveDocument(w, r, id)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if year, err := strconv.Atoi(slug); err == nil {
		if year < minArchiveYear {
			s.handleNotFound(w, r)
			return
		}
		body, err := s.site.YearListing(r.Context(), year)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeHTML(w, http.StatusOK, body)
		return
	}
	s.serveDocument(w, r, slug)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	year, err1 := strconv.Atoi(r.PathValue("year"))
	month, err2 := strconv.Atoi(r.PathValue("month"))
	if err1 != nil || err2 != nil {
		s.handleNotFound(w, r)
		return
	}
	body, err := s.site.MonthListing(r.Context(), year, time.Month(month))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	year, err1 := strconv.Atoi(r.PathValue("year"))
	month, err2 := strconv.Atoi(r.PathValue("month"))
	day, err3 := strconv.Atoi(r.PathValue("day"))
	if err1 != nil || err2 != nil || err3 != nil {
		s.handleNotFound(w, r)
		return
	}
	body, err := s.site.DayListing(r.Context(), year, time.Month(month), day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// serveDocument writes a rendered document, or its markdown source when
// the request names the .md file.
func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, id string) {
	if strings.HasSuffix(id, ".md") {
		src, err := s.site.Source(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/x-markdown; charset=utf-8")
		_, _ = w.Write([]byte(src))
		return
	}

	doc, err := s.site.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if doc.Fingerprint != "" {
		etag := `"` + doc.Fingerprint + `"`
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeHTML(w, http.StatusOK, doc.HTML)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusNotFound, s.site.NotFoundPage(r.Context()))
}

// writeError maps service errors onto responses: redirects, the 404 page,
// or the classified JSON error payload.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var redirect *site.RedirectSignal
	if errors.As(err, &redirect) {
		http.Redirect(w, r, redirect.Location, redirect.Status)
		return
	}
	if derrors.IsNotFound(err) {
		s.handleNotFound(w, r)
		return
	}
	s.errorAdapter.WriteErrorResponse(w, r, err)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
