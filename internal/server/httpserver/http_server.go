package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	smw "git.home.luguber.info/inful/daybook/internal/server/middleware"
)

// Server serves the archive over HTTP.
type Server struct {
	site         Site
	opts         Options
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter
	startTime    time.Time

	httpServer *http.Server
	listener   net.Listener

	mchain func(http.Handler) http.Handler
}

// New constructs a server for site.
func New(site Site, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	s := &Server{
		site:         site,
		opts:         opts,
		logger:       opts.Logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
		startTime:    time.Now(),
	}
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter, opts.PoweredBy)
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.mchain(s.withStatic(s.routes()))
}

// Start binds addr and serves in the background. Binding happens before
// Start returns so a busy port fails fast.
func (s *Server) Start(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.RuntimeError("http startup failed").
			WithCause(err).WithContext("addr", addr).Build()
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr reports the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
