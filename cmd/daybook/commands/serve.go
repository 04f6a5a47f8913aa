package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/daybook/internal/config"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/scheduler"
	"git.home.luguber.info/inful/daybook/internal/server/httpserver"
	"git.home.luguber.info/inful/daybook/internal/site"
	"git.home.luguber.info/inful/daybook/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Listen address; defaults to :<server.port>"`
	Watch bool   `help:"Flush the cache when the posts tree changes (overrides cache.watch)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Watch {
		cfg.Cache.Watch = true
	}
	addr := s.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Server.Port)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, addr, logger)
}

// RunServe serves until ctx is cancelled, then shuts down the server, the
// flush schedule and the cache.
func RunServe(ctx context.Context, cfg *config.Config, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Monitoring.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	svc, err := site.NewFromConfig(cfg, rec, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Cache().Close() }()

	sched, err := scheduler.NewScheduler(logger)
	if err != nil {
		return err
	}
	if _, err := sched.ScheduleFlush(svc, cfg.Cache.ResetInterval); err != nil {
		return err
	}
	sched.Start(ctx)

	if cfg.Cache.Watch {
		w := watch.New(svc, watch.WithLogger(logger))
		go func() {
			if err := w.Run(ctx, cfg.Content.PostsRoot); err != nil {
				logger.Warn("Content watcher stopped", logfields.Error(err))
			}
		}()
	}

	srv := httpserver.New(svc, httpserver.Options{
		PublicDir:      cfg.Content.PublicDir,
		PoweredBy:      cfg.Server.PoweredBy,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Monitoring.Metrics.Path,
		Logger:         logger,
	})
	if err := srv.Start(ctx, addr); err != nil {
		_ = sched.Stop(ctx)
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", logfields.Error(err))
	}
	if err := sched.Stop(stopCtx); err != nil {
		logger.Warn("Scheduler shutdown incomplete", logfields.Error(err))
	}
	return nil
}
