// Package commands implements the daybook subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/daybook/internal/config"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/site"
)

// Global is bound into every command's Run method.
type Global struct {
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI is the root command line.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"daybook.yaml" env:"DAYBOOK_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Serve the archive over HTTP"`
	Render RenderCmd `cmd:"" help:"Render a single document to stdout"`
	Index  IndexCmd  `cmd:"" help:"Summarize a page of the chronological index"`
	Feed   FeedCmd   `cmd:"" help:"Print the RSS feed"`
	Count  CountCmd  `cmd:"" help:"Count articles and the days they span"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply installs a stderr logger before any command runs.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration and replaces the default logger with
// one built from its logging section.
func loadConfig(root *CLI) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Monitoring.Logging.NewLogger(os.Stderr, root.Verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newSite loads configuration and assembles a service without metrics, for
// the one-shot commands.
func newSite(root *CLI) (*site.Service, error) {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return site.NewFromConfig(cfg, metrics.NoopRecorder{}, logger)
}
