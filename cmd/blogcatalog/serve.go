package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/eringen/blogcatalog"
	"github.com/eringen/blogcatalog/metrics"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address, overrides the config"`
	Watch   bool   `help:"Invalidate the cache when content changes"`
	Metrics bool   `help:"Expose Prometheus metrics on /metrics" default:"true" negatable:""`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	if s.Watch {
		cfg.Watch = true
	}

	var opts []blogcatalog.Option
	if s.Metrics {
		opts = append(opts, blogcatalog.WithMetrics(metrics.NewPrometheusRecorder(nil)))
	}
	app, err := blogcatalog.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			g.Logger.Warn("Shutdown incomplete", "error", err)
		}
	}()

	if cfg.SnapshotPath != "" {
		if err := exportSnapshot(cfg.SnapshotPath, app.Cache, cfg.Locales, g); err != nil {
			g.Logger.Warn("Snapshot export failed", "error", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g.Logger.Info("Starting catalog server", "addr", cfg.Addr, "locales", cfg.Locales, "content", cfg.ContentDir)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	g.Logger.Info("Server stopped")
	return nil
}
