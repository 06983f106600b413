package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/isodom/internal/config"
	"github.com/vango-dev/isodom/internal/demo"
	"github.com/vango-dev/isodom/pkg/bridge"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/driver"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

func serveCmd(logLevel *string) *cobra.Command {
	var (
		configPath string
		addr       string
		demoName   string
		depth      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo to browsers",
		Long: `Serve a demo over HTTP. Browsers load the rendered page and
forward their events through a websocket; every render is pushed back.

Examples:
  isodom serve
  isodom serve --config isodom.yaml
  isodom serve --demo recursive --depth 4 --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if demoName != "" {
				cfg.Demo = demoName
			}
			if depth > 0 {
				cfg.Depth = depth
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg, *logLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (isodom.yaml or isodom.json)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&demoName, "demo", "d", "", "Demo to serve (default from config)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Nesting depth of the recursive demo")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := demo.Lookup(cfg.Demo, cfg.Depth)
	if err != nil {
		return err
	}

	dopts := []driver.Option{driver.WithLogger(logger)}
	var bopts []bridge.Option
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		dopts = append(dopts,
			driver.WithMetrics(reg),
			driver.WithMetricsNamespace(cfg.Metrics.Namespace))
		bopts = append(bopts,
			bridge.WithHandler(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	bopts = append(bopts, bridge.WithLogger(logger))

	loop := driver.NewLoop(cfg.Loop.QueueSize, logger)
	d, err := driver.Mount(dom.NewDocument(cfg.RootID), app, dopts...)
	if err != nil {
		return err
	}
	b, err := bridge.New(d, loop, bopts...)
	if err != nil {
		d.Dispose()
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           b,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		loop.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("serving", "addr", cfg.Addr, "demo", cfg.Demo, "driver_id", d.ID())
	fmt.Printf("  isodom serving %s on http://%s\n", cfg.Demo, cfg.Addr)

	err = srv.ListenAndServe()
	loop.Close()
	<-stopped
	d.Dispose()
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
