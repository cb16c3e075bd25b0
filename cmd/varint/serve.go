package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/varint/internal/config"
	"github.com/vango-dev/varint/pkg/observe"
	"github.com/vango-dev/varint/pkg/server"
)

func serveCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP codec service",
		Long: `Run the HTTP and WebSocket codec service.

Settings come from varint.json (see --config) and VARINT_ADDR.

Examples:
  varint serve
  varint serve --addr 127.0.0.1:9000
  varint serve --config /etc/varint/varint.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from varint.json)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg)

	reg := prometheus.NewRegistry()
	opts := server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.ReadTimeout(),
		WriteTimeout:    cfg.WriteTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Logger:          logger,
		Registerer:      reg,
		Observer: observe.New(
			observe.WithNamespace(cfg.Metrics.Namespace),
			observe.WithRegistry(reg),
			observe.WithTracerName(cfg.Tracing.TracerName),
			observe.WithLogger(logger),
		),
	}
	if cfg.MetricsEnabled() {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Gatherer = reg
	}
	if path := cfg.Path(); path != "" {
		logger.Info("config loaded", "path", path)
	}

	return server.New(opts).Run(ctx)
}
