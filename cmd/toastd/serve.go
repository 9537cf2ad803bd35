package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/toastkit/internal/config"
	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/internal/logging"
	"github.com/vango-dev/toastkit/pkg/middleware"
	"github.com/vango-dev/toastkit/pkg/server"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the toast server",
		Long: `Run the toast server until interrupted.

Configuration is read from --config, or from toastkit.json or
toastkit.yaml in the working directory. Defaults apply when neither
exists.

Examples:
  toastd serve
  toastd serve --addr=0.0.0.0:7300
  toastd serve --config=/etc/toastkit.yaml --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to toastkit.json or toastkit.yaml")
	cmd.Flags().StringVarP(&address, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

// loadConfig reads path, or the working directory when path is empty. A
// missing file in the working directory means defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.HasCode(err, errors.CodeConfigNotFound) {
		return config.New(), nil
	}
	return cfg, err
}

// app is the wired process: store, observability and server.
type app struct {
	store   *store.Store
	server  *server.Server
	cleanup func()
}

// newApp wires every component from cfg.
func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := logging.Install(cfg.Log, os.Stderr); err != nil {
		return nil, err
	}

	st := store.New(store.Config{
		MaxToasts:       cfg.Toasts.MaxToasts,
		DefaultDuration: cfg.DefaultToastDuration(),
		Logger:          logging.Component("store"),
	})

	var notifier toast.Notifier = st
	if cfg.Tracing.Enabled {
		notifier = middleware.Trace(st, middleware.WithTracerName(cfg.Tracing.TracerName))
	}

	cleanup := func() {}
	srvCfg := server.Config{
		Address:         cfg.Server.Address,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Container: toastui.Config{
			Position:         cfg.Position(),
			SwipeThreshold:   cfg.Toasts.SwipeThreshold,
			CopyFeedback:     cfg.CopyFeedback(),
			ClipboardTimeout: cfg.ClipboardTimeout(),
			MobileBreakpoint: cfg.Toasts.MobileBreakpoint,
			Effects:          []toastui.Effect{toastui.EnterAnimation("slide-in")},
		},
		Notifier: notifier,
		Logger:   logging.Component("server"),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(reg),
		)
		cleanup = metrics.Observe(st)
		srvCfg.Recorder = metrics
		srvCfg.Gatherer = reg
	}

	return &app{
		store:   st,
		server:  server.New(st, srvCfg),
		cleanup: cleanup,
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.cleanup()

	log := logging.Component("toastd")
	log.Info().
		Str("address", cfg.Server.Address).
		Str("version", version).
		Bool("metrics", cfg.Metrics.Enabled).
		Bool("tracing", cfg.Tracing.Enabled).
		Msg("starting")

	err = a.server.Run(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
