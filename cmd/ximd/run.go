package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jezek/xgb"

	"ximd/internal/config"
	"ximd/internal/control"
	"ximd/internal/health"
	"ximd/internal/imdkit"
	"ximd/internal/keymap"
	"ximd/internal/logging"
	"ximd/internal/metrics"
	"ximd/internal/xim"
)

const crashReportMaxAge = 30 * 24 * time.Hour

type runOptions struct {
	configPath string
	display    string
	logLevel   string
	strict     bool
}

func run(ctx context.Context, opts runOptions) error {
	loader := config.NewLoader(opts.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", loader.Path(), err)
	}
	defer loader.Close()

	cfg = config.Merge(cfg, &config.Config{
		Logging: config.LoggingConfig{Level: opts.logLevel},
	})
	if opts.strict {
		cfg.Server.Strict = true
	}

	logCfg, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return err
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("config watch disabled", "path", loader.Path(), "error", err)
	} else {
		loader.OnChange(func(_, next *config.Config) {
			level, err := logging.ParseLevel(next.Logging.Level)
			if err != nil {
				return
			}
			if opts.logLevel == "" {
				logger.SetLevel(level)
			}
			logger.Info("config reloaded", "level", logging.LevelString(logger.GetLevel()))
		})
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case err := <-loader.Errors():
					logger.Warn("config reload failed", "error", err)
				}
			}
		}()
	}

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		Version: version,
		Logger:  logger.Logger,
	})
	if err := crash.CleanupOldCrashReports(crashReportMaxAge); err != nil {
		logger.Warn("crash report cleanup", "dir", crash.Dir(), "error", err)
	}

	snap := control.NewSnapshot()
	observers := xim.Observers{snap}
	checker := health.NewChecker()

	if cfg.Metrics.Enabled {
		m := metrics.New(true)
		observers = append(observers, m)

		srv, err := m.Listen(cfg.Metrics.Listen, cfg.Metrics.Path, logger.WithComponent("metrics").Logger)
		if err != nil {
			return err
		}
		checker.Mount(srv)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", srv.Addr().String(), "path", cfg.Metrics.Path)
	}

	if cfg.Control.Enabled {
		svc, err := startControl(cfg.Control.Bus, snap, logger.WithComponent("control").Logger)
		if err != nil {
			// The daemon is still usable without its status surface.
			logger.Warn("control service disabled", "bus", cfg.Control.Bus, "error", err)
		} else {
			defer svc.Close()
			checker.RegisterFunc("control", false, func(context.Context) error { return svc.Err() })
		}
	}

	serverOpts, err := cfg.ServerOptions()
	if err != nil {
		return err
	}

	display, err := imdkit.OpenDisplay(opts.display)
	if err != nil {
		return err
	}
	defer display.Close()
	checker.RegisterFunc("display", true, func(context.Context) error { return display.Err() })

	if serverOpts.Params.Screen < 0 {
		serverOpts.Params.Screen = display.Screen()
	}
	serverOpts.Params.ServerWindow = display.Window()
	serverOpts.Logger = logger.WithComponent("xim").Logger
	serverOpts.Observer = observers

	keys, err := loadKeymap(opts.display)
	if err != nil {
		return err
	}

	handler, err := newEchoHandler(keys, logger.WithComponent("handler").Logger)
	if err != nil {
		return err
	}

	srv, err := xim.NewServer(display.NewEngine(), handler, serverOpts)
	if err != nil {
		return err
	}
	defer srv.Destroy()

	if err := srv.Open(); err != nil {
		return fmt.Errorf("open input method %q: %w", serverOpts.Params.ServerName, err)
	}
	logger.Info("input method open",
		"name", serverOpts.Params.ServerName,
		"screen", serverOpts.Params.Screen,
		"window", fmt.Sprintf("%#x", serverOpts.Params.ServerWindow),
		"strictness", serverOpts.Strictness.String(),
	)
	checker.SetReady(true)
	defer checker.SetReady(false)

	err = crash.Guard(map[string]any{"server": serverOpts.Params.ServerName}, func() error {
		return display.Run(ctx, srv.FilterEvent)
	})
	if err != nil {
		return fmt.Errorf("event loop: %w", err)
	}

	logger.Info("shutting down", "live", len(snap.InputContexts()))
	return nil
}

func startControl(bus string, snap *control.Snapshot, logger *slog.Logger) (*control.Service, error) {
	conn, err := control.Connect(bus)
	if err != nil {
		return nil, err
	}
	svc, err := control.Start(conn, snap, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return svc, nil
}

// loadKeymap reads the keyboard mapping over a separate core-protocol
// connection and closes it again.
func loadKeymap(display string) (*keymap.Map, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect for keymap: %w", err)
	}
	defer conn.Close()

	m, err := keymap.Load(conn)
	if err != nil {
		return nil, fmt.Errorf("load keymap: %w", err)
	}
	return m, nil
}
