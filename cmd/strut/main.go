// cmd/strut/main.go
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/opd-ai/go-strut/pkg/audio"
	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/engine"
	"github.com/opd-ai/go-strut/pkg/health"
	"github.com/opd-ai/go-strut/pkg/logging"
	engorender "github.com/opd-ai/go-strut/pkg/render/engo"
	"github.com/opd-ai/go-strut/pkg/storage"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	configPath := flag.String("config", "strut.json", "Path to configuration file")
	worldPath := flag.String("world", "", "World file (overrides config)")
	renderer := flag.String("renderer", "", "Front end: 'engo' or 'terminal' (overrides config)")
	logPath := flag.String("log", "strut.log", "Log file used by the terminal front end")
	statusAddr := flag.String("status", "", "Serve /health, /ready and /stats on this address (empty disables)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *worldPath != "" {
		cfg.Storage.Path = *worldPath
	}
	if *renderer != "" {
		cfg.Display.Renderer = *renderer
	}
	if err := config.ValidateConfig(cfg); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	// the terminal front end owns the screen, so logs go to a file
	if cfg.Display.Renderer == config.RendererTerminal {
		var closeLog func()
		logger, closeLog = fileLogger(*logPath)
		defer closeLog()
	}

	store := storage.NewStore(cfg.Storage, logger)
	w, err := store.LoadOrEmpty(ctx)
	if err != nil {
		logger.Warn(ctx, "Starting with an empty world",
			"path", store.Path(),
			"error", err.Error(),
		)
	}

	sandbox := engine.NewSandbox(cfg, w, store, logger)

	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.SampleRate, logger)
		// a missing sound device only mutes the cues
		_ = player.Open()
		player.Attach(sandbox.EventBus)
		defer player.Close()
	}

	if *statusAddr != "" {
		status := newStatusServer(*statusAddr, sandbox, store, logger)
		status.Start(ctx)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = status.Shutdown(shutdownCtx)
		}()
	}

	logger.Info(ctx, "Starting sandbox",
		"renderer", cfg.Display.Renderer,
		"world", store.Path(),
		"nodes", w.NodeCount(),
		"links", w.LinkCount(),
	)

	switch cfg.Display.Renderer {
	case config.RendererTerminal:
		if err := runTerminal(ctx, sandbox, cfg.Display, logger); err != nil {
			logger.Error(ctx, "Terminal front end failed", err)
		}
		if err := sandbox.Close(ctx); err != nil {
			logger.Error(ctx, "Failed to save world", err)
			os.Exit(1)
		}
	default:
		// the scene closes the sandbox when the window goes away
		engorender.Run(sandbox, cfg.Display, logger)
	}
}

// newStatusServer registers the sandbox checks on a status server
func newStatusServer(addr string, sandbox *engine.Sandbox, store *storage.Store, logger *logging.Logger) *health.Server {
	checker := health.NewHealthChecker()
	stallAfter := 20 * sandbox.Config.World.FrameDuration()
	checker.AddCheck(health.NewSimulationCheck(sandbox.Frames, sandbox.Paused, max(stallAfter, 2*time.Second)))
	checker.AddCheck(health.NewStorageCheck(store.State))
	checker.AddCheck(health.NewMemoryHealthCheck(500, nil))

	stats := func() any { return sandbox.GetStats() }
	return health.NewServer(addr, checker, stats, logger)
}

// loadConfig reads path when it exists, else starts from the defaults,
// then applies STRUT_* environment overrides
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.SandboxConfig, error) {
	var cfg *config.SandboxConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "apply environment configuration")
	}
	return cfg, nil
}

// fileLogger returns a logger appending to path, or a silent one when the
// file cannot be opened
func fileLogger(path string) (*logging.Logger, func()) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logging.NewLoggerWriter(io.Discard), func() {}
	}
	return logging.NewLoggerWriter(f), func() { _ = f.Close() }
}
