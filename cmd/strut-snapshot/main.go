// cmd/strut-snapshot/main.go
package main

import (
	"context"
	"flag"
	"image/color"
	"os"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/engine"
	"github.com/opd-ai/go-strut/pkg/logging"
	"github.com/opd-ai/go-strut/pkg/render"
	"github.com/opd-ai/go-strut/pkg/storage"
	"github.com/opd-ai/go-strut/pkg/world"
)

var background = color.RGBA{R: 24, G: 26, B: 32, A: 255}

// options controls one snapshot run
type options struct {
	worldPath string
	outPath   string
	frames    int
	width     int
	height    int
	zoom      float32
}

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	configPath := flag.String("config", "", "Path to configuration file (defaults when empty)")
	worldPath := flag.String("world", "", "World file to load; a demo bridge is built when empty")
	outPath := flag.String("out", "snapshot.png", "PNG file to write")
	frames := flag.Int("frames", 120, "Frames to simulate before drawing")
	width := flag.Int("width", 800, "Image width in pixels")
	height := flag.Int("height", 600, "Image height in pixels")
	zoom := flag.Float64("zoom", 0, "Pixels per render unit (overrides config)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	opts := options{
		worldPath: *worldPath,
		outPath:   *outPath,
		frames:    *frames,
		width:     *width,
		height:    *height,
		zoom:      cfg.Display.Zoom,
	}
	if *zoom > 0 {
		opts.zoom = float32(*zoom)
	}

	stats, err := run(ctx, cfg, opts, logger)
	if err != nil {
		logger.Error(ctx, "Snapshot failed", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Snapshot written",
		"path", opts.outPath,
		"frames", stats.Frame,
		"nodes", stats.Nodes,
		"links", stats.Links,
		"energy", stats.Energy,
	)
}

// run loads or builds a world, simulates it and writes the picture
func run(ctx context.Context, cfg *config.SandboxConfig, opts options, logger *logging.Logger) (engine.Stats, error) {
	w, err := loadWorld(ctx, cfg, opts.worldPath, logger)
	if err != nil {
		return engine.Stats{}, err
	}

	// no store: a snapshot never writes the world back
	cfg.World.StartPaused = false
	sandbox := engine.NewSandbox(cfg, w, nil, logger)
	step := cfg.World.FrameDuration()
	for i := 0; i < opts.frames; i++ {
		sandbox.Frame(step)
	}

	surface, err := render.NewSnapshotSurface(opts.width, opts.height, opts.zoom)
	if err != nil {
		return engine.Stats{}, err
	}
	defer surface.Close()

	surface.Clear(background)
	sandbox.Do(func() {
		cx, cy := centre(sandbox.World)
		surface.LookAt(cx, cy)
	})
	view := surface.View()
	sandbox.SetHUDPosition(view.ToWorld(8, 22))
	sandbox.Render(surface)

	if err := surface.SavePNG(opts.outPath); err != nil {
		return engine.Stats{}, err
	}
	return sandbox.GetStats(), nil
}

func loadWorld(ctx context.Context, cfg *config.SandboxConfig, path string, logger *logging.Logger) (*world.World, error) {
	if path == "" {
		return demoBridge(cfg.Editor)
	}
	storeCfg := cfg.Storage
	storeCfg.Path = path
	return storage.NewStore(storeCfg, logger).Load(ctx)
}

// centre returns the middle of the world's bounding box in render units
func centre(w *world.World) (float32, float32) {
	nodes := w.Nodes()
	if len(nodes) == 0 {
		return 0, 0
	}
	lo, hi := nodes[0].P, nodes[0].P
	for _, n := range nodes[1:] {
		lo = lo.Min(n.P)
		hi = hi.Max(n.P)
	}
	s := w.Scale()
	return (lo.X + hi.X) / 2 * s, (lo.Y + hi.Y) / 2 * s
}
