// pkg/engine/sandbox.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/editor"
	"github.com/opd-ai/go-strut/pkg/event"
	"github.com/opd-ai/go-strut/pkg/logging"
	"github.com/opd-ai/go-strut/pkg/physics"
	"github.com/opd-ai/go-strut/pkg/render"
	"github.com/opd-ai/go-strut/pkg/storage"
	"github.com/opd-ai/go-strut/pkg/world"
)

// maxFrameDelta caps the simulated time of one frame so a stalled front
// end does not explode the solver
const maxFrameDelta = 100 * time.Millisecond

// hudTextSize is the status line size in pixels
const hudTextSize = 14

// Sandbox owns a world and drives it frame by frame: the editor mutates
// the world, the integrator advances it, queued removals are flushed and
// the resulting index swaps are published before anything is drawn.
type Sandbox struct {
	Config     *config.SandboxConfig
	World      *world.World
	Integrator world.Integrator
	Editor     *editor.Editor
	EventBus   *event.Bus
	// Store is optional; without it saving and autosave are disabled
	Store *storage.Store

	// WorldLock serializes every access to World and Editor
	WorldLock sync.Mutex

	CurrentFrame uint64
	ElapsedTime  float64 // simulated seconds
	LastUpdate   time.Time

	paused    bool
	running   bool
	sinceSave time.Duration
	hud       physics.Vector2D
	stop      chan struct{}
	done      chan struct{}

	ctx    context.Context
	logger *logging.Logger
}

// NewSandbox creates a paused or running sandbox around w, as configured.
// A nil world starts empty. The solver constants always come from cfg;
// the render scale only applies to an empty world, since a saved world
// carries its own.
func NewSandbox(cfg *config.SandboxConfig, w *world.World, store *storage.Store, logger *logging.Logger) *Sandbox {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	if w == nil {
		w = world.New()
	}
	w.Tuning = cfg.Physics.ToTuning()
	if w.NodeCount() == 0 && cfg.World.Scale > 0 {
		w.SetScale(cfg.World.Scale)
	}

	bus := event.NewEventBus()
	s := &Sandbox{
		Config:     cfg,
		World:      w,
		Integrator: world.Euler{},
		EventBus:   bus,
		Store:      store,
		LastUpdate: time.Now(),
		paused:     cfg.World.StartPaused,
		ctx:        logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()),
		logger:     logger.Component("sandbox"),
	}
	s.Editor = editor.New(w, cfg.Editor, bus, logger)
	s.Editor.Attach(bus)
	return s
}

// Do runs fn with the world locked. Front ends feed the editor through it.
func (s *Sandbox) Do(fn func()) {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	fn()
}

// Frame advances the sandbox by dt of wall time: the world is updated
// (not at all while paused), pending removals are flushed and the swaps
// published, then the autosave clock ticks. It returns the swaps.
func (s *Sandbox) Frame(dt time.Duration) []world.Swap {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()

	step := min(dt, maxFrameDelta)
	if s.paused || step < 0 {
		step = 0
	}
	s.World.Update(s.Integrator, float32(step.Seconds()), s.Config.World.Substeps)
	s.ElapsedTime += step.Seconds()

	var swaps []world.Swap
	if s.World.Pending() {
		swaps = s.World.Flush()
		s.EventBus.Publish(event.NewRemapEvent(s, swaps))
	}
	s.CurrentFrame++

	s.tickAutosave(dt)
	return swaps
}

func (s *Sandbox) tickAutosave(dt time.Duration) {
	interval := s.Config.Storage.AutosaveInterval()
	if s.Store == nil || interval <= 0 {
		return
	}
	s.sinceSave += dt
	if s.sinceSave < interval {
		return
	}
	s.sinceSave = 0

	err := s.Store.Autosave(s.ctx, s.World)
	switch {
	case err == nil:
		s.publishStorage(event.WorldSaved, nil)
	case errors.Is(err, storage.ErrBreakerOpen):
		// already reported when the breaker tripped
	default:
		s.publishStorage(event.SaveFailed, err)
	}
}

func (s *Sandbox) publishStorage(t event.Type, err error) {
	s.EventBus.Publish(event.NewWorldEvent(t, s, s.Store.Path(), s.World.NodeCount(), s.World.LinkCount(), err))
}

// Save writes the world to the store right away, bypassing the autosave
// breaker
func (s *Sandbox) Save(ctx context.Context) error {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()

	if s.Store == nil {
		return errors.New("no world store configured")
	}
	if err := s.Store.Save(ctx, s.World); err != nil {
		s.publishStorage(event.SaveFailed, err)
		return err
	}
	s.sinceSave = 0
	s.publishStorage(event.WorldSaved, nil)
	return nil
}

// Load replaces the world with the stored one. On failure the current
// world is kept.
func (s *Sandbox) Load(ctx context.Context) error {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()

	if s.Store == nil {
		return errors.New("no world store configured")
	}
	w, err := s.Store.Load(ctx)
	if err != nil {
		return err
	}
	w.Tuning = s.World.Tuning
	s.World = w
	s.Editor.SetWorld(w)
	s.publishStorage(event.WorldLoaded, nil)
	return nil
}

// Start runs frames on a ticker at the configured frame rate until Stop
func (s *Sandbox) Start() {
	s.WorldLock.Lock()
	if s.running {
		s.WorldLock.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.LastUpdate = time.Now()
	stop, done := s.stop, s.done
	s.WorldLock.Unlock()

	s.logger.Info(s.ctx, "simulation loop started",
		"frame_rate", s.Config.World.FrameRate,
		"substeps", s.Config.World.Substeps,
	)
	go s.loop(stop, done)
}

func (s *Sandbox) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.Config.World.FrameDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Frame(s.calculateDeltaTime())
		case <-stop:
			return
		}
	}
}

// calculateDeltaTime returns the wall time since the previous frame
func (s *Sandbox) calculateDeltaTime() time.Duration {
	now := time.Now()
	dt := now.Sub(s.LastUpdate)
	s.LastUpdate = now
	return dt
}

// Stop halts the loop started by Start and waits for it to exit
func (s *Sandbox) Stop() {
	s.WorldLock.Lock()
	if !s.running {
		s.WorldLock.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.WorldLock.Unlock()

	close(stop)
	<-done
	s.logger.Info(s.ctx, "simulation loop stopped", "frames", s.Frames())
}

// IsRunning reports whether the frame loop is active
func (s *Sandbox) IsRunning() bool {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	return s.running
}

// Frames returns the number of frames run so far
func (s *Sandbox) Frames() uint64 {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	return s.CurrentFrame
}

// Paused reports whether the simulation is stopped. Editing still works
// while paused.
func (s *Sandbox) Paused() bool {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	return s.paused
}

// TogglePause stops or resumes the simulation and returns the new state
func (s *Sandbox) TogglePause() bool {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	s.setPaused(!s.paused)
	return s.paused
}

// SetPaused stops or resumes the simulation
func (s *Sandbox) SetPaused(paused bool) {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	s.setPaused(paused)
}

func (s *Sandbox) setPaused(paused bool) {
	if paused == s.paused {
		return
	}
	s.paused = paused
	t := event.SimulationResumed
	if paused {
		t = event.SimulationPaused
	}
	s.EventBus.Publish(&event.BaseEvent{EventType: t, Source: s})
}

// SetHUDPosition places the status line, in render units
func (s *Sandbox) SetHUDPosition(x, y float32) {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	s.hud = physics.Vec(x, y)
}

// Render draws the world, the editor overlay and the status line
func (s *Sandbox) Render(surface render.Surface) {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()

	s.World.Render(surface)
	s.Editor.Render(surface)
	surface.Text(s.status(), s.hud.X, s.hud.Y, hudTextSize)
}

func (s *Sandbox) status() string {
	state := "running"
	if s.paused {
		state = "paused"
	}
	return fmt.Sprintf("%s  tool %s  nodes %d  links %d  energy %.3f",
		state, s.Editor.Tool(), s.World.NodeCount(), s.World.LinkCount(), s.World.Energy)
}

// Stats is a point-in-time summary of the sandbox
type Stats struct {
	Frame   uint64  `json:"frame"`
	Elapsed float64 `json:"elapsed"`
	Nodes   int     `json:"nodes"`
	Links   int     `json:"links"`
	Energy  float32 `json:"energy"`
	Paused  bool    `json:"paused"`
}

// GetStats returns a consistent summary of the sandbox state
func (s *Sandbox) GetStats() Stats {
	s.WorldLock.Lock()
	defer s.WorldLock.Unlock()
	return Stats{
		Frame:   s.CurrentFrame,
		Elapsed: s.ElapsedTime,
		Nodes:   s.World.NodeCount(),
		Links:   s.World.LinkCount(),
		Energy:  s.World.Energy,
		Paused:  s.paused,
	}
}

// Close stops the loop and saves the world one last time
func (s *Sandbox) Close(ctx context.Context) error {
	s.Stop()
	s.Editor.Detach()
	if s.Store == nil {
		return nil
	}
	if err := s.Save(ctx); err != nil {
		return logging.WrapError(err, "final save")
	}
	return nil
}
