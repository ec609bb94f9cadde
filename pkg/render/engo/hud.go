// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/opd-ai/go-strut/pkg/event"
	"github.com/opd-ai/go-strut/pkg/render"
)

// flashDuration is how long a HUD message stays up
const flashDuration = 3 * time.Second

const (
	hudTextSize   = 14
	hudLineHeight = 18
	hudMargin     = 8
)

var (
	hudColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	errorColor = color.RGBA{R: 255, G: 96, B: 96, A: 255}
)

// helpLines documents the key bindings
var helpLines = []string{
	"left drag   place, link, move",
	"shift click toggle selection",
	"right drag  erase",
	"N F X Y R   node, fixed, fixed x, fixed y, rotor",
	"L O H S     link, rope, hydraulic, spring",
	"E / Tab     select tool / next tool",
	"C V Del     copy, paste, delete selection",
	"Space       pause",
	"F5 / F9     save / load",
	"arrows = -  pan and zoom, 0 resets",
	"shift arrow move selection or structure",
	"F1          hide help",
}

// HUDSystem draws the window overlay that is not part of the sandbox
// status line: transient messages for storage events and the key help.
type HUDSystem struct {
	mu      sync.Mutex
	message string
	isError bool
	until   time.Time
	help    bool
	subs    []*event.Subscription

	now func() time.Time
}

// NewHUDSystem creates a HUD with the help shown
func NewHUDSystem() *HUDSystem {
	return &HUDSystem{help: true, now: time.Now}
}

// Attach shows messages for storage and pause events published on bus.
// Handlers run inside sandbox calls, so they only touch HUD state.
func (hud *HUDSystem) Attach(bus *event.Bus) {
	hud.mu.Lock()
	defer hud.mu.Unlock()

	hud.subs = append(hud.subs,
		bus.Subscribe(event.WorldSaved, func(e event.Event) {
			if we, ok := e.(*event.WorldEvent); ok {
				hud.Flash(fmt.Sprintf("saved %d nodes, %d links to %s", we.Nodes, we.Links, we.Path))
			}
		}),
		bus.Subscribe(event.WorldLoaded, func(e event.Event) {
			if we, ok := e.(*event.WorldEvent); ok {
				hud.Flash(fmt.Sprintf("loaded %d nodes, %d links from %s", we.Nodes, we.Links, we.Path))
			}
		}),
		bus.Subscribe(event.SaveFailed, func(e event.Event) {
			if we, ok := e.(*event.WorldEvent); ok {
				hud.flashError(fmt.Sprintf("save failed: %v", we.Err))
			}
		}),
		bus.Subscribe(event.SimulationPaused, func(event.Event) { hud.Flash("paused") }),
		bus.Subscribe(event.SimulationResumed, func(event.Event) { hud.Flash("running") }),
	)
}

// Detach stops listening to the bus
func (hud *HUDSystem) Detach() {
	hud.mu.Lock()
	subs := hud.subs
	hud.subs = nil
	hud.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}

// Flash shows msg for a few seconds
func (hud *HUDSystem) Flash(msg string) {
	hud.show(msg, false)
}

func (hud *HUDSystem) flashError(msg string) {
	hud.show(msg, true)
}

func (hud *HUDSystem) show(msg string, isError bool) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.message = msg
	hud.isError = isError
	hud.until = hud.now().Add(flashDuration)
}

// Message returns the message on display, if any
func (hud *HUDSystem) Message() (string, bool) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	if hud.message == "" || !hud.now().Before(hud.until) {
		return "", false
	}
	return hud.message, true
}

// ToggleHelp shows or hides the key help
func (hud *HUDSystem) ToggleHelp() {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.help = !hud.help
}

// HelpVisible reports whether the key help is shown
func (hud *HUDSystem) HelpVisible() bool {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return hud.help
}

// Draw renders the help below the status line and the message at the
// bottom of the window described by view
func (hud *HUDSystem) Draw(s render.Surface, view render.View) {
	saved := s.Style()
	defer s.SetStyle(saved)

	msg, showMsg := hud.Message()
	hud.mu.Lock()
	help, isError := hud.help, hud.isError
	hud.mu.Unlock()

	s.SetStyle(render.Style{Fill: hudColor})
	if help {
		for i, line := range helpLines {
			x, y := view.ToWorld(hudMargin, float64(hudMargin+hudLineHeight*(i+2)))
			s.Text(line, x, y, hudTextSize)
		}
	}

	if showMsg {
		if isError {
			s.SetStyle(render.Style{Fill: errorColor})
		}
		x, y := view.ToWorld(hudMargin, float64(view.Height-hudMargin))
		s.Text(msg, x, y, hudTextSize)
	}
}

// StatusPosition returns the render-space baseline of the sandbox status
// line, at the top left of the window
func StatusPosition(view render.View) (float32, float32) {
	return view.ToWorld(hudMargin, hudMargin+hudLineHeight)
}
