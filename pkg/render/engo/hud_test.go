// pkg/render/engo/hud_test.go
package engo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-strut/pkg/event"
	"github.com/opd-ai/go-strut/pkg/render"
)

// newTestHUD returns a HUD on a clock the test advances
func newTestHUD() (*HUDSystem, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	hud := NewHUDSystem()
	hud.now = func() time.Time { return now }
	return hud, &now
}

func TestHUDSystem_FlashExpires(t *testing.T) {
	hud, now := newTestHUD()

	if _, ok := hud.Message(); ok {
		t.Error("Expected no message on a new HUD")
	}

	hud.Flash("hello")
	if msg, ok := hud.Message(); !ok || msg != "hello" {
		t.Errorf("Expected 'hello', got %q (%v)", msg, ok)
	}

	*now = now.Add(flashDuration)
	if _, ok := hud.Message(); ok {
		t.Error("Expected message to expire")
	}
}

func TestHUDSystem_StorageEvents(t *testing.T) {
	hud, _ := newTestHUD()
	bus := event.NewEventBus()
	hud.Attach(bus)

	bus.Publish(event.NewWorldEvent(event.WorldSaved, nil, "world.bin", 3, 2, nil))
	msg, ok := hud.Message()
	if !ok || msg != "saved 3 nodes, 2 links to world.bin" {
		t.Errorf("Unexpected save message %q", msg)
	}

	bus.Publish(event.NewWorldEvent(event.SaveFailed, nil, "world.bin", 3, 2, errors.New("disk full")))
	msg, _ = hud.Message()
	if !strings.Contains(msg, "disk full") || !hud.isError {
		t.Errorf("Expected an error message mentioning the cause, got %q", msg)
	}

	bus.Publish(&event.BaseEvent{EventType: event.SimulationPaused})
	if msg, _ := hud.Message(); msg != "paused" {
		t.Errorf("Expected 'paused', got %q", msg)
	}

	hud.Detach()
	bus.Publish(&event.BaseEvent{EventType: event.SimulationResumed})
	if msg, _ := hud.Message(); msg != "paused" {
		t.Errorf("Detached HUD still reacts to events: %q", msg)
	}
}

func TestHUDSystem_Draw(t *testing.T) {
	hud, _ := newTestHUD()
	surface := render.NewNullSurface(quiet())
	view := render.View{Zoom: 40, Width: 800, Height: 600}

	hud.Draw(surface, view)
	if surface.Texts != len(helpLines) {
		t.Errorf("Expected %d help lines, got %d texts", len(helpLines), surface.Texts)
	}

	surface.Clear()
	hud.ToggleHelp()
	hud.Flash("saved")
	hud.Draw(surface, view)
	if surface.Texts != 1 {
		t.Errorf("Expected only the message, got %d texts", surface.Texts)
	}
	if surface.Style() != render.DefaultStyle {
		t.Error("Expected Draw to restore the surface style")
	}
}

func TestStatusPosition(t *testing.T) {
	view := render.View{Zoom: 40, Width: 800, Height: 600}
	x, y := StatusPosition(view)
	if !near(x, -9.8) || !near(y, 6.85) {
		t.Errorf("Expected (-9.8, 6.85), got (%f, %f)", x, y)
	}
}
