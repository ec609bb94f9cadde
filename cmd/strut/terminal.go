// cmd/strut/terminal.go
package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/editor"
	"github.com/opd-ai/go-strut/pkg/engine"
	"github.com/opd-ai/go-strut/pkg/logging"
	"github.com/opd-ai/go-strut/pkg/render"
)

// cellsPerPixel converts the window zoom to a terminal zoom; a cell is
// roughly eight pixels wide
const cellsPerPixel = 1.0 / 8

// toolRunes binds a key to every editor tool, as in the window front end
var toolRunes = map[rune]editor.Tool{
	'n': editor.ToolNode,
	'f': editor.ToolFixed,
	'x': editor.ToolFixedX,
	'y': editor.ToolFixedY,
	'r': editor.ToolRotor,
	'l': editor.ToolLink,
	'o': editor.ToolRope,
	'h': editor.ToolHydraulic,
	's': editor.ToolSpring,
	'e': editor.ToolSelect,
}

var statusColor = color.RGBA{R: 230, G: 230, B: 230, A: 255}

// terminalUI edits and shows a sandbox on a tcell screen. The sandbox's
// own loop runs the simulation; the UI only feeds input and redraws.
type terminalUI struct {
	sandbox *engine.Sandbox
	screen  tcell.Screen
	surface *render.TerminalSurface

	pressed bool
	erasing bool
	message string

	ctx    context.Context
	logger *logging.Logger
}

func newTerminalUI(ctx context.Context, sandbox *engine.Sandbox, screen tcell.Screen, zoom float32, logger *logging.Logger) *terminalUI {
	ui := &terminalUI{
		sandbox: sandbox,
		screen:  screen,
		surface: render.NewTerminalSurface(screen, max(zoom*cellsPerPixel, 1)),
		ctx:     ctx,
		logger:  logger.Component("terminal"),
	}
	ui.centerOnWorld()
	return ui
}

// runTerminal runs the terminal front end until the user quits
func runTerminal(ctx context.Context, sandbox *engine.Sandbox, display config.DisplayConfig, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ui := newTerminalUI(ctx, sandbox, screen, display.Zoom, logger)

	sandbox.Start()
	defer sandbox.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(sandbox.Config.World.FrameDuration())
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !ui.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			ui.draw()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// centerOnWorld points the view at the middle of the structure
func (ui *terminalUI) centerOnWorld() {
	ui.sandbox.Do(func() {
		w := ui.sandbox.World
		if w.NodeCount() == 0 {
			return
		}
		var cx, cy float32
		for _, n := range w.Nodes() {
			cx += n.P.X
			cy += n.P.Y
		}
		k := w.Scale() / float32(w.NodeCount())
		ui.surface.SetCenter(cx*k, cy*k)
	})
}

// draw redraws the whole screen
func (ui *terminalUI) draw() {
	ui.surface.Clear()
	ui.sandbox.SetHUDPosition(ui.surface.ToWorld(0, 0))
	ui.sandbox.Render(ui.surface)

	if ui.message != "" {
		_, h := ui.screen.Size()
		ui.surface.SetStyle(render.Style{Fill: statusColor})
		ui.surface.DrawString(0, h-1, ui.message)
	}
	ui.surface.Present()
}

// handleEvent applies one terminal event. It returns false to quit.
func (ui *terminalUI) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ui.handleKey(ev)
	case *tcell.EventMouse:
		x, y := ev.Position()
		ui.handleMouse(x, y, ev.Buttons())
	case *tcell.EventResize:
		ui.surface.Resize()
		ui.screen.Sync()
	}
	return true
}

func (ui *terminalUI) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return false
	case tcell.KeyCtrlS:
		ui.save()
	case tcell.KeyTab:
		ui.sandbox.Do(func() {
			ed := ui.sandbox.Editor
			ed.SetTool(ed.Tool().Next())
		})
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ui.sandbox.Do(func() {
			ui.sandbox.Editor.DeleteSelection()
		})
	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown:
		dx, dy := arrowDirection(ev.Key())
		if ev.Modifiers()&tcell.ModShift != 0 {
			ui.nudge(dx, dy)
		} else {
			ui.pan(dx, dy)
		}
	case tcell.KeyRune:
		return ui.handleRune(ev.Rune())
	}
	return true
}

func (ui *terminalUI) handleRune(r rune) bool {
	if t, ok := toolRunes[r]; ok {
		ui.sandbox.Do(func() {
			ui.sandbox.Editor.SetTool(t)
		})
		ui.pressed = false
		return true
	}

	switch r {
	case 'q':
		return false
	case ' ':
		ui.sandbox.TogglePause()
	case 'c':
		ui.copySelection()
	case 'v':
		ui.sandbox.Do(func() {
			p := ui.sandbox.Editor.Pointer()
			ui.sandbox.Editor.Paste(p.X, p.Y)
		})
	case '+', '=':
		ui.surface.SetZoom(ui.surface.View().Zoom * 1.25)
	case '-':
		ui.surface.SetZoom(ui.surface.View().Zoom / 1.25)
	}
	return true
}

func arrowDirection(k tcell.Key) (float32, float32) {
	switch k {
	case tcell.KeyLeft:
		return -1, 0
	case tcell.KeyRight:
		return 1, 0
	case tcell.KeyUp:
		return 0, 1
	default:
		return 0, -1
	}
}

// nudge moves the selection, or the whole structure, by one node diameter
func (ui *terminalUI) nudge(dx, dy float32) {
	ui.sandbox.Do(func() {
		step := 2 * ui.sandbox.World.NodeRadius()
		ui.sandbox.Editor.Nudge(dx*step, dy*step)
	})
}

// pan moves the view by a quarter of the screen
func (ui *terminalUI) pan(dx, dy float32) {
	v := ui.surface.View()
	step := float32(v.Width) / 4 / v.Zoom
	ui.surface.SetCenter(v.CenterX+dx*step, v.CenterY+dy*step)
}

// handleMouse tracks the buttons itself: tcell reports the held buttons
// with every motion event
func (ui *terminalUI) handleMouse(cx, cy int, buttons tcell.ButtonMask) {
	left := buttons&tcell.Button1 != 0
	ui.erasing = buttons&tcell.Button2 != 0

	ui.sandbox.Do(func() {
		x, y := ui.toWorld(cx, cy)
		ed := ui.sandbox.Editor
		switch {
		case left && !ui.pressed:
			ed.Press(x, y)
			ui.pressed = true
		case !left && ui.pressed:
			ed.Release(x, y)
			ui.pressed = false
		default:
			ed.Drag(x, y)
		}
		if ui.erasing {
			ed.Erase(x, y)
		}
	})
}

// toWorld converts a cell to world units. Callers hold the sandbox lock.
func (ui *terminalUI) toWorld(cx, cy int) (float32, float32) {
	x, y := ui.surface.ToWorld(cx, cy)
	scale := ui.sandbox.World.Scale()
	if scale == 0 {
		return x, y
	}
	return x / scale, y / scale
}

func (ui *terminalUI) copySelection() {
	var (
		n   int
		err error
	)
	ui.sandbox.Do(func() {
		n, err = ui.sandbox.Editor.Copy()
	})
	switch {
	case errors.Is(err, editor.ErrNothingSelected):
		ui.message = "nothing selected"
	case err != nil:
		ui.logger.Error(ui.ctx, "copy failed", err)
		ui.message = "copy failed"
	default:
		ui.message = fmt.Sprintf("copied %d nodes", n)
	}
}

func (ui *terminalUI) save() {
	if err := ui.sandbox.Save(ui.ctx); err != nil {
		ui.logger.Error(ui.ctx, "save failed", err)
		ui.message = fmt.Sprintf("save failed: %v", err)
		return
	}
	ui.message = "saved"
}
