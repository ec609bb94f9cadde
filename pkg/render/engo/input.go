// pkg/render/engo/input.go
package engo

import (
	"context"
	"errors"
	"fmt"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-strut/pkg/editor"
	"github.com/opd-ai/go-strut/pkg/engine"
	"github.com/opd-ai/go-strut/pkg/logging"
)

// Button names registered with engo
const (
	actionNextTool   = "nextTool"
	actionPause      = "pause"
	actionCopy       = "copy"
	actionPaste      = "paste"
	actionDelete     = "delete"
	actionCancel     = "cancel"
	actionSave       = "save"
	actionLoad       = "load"
	actionHelp       = "help"
	actionToggle     = "toggleSelect"
	actionZoomIn     = "zoomIn"
	actionZoomOut    = "zoomOut"
	actionResetZoom  = "resetZoom"
	actionPanLeft    = "panLeft"
	actionPanRight   = "panRight"
	actionPanUp      = "panUp"
	actionPanDown    = "panDown"
	toolActionPrefix = "tool."
)

// toolKeys binds a key to every editor tool
var toolKeys = map[editor.Tool]engo.Key{
	editor.ToolNode:      engo.KeyN,
	editor.ToolFixed:     engo.KeyF,
	editor.ToolFixedX:    engo.KeyX,
	editor.ToolFixedY:    engo.KeyY,
	editor.ToolRotor:     engo.KeyR,
	editor.ToolLink:      engo.KeyL,
	editor.ToolRope:      engo.KeyO,
	editor.ToolHydraulic: engo.KeyH,
	editor.ToolSpring:    engo.KeyS,
	editor.ToolSelect:    engo.KeyE,
}

// nudgeKeys move the structure with shift held instead of panning
var nudgeKeys = []struct {
	action string
	dx, dy float32
}{
	{actionPanLeft, -1, 0},
	{actionPanRight, 1, 0},
	{actionPanUp, 0, 1},
	{actionPanDown, 0, -1},
}

func toolAction(t editor.Tool) string { return toolActionPrefix + t.String() }

// SetupInputBindings registers the sandbox key bindings with engo
func SetupInputBindings() {
	for t, key := range toolKeys {
		engo.Input.RegisterButton(toolAction(t), key)
	}
	engo.Input.RegisterButton(actionNextTool, engo.KeyTab)
	engo.Input.RegisterButton(actionPause, engo.KeySpace)
	engo.Input.RegisterButton(actionCopy, engo.KeyC)
	engo.Input.RegisterButton(actionPaste, engo.KeyV)
	engo.Input.RegisterButton(actionDelete, engo.KeyDelete, engo.KeyBackspace)
	engo.Input.RegisterButton(actionCancel, engo.KeyEscape)
	engo.Input.RegisterButton(actionSave, engo.KeyF5)
	engo.Input.RegisterButton(actionLoad, engo.KeyF9)
	engo.Input.RegisterButton(actionHelp, engo.KeyF1)
	engo.Input.RegisterButton(actionToggle, engo.KeyLeftShift)

	engo.Input.RegisterButton(actionZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(actionZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(actionResetZoom, engo.KeyZero)
	engo.Input.RegisterButton(actionPanLeft, engo.KeyArrowLeft)
	engo.Input.RegisterButton(actionPanRight, engo.KeyArrowRight)
	engo.Input.RegisterButton(actionPanUp, engo.KeyArrowUp)
	engo.Input.RegisterButton(actionPanDown, engo.KeyArrowDown)
}

// keyActions lists the one-shot actions checked every frame, tools first
func keyActions() []string {
	actions := make([]string, 0, int(editor.ToolSelect)+10)
	for t := editor.ToolNode; t <= editor.ToolSelect; t++ {
		actions = append(actions, toolAction(t))
	}
	return append(actions,
		actionNextTool, actionPause, actionCopy, actionPaste, actionDelete,
		actionCancel, actionSave, actionLoad, actionHelp,
	)
}

// InputSystem turns mouse and keyboard input into editor gestures. The left
// button places and drags, shift-click toggles selection and the right
// button erases while held.
type InputSystem struct {
	sandbox *engine.Sandbox
	camera  *CameraSystem
	hud     *HUDSystem
	actions []string

	pressed bool
	erasing bool

	ctx    context.Context
	logger *logging.Logger
}

// NewInputSystem creates an input system feeding sandbox
func NewInputSystem(sandbox *engine.Sandbox, camera *CameraSystem, hud *HUDSystem, logger *logging.Logger) *InputSystem {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &InputSystem{
		sandbox: sandbox,
		camera:  camera,
		hud:     hud,
		actions: keyActions(),
		ctx:     logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()),
		logger:  logger.Component("input"),
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update processes this frame's input
func (is *InputSystem) Update(dt float32) {
	for _, action := range is.actions {
		if engo.Input.Button(action).JustPressed() {
			is.Trigger(action)
		}
	}
	if engo.Input.Button(actionToggle).Down() {
		for _, n := range nudgeKeys {
			if engo.Input.Button(n.action).JustPressed() {
				is.Nudge(n.dx, n.dy)
			}
		}
	}
	is.handleMouse()
}

// handleMouse tracks the buttons itself, so repeated press or release
// reports are harmless
func (is *InputSystem) handleMouse() {
	m := engo.Input.Mouse
	switch {
	case m.Button == engo.MouseButtonLeft && m.Action == engo.Press && !is.pressed:
		is.Press(m.X, m.Y, engo.Input.Button(actionToggle).Down())
	case m.Button == engo.MouseButtonLeft && m.Action == engo.Release && is.pressed:
		is.Release(m.X, m.Y)
	case m.Button == engo.MouseButtonRight && m.Action == engo.Press:
		is.erasing = true
	case m.Button == engo.MouseButtonRight && m.Action == engo.Release:
		is.erasing = false
	default:
		is.Move(m.X, m.Y)
	}
	if is.erasing {
		is.Erase(m.X, m.Y)
	}
}

// toWorld converts window coordinates to world units. Callers hold the
// sandbox lock.
func (is *InputSystem) toWorld(sx, sy float32) (float32, float32) {
	x, y := is.camera.ScreenToWorld(sx, sy)
	scale := is.sandbox.World.Scale()
	if scale == 0 {
		return x, y
	}
	return x / scale, y / scale
}

// Press starts a gesture at a window position. With toggle set and the
// select tool active it toggles the node under the pointer instead.
func (is *InputSystem) Press(sx, sy float32, toggle bool) {
	is.sandbox.Do(func() {
		x, y := is.toWorld(sx, sy)
		ed := is.sandbox.Editor
		if toggle && ed.Tool() == editor.ToolSelect {
			ed.ToggleSelect(x, y)
			return
		}
		ed.Press(x, y)
		is.pressed = true
	})
}

// Move updates the pointer, dragging while the left button is held
func (is *InputSystem) Move(sx, sy float32) {
	is.sandbox.Do(func() {
		is.sandbox.Editor.Drag(is.toWorld(sx, sy))
	})
}

// Release ends the gesture started by Press
func (is *InputSystem) Release(sx, sy float32) {
	is.sandbox.Do(func() {
		is.sandbox.Editor.Release(is.toWorld(sx, sy))
		is.pressed = false
	})
}

// Erase removes the part under a window position
func (is *InputSystem) Erase(sx, sy float32) {
	is.sandbox.Do(func() {
		is.sandbox.Editor.Erase(is.toWorld(sx, sy))
	})
}

// Nudge moves the selection, or the whole structure when nothing is
// selected, by one node diameter per unit of direction
func (is *InputSystem) Nudge(dx, dy float32) {
	is.sandbox.Do(func() {
		step := 2 * is.sandbox.World.NodeRadius()
		is.sandbox.Editor.Nudge(dx*step, dy*step)
	})
}

// Trigger runs a key action by button name
func (is *InputSystem) Trigger(action string) {
	for t := editor.ToolNode; t <= editor.ToolSelect; t++ {
		if action == toolAction(t) {
			is.setTool(t)
			return
		}
	}

	switch action {
	case actionNextTool:
		is.sandbox.Do(func() {
			ed := is.sandbox.Editor
			ed.SetTool(ed.Tool().Next())
		})
	case actionPause:
		is.sandbox.TogglePause()
	case actionCopy:
		is.copySelection()
	case actionPaste:
		is.sandbox.Do(func() {
			p := is.sandbox.Editor.Pointer()
			is.sandbox.Editor.Paste(p.X, p.Y)
		})
	case actionDelete:
		is.sandbox.Do(func() {
			is.sandbox.Editor.DeleteSelection()
		})
	case actionCancel:
		is.sandbox.Do(func() {
			is.sandbox.Editor.Cancel()
			is.sandbox.Editor.ClearSelection()
		})
		is.pressed = false
	case actionSave:
		if err := is.sandbox.Save(is.ctx); err != nil {
			is.logger.Error(is.ctx, "save failed", err)
		}
	case actionLoad:
		if err := is.sandbox.Load(is.ctx); err != nil {
			is.logger.Error(is.ctx, "load failed", err)
			is.flash(fmt.Sprintf("load failed: %v", err))
		}
	case actionHelp:
		if is.hud != nil {
			is.hud.ToggleHelp()
		}
	}
}

func (is *InputSystem) setTool(t editor.Tool) {
	is.sandbox.Do(func() {
		is.sandbox.Editor.SetTool(t)
	})
	is.pressed = false
}

func (is *InputSystem) copySelection() {
	var (
		n   int
		err error
	)
	is.sandbox.Do(func() {
		n, err = is.sandbox.Editor.Copy()
	})
	switch {
	case errors.Is(err, editor.ErrNothingSelected):
		is.flash("nothing selected")
	case err != nil:
		is.logger.Error(is.ctx, "copy failed", err)
	default:
		is.flash(fmt.Sprintf("copied %d nodes", n))
	}
}

func (is *InputSystem) flash(msg string) {
	if is.hud != nil {
		is.hud.Flash(msg)
	}
}
