// pkg/render/engo/scene.go
package engo

import (
	"context"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/engine"
	"github.com/opd-ai/go-strut/pkg/logging"
)

// sceneType is the engo scene name
const sceneType = "StrutScene"

// SandboxScene shows a sandbox in an engo window. Engo's loop drives the
// simulation: every frame the scene steps the sandbox and redraws it.
type SandboxScene struct {
	sandbox *engine.Sandbox
	display config.DisplayConfig

	world    *ecs.World
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
	assets   *AssetManager

	ctx    context.Context
	logger *logging.Logger
}

// NewSandboxScene creates a scene for sandbox
func NewSandboxScene(sandbox *engine.Sandbox, display config.DisplayConfig, logger *logging.Logger) *SandboxScene {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &SandboxScene{
		sandbox: sandbox,
		display: display,
		assets:  NewAssetManager(),
		hud:     NewHUDSystem(),
		ctx:     logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()),
		logger:  logger.Component("engo"),
	}
}

// Type returns the scene type (required by Engo)
func (scene *SandboxScene) Type() string {
	return sceneType
}

// Preload loads the font (required by Engo)
func (scene *SandboxScene) Preload() {
	if err := scene.assets.LoadAssets(); err != nil {
		scene.logger.Warn(scene.ctx, "text disabled", "error", err.Error())
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *SandboxScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		scene.logger.Warn(scene.ctx, "unexpected updater, scene not set up")
		return
	}
	scene.world = world
	common.SetBackground(background)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	SetupInputBindings()
	scene.camera = NewCameraSystem(scene.display.Width, scene.display.Height, scene.display.Zoom)
	scene.centerOnWorld()
	scene.renderer = NewEngoRenderer(renderSystem, scene.camera, scene.assets)
	scene.input = NewInputSystem(scene.sandbox, scene.camera, scene.hud, scene.logger)
	scene.hud.Attach(scene.sandbox.EventBus)

	// input first so edits land in this frame's step
	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(&frameSystem{scene: scene})

	scene.logger.Info(scene.ctx, "scene ready",
		"width", scene.display.Width,
		"height", scene.display.Height,
		"zoom", scene.display.Zoom,
	)
}

// centerOnWorld points the camera at the middle of the structure
func (scene *SandboxScene) centerOnWorld() {
	scene.sandbox.Do(func() {
		w := scene.sandbox.World
		if w.NodeCount() == 0 {
			return
		}
		var cx, cy float32
		for _, n := range w.Nodes() {
			cx += n.P.X
			cy += n.P.Y
		}
		k := w.Scale() / float32(w.NodeCount())
		scene.camera.SetCenter(cx*k, cy*k)
	})
}

// step advances the sandbox by dt seconds and redraws it
func (scene *SandboxScene) step(dt float32) {
	scene.sandbox.Frame(time.Duration(float64(dt) * float64(time.Second)))

	view := scene.camera.View()
	scene.sandbox.SetHUDPosition(StatusPosition(view))

	scene.renderer.Begin()
	scene.sandbox.Render(scene.renderer)
	scene.hud.Draw(scene.renderer, view)
	scene.renderer.End()
}

// Exit releases the window resources and closes the sandbox, which saves
// the world one last time. Engo calls it when the window closes.
func (scene *SandboxScene) Exit() {
	scene.hud.Detach()
	if scene.renderer != nil {
		scene.renderer.Close()
	}
	scene.assets.Close()
	if err := scene.sandbox.Close(scene.ctx); err != nil {
		scene.logger.Error(scene.ctx, "close sandbox", err)
	}
}

// frameSystem runs the scene's per-frame step inside engo's loop
type frameSystem struct {
	scene *SandboxScene
}

func (f *frameSystem) Remove(ecs.BasicEntity) {}

func (f *frameSystem) Update(dt float32) {
	f.scene.step(dt)
}

// Run opens a window showing sandbox and blocks until it is closed
func Run(sandbox *engine.Sandbox, display config.DisplayConfig, logger *logging.Logger) {
	engo.Run(engo.RunOptions{
		Title:  display.Title,
		Width:  display.Width,
		Height: display.Height,
		VSync:  display.VSync,
	}, NewSandboxScene(sandbox, display, logger))
}
