// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-strut/pkg/render"
)

// panSpeed is the keyboard pan rate in pixels per second
const panSpeed = 400

// CameraSystem maps render space onto the window. It pans with the arrow
// keys and zooms with the mouse wheel, keeping the point under the cursor
// in place.
type CameraSystem struct {
	view render.View

	baseZoom float32
	minZoom  float32
	maxZoom  float32
}

// NewCameraSystem creates a camera centred on the origin of a width x
// height window showing zoom pixels per render unit
func NewCameraSystem(width, height int, zoom float32) *CameraSystem {
	if zoom <= 0 {
		zoom = 1
	}
	return &CameraSystem{
		view:     render.View{Zoom: zoom, Width: width, Height: height},
		baseZoom: zoom,
		minZoom:  zoom / 10,
		maxZoom:  zoom * 10,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update follows the window size and applies pan and zoom input
func (cs *CameraSystem) Update(dt float32) {
	cs.Resize(int(engo.GameWidth()), int(engo.GameHeight()))

	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.ZoomAt(1+scrollY*0.1, engo.Input.Mouse.X, engo.Input.Mouse.Y)
	}
	if engo.Input.Button(actionZoomIn).Down() {
		cs.SetZoom(cs.view.Zoom * 1.02)
	}
	if engo.Input.Button(actionZoomOut).Down() {
		cs.SetZoom(cs.view.Zoom * 0.98)
	}
	if engo.Input.Button(actionResetZoom).JustPressed() {
		cs.SetZoom(cs.baseZoom)
	}

	// shift turns the arrows into structure nudges
	if engo.Input.Button(actionToggle).Down() {
		return
	}
	step := panSpeed * dt
	var dx, dy float32
	if engo.Input.Button(actionPanLeft).Down() {
		dx -= step
	}
	if engo.Input.Button(actionPanRight).Down() {
		dx += step
	}
	if engo.Input.Button(actionPanUp).Down() {
		dy -= step
	}
	if engo.Input.Button(actionPanDown).Down() {
		dy += step
	}
	if dx != 0 || dy != 0 {
		cs.Pan(dx, dy)
	}
}

// View returns the current render-to-window mapping
func (cs *CameraSystem) View() render.View { return cs.view }

// Resize updates the window size, ignoring empty sizes
func (cs *CameraSystem) Resize(width, height int) {
	if width > 0 && height > 0 {
		cs.view.Width, cs.view.Height = width, height
	}
}

// SetCenter puts the render-space point (x, y) in the middle of the window
func (cs *CameraSystem) SetCenter(x, y float32) {
	cs.view.CenterX, cs.view.CenterY = x, y
}

// Center returns the render-space point in the middle of the window
func (cs *CameraSystem) Center() (float32, float32) {
	return cs.view.CenterX, cs.view.CenterY
}

// Pan moves the view by a window-space offset in pixels (+Y down)
func (cs *CameraSystem) Pan(dx, dy float32) {
	cs.view.CenterX += dx / cs.view.Zoom
	cs.view.CenterY -= dy / cs.view.Zoom
}

// SetZoom sets the pixels per render unit, clamped to the camera limits
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.view.Zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.view.Zoom
}

// ZoomAt scales the zoom by factor while the render-space point under the
// window position (sx, sy) stays put
func (cs *CameraSystem) ZoomAt(factor, sx, sy float32) {
	if factor <= 0 {
		return
	}
	wx, wy := cs.ScreenToWorld(sx, sy)
	cs.SetZoom(cs.view.Zoom * factor)
	nx, ny := cs.ScreenToWorld(sx, sy)
	cs.view.CenterX += wx - nx
	cs.view.CenterY += wy - ny
}

// clampZoom ensures zoom is within valid bounds
func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// WorldToScreen converts a render-space point to window coordinates
func (cs *CameraSystem) WorldToScreen(x, y float32) (float32, float32) {
	sx, sy := cs.view.ToScreen(x, y)
	return float32(sx), float32(sy)
}

// ScreenToWorld converts window coordinates to a render-space point
func (cs *CameraSystem) ScreenToWorld(sx, sy float32) (float32, float32) {
	return cs.view.ToWorld(float64(sx), float64(sy))
}
