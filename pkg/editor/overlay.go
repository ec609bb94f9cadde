// pkg/editor/overlay.go
package editor

import (
	"image/color"

	"github.com/opd-ai/go-strut/pkg/render"
)

var (
	ghostFill     = color.RGBA{R: 255, G: 255, B: 255, A: 96}
	selectedStyle = render.Style{
		Stroke:      color.RGBA{R: 255, G: 220, B: 0, A: 255},
		StrokeWidth: 0.1,
	}
	previewStyle = render.Style{Fill: color.RGBA{R: 200, G: 200, B: 200, A: 160}}
	bandStyle    = render.Style{
		Fill:        color.RGBA{R: 80, G: 140, B: 255, A: 48},
		Stroke:      color.RGBA{R: 80, G: 140, B: 255, A: 200},
		StrokeWidth: 0.05,
	}
)

// Render draws the editor overlay on top of the world: the paste ghost,
// selection rings, the link being placed and the rubber band
func (e *Editor) Render(s render.Surface) {
	saved := s.Style()
	defer s.SetStyle(saved)

	scale := e.world.Scale()
	r := e.world.Radius

	if e.tool == ToolSelect && e.HasClipboard() && !e.banding && len(e.drag) == 0 {
		ghost, _ := e.Ghost(e.pointer.X, e.pointer.Y)
		s.SetStyle(render.Style{Fill: ghostFill})
		e.world.RenderSelection(s, ghost)
	}

	s.SetStyle(selectedStyle)
	for _, i := range e.selection {
		if n, ok := e.world.Node(i); ok {
			s.Circle(n.P.X*scale, n.P.Y*scale, r*1.4)
		}
	}

	if n, ok := e.world.Node(e.anchor); ok {
		s.SetStyle(previewStyle)
		s.Line(n.P.X*scale, n.P.Y*scale, e.pointer.X*scale, e.pointer.Y*scale, e.world.LinkWidth())
	}

	if e.banding {
		lo := e.bandStart.Min(e.pointer).Scale(scale)
		hi := e.bandStart.Max(e.pointer).Scale(scale)
		s.SetStyle(bandStyle)
		s.Rect(lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y)
	}
}
