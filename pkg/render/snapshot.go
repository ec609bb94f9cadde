// pkg/render/snapshot.go
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// SnapshotSurface rasterizes onto an in-memory gg context. It backs the
// headless snapshot command and image-based tests.
type SnapshotSurface struct {
	state
	view View
	dc   *gg.Context

	font  *text.FontSource
	faces map[float32]text.Face
}

// NewSnapshotSurface creates a width x height surface centered on the
// render-space origin with zoom pixels per unit
func NewSnapshotSurface(width, height int, zoom float32) (*SnapshotSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}
	if zoom <= 0 {
		return nil, fmt.Errorf("invalid snapshot zoom %v", zoom)
	}
	return &SnapshotSurface{
		state: newState(),
		view:  View{Zoom: zoom, Width: width, Height: height},
		dc:    gg.NewContext(width, height),
		faces: make(map[float32]text.Face),
	}, nil
}

// View returns the current render-to-pixel mapping
func (s *SnapshotSurface) View() View { return s.view }

// LookAt centers the view on a render-space point
func (s *SnapshotSurface) LookAt(x, y float32) {
	s.view.CenterX, s.view.CenterY = x, y
}

// Clear fills the image with bg and resets the depth
func (s *SnapshotSurface) Clear(bg color.RGBA) {
	s.dc.ClearWithColor(gg.FromColor(bg))
	s.resetDepth()
}

// Circle implements Surface
func (s *SnapshotSurface) Circle(x, y, r float32) {
	s.nextDepth()
	sx, sy := s.view.ToScreen(x, y)
	pr := float64(r * s.view.Zoom)

	s.dc.DrawCircle(sx, sy, pr)
	s.dc.SetColor(s.style.Fill)
	_ = s.dc.Fill()

	if s.style.StrokeWidth > 0 {
		s.dc.DrawCircle(sx, sy, pr)
		s.dc.SetColor(s.style.Stroke)
		s.dc.SetLineWidth(float64(s.style.StrokeWidth))
		_ = s.dc.Stroke()
	}
}

// Line implements Surface
func (s *SnapshotSurface) Line(x1, y1, x2, y2, width float32) {
	s.nextDepth()
	ax, ay := s.view.ToScreen(x1, y1)
	bx, by := s.view.ToScreen(x2, y2)

	s.dc.SetLineWidth(float64(width * s.view.Zoom))
	s.dc.SetColor(s.style.Fill)
	s.dc.DrawLine(ax, ay, bx, by)
	_ = s.dc.Stroke()
}

// Rect implements Surface. (x, y) is the lower-left corner.
func (s *SnapshotSurface) Rect(x, y, w, h float32) {
	s.nextDepth()
	sx, sy := s.view.ToScreen(x, y+h)
	pw, ph := float64(w*s.view.Zoom), float64(h*s.view.Zoom)

	s.dc.DrawRectangle(sx, sy, pw, ph)
	s.dc.SetColor(s.style.Fill)
	_ = s.dc.Fill()

	if s.style.StrokeWidth > 0 {
		s.dc.DrawRectangle(sx, sy, pw, ph)
		s.dc.SetColor(s.style.Stroke)
		s.dc.SetLineWidth(float64(s.style.StrokeWidth))
		_ = s.dc.Stroke()
	}
}

// Text implements Surface. Size is in pixels; (x, y) is the baseline start
// in render space.
func (s *SnapshotSurface) Text(str string, x, y, size float32) {
	s.nextDepth()
	face, err := s.face(size)
	if err != nil {
		return
	}
	sx, sy := s.view.ToScreen(x, y)
	s.dc.SetFont(face)
	s.dc.SetColor(s.style.Fill)
	s.dc.DrawString(str, sx, sy)
}

// face returns a cached Go Regular face of the given pixel size
func (s *SnapshotSurface) face(size float32) (text.Face, error) {
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	if s.font == nil {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		s.font = src
	}
	f := s.font.Face(float64(size))
	s.faces[size] = f
	return f, nil
}

// Image returns the rendered image
func (s *SnapshotSurface) Image() image.Image {
	return s.dc.Image()
}

// SavePNG writes the rendered image to path
func (s *SnapshotSurface) SavePNG(path string) error {
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	return nil
}

// Close releases the font and the drawing context
func (s *SnapshotSurface) Close() error {
	if s.font != nil {
		_ = s.font.Close()
		s.font = nil
	}
	return s.dc.Close()
}
