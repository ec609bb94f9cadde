// pkg/render/surface.go
package render

import (
	"image/color"
)

// Surface is a 2D drawing target in render units with +Y pointing up.
// Primitives use the current Style: shapes are filled with Fill and
// outlined with Stroke when StrokeWidth is positive, lines and text are
// drawn in Fill.
type Surface interface {
	Circle(x, y, r float32)
	Line(x1, y1, x2, y2, width float32)
	Rect(x, y, w, h float32)
	Text(s string, x, y, size float32)
	Style() Style
	SetStyle(s Style)
}

// Style is the settable drawing state of a surface
type Style struct {
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float32
}

// DefaultStyle is opaque white with no outline
var DefaultStyle = Style{
	Fill:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
	Stroke: color.RGBA{A: 255},
}

// Modulate multiplies c by tint channel-wise, keeping c's alpha
func Modulate(c color.RGBA, tint [3]uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(tint[0]) / 255),
		G: uint8(uint16(c.G) * uint16(tint[1]) / 255),
		B: uint8(uint16(c.B) * uint16(tint[2]) / 255),
		A: c.A,
	}
}

// Shade scales the color channels of c by k in [0, 1], keeping alpha
func Shade(c color.RGBA, k float32) color.RGBA {
	if k < 0 {
		k = 0
	} else if k > 1 {
		k = 1
	}
	return color.RGBA{
		R: uint8(float32(c.R) * k),
		G: uint8(float32(c.G) * k),
		B: uint8(float32(c.B) * k),
		A: c.A,
	}
}

// state carries the style and the depth counter shared by all surfaces.
// Depth starts at zero and decreases with every primitive, so later
// primitives sort in front.
type state struct {
	style Style
	depth float32
}

func newState() state {
	return state{style: DefaultStyle}
}

func (s *state) Style() Style      { return s.style }
func (s *state) SetStyle(st Style) { s.style = st }

// Depth returns the depth of the most recent primitive
func (s *state) Depth() float32 { return s.depth }

func (s *state) nextDepth() float32 {
	s.depth--
	return s.depth
}

func (s *state) resetDepth() { s.depth = 0 }

// View maps render units onto a pixel grid: Center lands in the middle
// of the Width x Height target and one unit spans Zoom pixels.
type View struct {
	CenterX, CenterY float32
	Zoom             float32
	Width, Height    int
}

// ToScreen converts a render-space point to pixel coordinates (+Y down)
func (v View) ToScreen(x, y float32) (float64, float64) {
	sx := float64((x-v.CenterX)*v.Zoom) + float64(v.Width)/2
	sy := float64(v.Height)/2 - float64((y-v.CenterY)*v.Zoom)
	return sx, sy
}

// ToWorld converts pixel coordinates back to render space
func (v View) ToWorld(sx, sy float64) (float32, float32) {
	if v.Zoom == 0 {
		return v.CenterX, v.CenterY
	}
	x := float32(sx-float64(v.Width)/2)/v.Zoom + v.CenterX
	y := float32(float64(v.Height)/2-sy)/v.Zoom + v.CenterY
	return x, y
}
