// pkg/render/terminal.go
package render

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

// TerminalSurface rasterizes primitives into character cells on a tcell
// screen. Each cell covers one unit horizontally and two vertically in
// pixel terms, which keeps circles round on typical terminal fonts.
type TerminalSurface struct {
	state
	screen tcell.Screen
	view   View
}

// NewTerminalSurface draws onto screen with zoom cells per render unit
func NewTerminalSurface(screen tcell.Screen, zoom float32) *TerminalSurface {
	w, h := screen.Size()
	return &TerminalSurface{
		state:  newState(),
		screen: screen,
		view:   View{Zoom: zoom, Width: w, Height: h * 2},
	}
}

// View returns the current render-to-cell mapping in half-cell pixels
func (r *TerminalSurface) View() View { return r.view }

// SetCenter sets the render-space point shown in the middle of the screen
func (r *TerminalSurface) SetCenter(x, y float32) {
	r.view.CenterX, r.view.CenterY = x, y
}

// SetZoom sets the number of cells per render unit
func (r *TerminalSurface) SetZoom(zoom float32) {
	if zoom > 0 {
		r.view.Zoom = zoom
	}
}

// Resize picks up a new screen size
func (r *TerminalSurface) Resize() {
	w, h := r.screen.Size()
	r.view.Width, r.view.Height = w, h*2
}

// ToWorld converts a cell position to render space
func (r *TerminalSurface) ToWorld(cx, cy int) (float32, float32) {
	return r.view.ToWorld(float64(cx)+0.5, float64(cy*2)+1)
}

// Clear blanks the screen and resets the depth
func (r *TerminalSurface) Clear() {
	r.screen.Clear()
	r.resetDepth()
}

// Present flushes the frame to the terminal
func (r *TerminalSurface) Present() {
	r.screen.Show()
}

func cellStyle(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func (r *TerminalSurface) plot(px, py float64, ch rune, style tcell.Style) {
	cx, cy := int(math.Floor(px)), int(math.Floor(py/2))
	w, h := r.screen.Size()
	if cx < 0 || cy < 0 || cx >= w || cy >= h {
		return
	}
	r.screen.SetContent(cx, cy, ch, nil, style)
}

// Circle implements Surface
func (r *TerminalSurface) Circle(x, y, radius float32) {
	r.nextDepth()
	style := cellStyle(r.style.Fill)
	cx, cy := r.view.ToScreen(x, y)
	pr := float64(radius * r.view.Zoom)
	if pr < 1 {
		r.plot(cx, cy, 'o', style)
		return
	}
	for py := cy - pr; py <= cy+pr; py += 2 {
		for px := cx - pr; px <= cx+pr; px++ {
			dx, dy := px-cx, py-cy
			if dx*dx+dy*dy <= pr*pr {
				r.plot(px, py, '●', style)
			}
		}
	}
}

// Line implements Surface
func (r *TerminalSurface) Line(x1, y1, x2, y2, width float32) {
	r.nextDepth()
	style := cellStyle(r.style.Fill)
	ax, ay := r.view.ToScreen(x1, y1)
	bx, by := r.view.ToScreen(x2, y2)

	dx, dy := bx-ax, by-ay
	steps := int(math.Max(math.Abs(dx), math.Abs(dy/2)))
	if steps == 0 {
		r.plot(ax, ay, '·', style)
		return
	}
	ch := lineRune(dx, dy)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.plot(ax+dx*t, ay+dy*t, ch, style)
	}
}

// lineRune picks a glyph that follows the slope of a segment in pixel space
func lineRune(dx, dy float64) rune {
	adx, ady := math.Abs(dx), math.Abs(dy/2)
	switch {
	case ady < adx*0.4:
		return '─'
	case adx < ady*0.4:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// Rect implements Surface. (x, y) is the lower-left corner.
func (r *TerminalSurface) Rect(x, y, w, h float32) {
	r.nextDepth()
	style := cellStyle(r.style.Fill)
	x0, y0 := r.view.ToScreen(x, y+h)
	x1, y1 := r.view.ToScreen(x+w, y)
	for py := y0; py <= y1; py += 2 {
		for px := x0; px <= x1; px++ {
			r.plot(px, py, '█', style)
		}
	}
}

// Text implements Surface. Size is ignored; glyphs occupy one cell each.
func (r *TerminalSurface) Text(s string, x, y, size float32) {
	r.nextDepth()
	style := cellStyle(r.style.Fill)
	px, py := r.view.ToScreen(x, y)
	for _, ch := range s {
		r.plot(px, py, ch, style)
		px++
	}
}

// DrawString writes s at a fixed cell position, for status lines
func (r *TerminalSurface) DrawString(cx, cy int, s string) {
	style := cellStyle(r.style.Fill)
	for _, ch := range s {
		r.screen.SetContent(cx, cy, ch, nil, style)
		cx++
	}
}
