// pkg/world/render.go
package world

import (
	"image/color"

	"github.com/EngoEngine/math"

	"github.com/opd-ai/go-strut/pkg/physics"
	"github.com/opd-ai/go-strut/pkg/render"
)

// Node tints, multiplied into the surface fill color
var (
	tintDefault   = [3]uint8{240, 200, 64}
	tintFixed     = [3]uint8{64, 180, 255}
	tintRotor     = [3]uint8{180, 255, 64}
	tintRope      = [3]uint8{160, 130, 100}
	tintSpring    = [3]uint8{255, 255, 128}
	tintHydraulic = [3]uint8{32, 72, 180}
)

// maxWindings bounds the coil segments drawn for a rope or spring
const maxWindings = 512

// Render draws every link, then every node. The surface style is
// restored before returning.
func (w *World) Render(s render.Surface) {
	w.renderParts(s, w.nodes, w.links, w.nodeLinks)
}

// RenderSelection draws a detached selection, e.g. a paste preview
func (w *World) RenderSelection(s render.Surface, sel Selection) {
	adj := make(map[int][]int, len(sel.Nodes))
	for i, l := range sel.Links {
		adj[l.N1] = append(adj[l.N1], i)
		adj[l.N2] = append(adj[l.N2], i)
	}
	w.renderParts(s, sel.Nodes, sel.Links, adj)
}

func (w *World) renderParts(s render.Surface, nodes []Node, links []Link, adj map[int][]int) {
	saved := s.Style()
	defer s.SetStyle(saved)

	for _, l := range links {
		w.renderLink(s, saved, nodes[l.N1], nodes[l.N2], l)
	}
	for i, n := range nodes {
		w.renderNode(s, saved, n, nodeTint(n, links, adj[i]))
	}
}

// nodeTint picks the node color from its flavor, falling back to the kind
// of its first non-rigid link
func nodeTint(n Node, links []Link, incident []int) [3]uint8 {
	switch {
	case n.Rotor():
		return tintRotor
	case n.Anchored():
		return tintFixed
	}
	for _, li := range incident {
		switch links[li].Kind {
		case KindRope:
			return tintRope
		case KindSpring:
			return tintSpring
		case KindHydraulic:
			return tintHydraulic
		}
	}
	return tintDefault
}

func (w *World) renderNode(s render.Surface, base render.Style, n Node, tint [3]uint8) {
	scale := w.Scale()
	x, y := n.P.X*scale, n.P.Y*scale
	r := w.Radius

	fill := render.Modulate(base.Fill, tint)
	stroke := render.Shade(fill, 0.7)
	s.SetStyle(render.Style{Fill: fill, Stroke: stroke, StrokeWidth: 0.08 / math.Sqrt(r)})
	s.Circle(x, y, r)

	mark := render.Style{Fill: stroke, Stroke: stroke}
	s.SetStyle(mark)
	switch {
	case n.Rotor():
		s.Line(x-r*0.8, y, x+r*0.8, y, r*0.2)
		s.Line(x, y-r*0.8, x, y+r*0.8, r*0.2)
	case n.Fixed():
		s.Circle(x, y, r*0.45)
	case n.FixedX():
		s.Line(x, y-r*0.8, x, y+r*0.8, r*0.2)
	case n.FixedY():
		s.Line(x-r*0.8, y, x+r*0.8, y, r*0.2)
	}
}

// stressTint colors a link by how fast its endpoints approach (blue) or
// separate (red)
func stressTint(c color.RGBA, d float32) color.RGBA {
	pos, neg := float32(0), float32(0)
	if d > 0 {
		pos = d
	} else {
		neg = d
	}
	r := render.Shade(c, 1-pos)
	g := render.Shade(c, 1-pos+neg)
	b := render.Shade(c, 1+neg)
	return color.RGBA{R: r.R, G: g.G, B: b.B, A: c.A}
}

func (w *World) renderLink(s render.Surface, base render.Style, a, b Node, l Link) {
	scale := w.Scale()
	width := w.LinkWidth()
	toA := a.P.Sub(b.P).Normalize()
	approach := toA.Neg().Dot(b.V) + toA.Dot(a.V)

	var d float32
	if l.Kind == KindSpring {
		d = approach * 0.25
	} else {
		d = 4 * approach
		sign := float32(1)
		if d < 0 {
			sign = -1
		}
		d = math.Sqrt(math.Abs(d)) * sign
	}
	c := stressTint(base.Fill, d)

	ax, ay := a.P.X*scale, a.P.Y*scale
	bx, by := b.P.X*scale, b.P.Y*scale
	toB := b.P.Sub(a.P)

	switch l.Kind {
	case KindLink:
		s.SetStyle(render.Style{Fill: c, Stroke: render.Shade(c, 0.5), StrokeWidth: 0.5})
		s.Line(ax, ay, bx, by, width)

	case KindHydraulic:
		s.SetStyle(render.Style{Fill: c, Stroke: render.Shade(c, 1.0/3), StrokeWidth: 0.5})
		s.Line(ax, ay, bx, by, width)
		mid := a.P.Lerp(b.P, 0.5)
		s.SetStyle(render.Style{Fill: render.Shade(c, 0.5)})
		s.Line(ax, ay, mid.X*scale, mid.Y*scale, width)

	case KindRope:
		s.SetStyle(render.Style{Fill: c, Stroke: render.Shade(c, 1.0/3), StrokeWidth: 0.5})
		s.Line(ax, ay, bx, by, width*0.7)

		s.SetStyle(render.Style{Fill: render.Shade(c, 1.0/3)})
		side := toB.Normalize().Perp().Scale(width / scale * 0.45)
		w.coil(s, a.P, toB, side, windings(l.Dist*32), 0.5, false)

	case KindSpring:
		s.SetStyle(render.Style{Fill: c, Stroke: render.Shade(c, 1.0/3), StrokeWidth: 0.5})
		side := toB.Normalize().Perp().Scale(width / scale)
		w.coil(s, a.P, toB, side, windings(l.Dist*l.Stiffness*32), 1, true)
	}
}

func windings(f float32) int {
	n := int(f)
	if n < 1 {
		return 1
	}
	if n > maxWindings {
		return maxWindings
	}
	return n
}

// coil draws n diagonal strokes across the segment from start along span.
// With zigzag set every stroke is mirrored back, forming a spring.
func (w *World) coil(s render.Surface, start, span, side physics.Vector2D, n int, pitch float32, zigzag bool) {
	scale := w.Scale()
	width := w.LinkWidth() * 0.25
	inv := 1 / float32(n)
	for i := 0; i < n; i++ {
		t := float32(i) * inv
		p1 := start.Sub(side).Add(span.Scale(t)).Scale(scale)
		p2 := start.Add(side).Add(span.Scale(t + inv*pitch)).Scale(scale)
		s.Line(p1.X, p1.Y, p2.X, p2.Y, width)
		if zigzag {
			back := p2.Sub(span.Scale(inv * scale))
			s.Line(p1.X, p1.Y, back.X, back.Y, width)
		}
	}
}
