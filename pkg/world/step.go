// pkg/world/step.go
package world

import (
	"github.com/EngoEngine/math"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// Step runs one constraint sub-step of length DT: gravity, contact
// collision, axis locks, then a single Gauss-Seidel pass over the links.
// Positions are not integrated here.
func (w *World) Step() {
	dt := w.DT
	t := w.Tuning

	for i := range w.nodes {
		w.nodes[i].V.Y -= t.Gravity * dt
	}

	w.collide()

	for i := range w.nodes {
		w.nodes[i].pin()
	}

	for i := range w.links {
		w.solveLink(&w.links[i], dt)
	}
}

// collide separates every overlapping pair found through the hash grid
func (w *World) collide() {
	if len(w.nodes) < 2 {
		return
	}
	diameter := 2 * w.NodeRadius()

	w.points = w.points[:0]
	for _, n := range w.nodes {
		w.points = append(w.points, n.P)
	}
	grid := physics.NewHashGrid(w.points, diameter)

	for i := range w.nodes {
		p := w.nodes[i].P
		w.candidates = grid.FindInto(w.candidates[:0], p.X, p.Y)
		for _, j := range w.candidates {
			// each unordered pair once; duplicates from shared buckets are
			// harmless since a resolved pair no longer overlaps
			if j <= i {
				continue
			}
			a, b := w.nodes[i].body(), w.nodes[j].body()
			if physics.ResolveContact(&a, &b, diameter, w.Tuning.MinDistance) {
				w.nodes[i].setBody(a)
				w.nodes[j].setBody(b)
			}
		}
	}
}

// pin snaps locked axes to their pinned coordinate and stops them
func (n *Node) pin() {
	if n.FixedX() {
		n.P.X = n.FixedP.X
		n.V.X = 0
	}
	if n.FixedY() {
		n.P.Y = n.FixedP.Y
		n.V.Y = 0
	}
}

// solveLink reads both endpoints into locals, applies the kind-specific
// correction and writes them back
func (w *World) solveLink(l *Link, dt float32) {
	t := w.Tuning
	a, b := w.nodes[l.N1], w.nodes[l.N2]

	if l.Kind == KindHydraulic {
		l.Dist += l.Speed * dt
	}

	// n points from b to a
	n, dist := physics.Direction(a.P.Sub(b.P), a.P.Distance(b.P), t.MinDistance)
	ext := l.Dist - dist

	switch l.Kind {
	case KindLink, KindHydraulic:
		applyRigid(&a, &b, n.Scale(ext), t.LinkStiffness)
	case KindRope:
		if dist <= l.Dist {
			return
		}
		applyRigid(&a, &b, n.Scale(ext), t.RopeStiffness)
	case KindSpring:
		sign := float32(1)
		if ext < 0 {
			sign = -1
		}
		push := n.Scale(math.Sqrt(math.Abs(ext)) * sign * l.Stiffness * t.SpringPositionGain * dt)
		kick := n.Scale(ext * l.Stiffness * t.SpringVelocityGain * dt)
		a.P = a.P.Add(push)
		b.P = b.P.Sub(push)
		a.V = a.V.Add(kick)
		b.V = b.V.Sub(kick)
	}

	drive := dist * dt * t.RotorGain
	if a.Rotor() {
		b.V = b.V.Add(b.P.Sub(a.P).Normalize().Perp().Scale(a.RotorSpeed * drive))
	}
	if b.Rotor() {
		a.V = a.V.Add(a.P.Sub(b.P).Normalize().Perp().Scale(b.RotorSpeed * drive))
	}

	a.pin()
	b.pin()
	w.nodes[l.N1] = a
	w.nodes[l.N2] = b
}

// applyRigid pushes a along d and b against it, half the correction each
func applyRigid(a, b *Node, d physics.Vector2D, stiffness float32) {
	a.V = a.V.Add(d.Scale(stiffness))
	b.V = b.V.Sub(d.Scale(stiffness))
	a.P = a.P.Add(d.Scale(0.5))
	b.P = b.P.Sub(d.Scale(0.5))
}
