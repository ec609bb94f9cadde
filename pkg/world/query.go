// pkg/world/query.go
package world

import (
	"github.com/opd-ai/go-strut/pkg/physics"
)

// NodeAt returns the node nearest to (x, y) if the point lies inside it
func (w *World) NodeAt(x, y float32) (int, bool) {
	p := physics.Vec(x, y)
	best, bestDist := -1, float32(Unset)
	for i, n := range w.nodes {
		if w.nodeQueued(i) {
			continue
		}
		if d := n.P.Distance(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > w.NodeRadius() {
		return 0, false
	}
	return best, true
}

// LinkAt returns the first link whose drawn body covers (x, y)
func (w *World) LinkAt(x, y float32) (int, bool) {
	p := physics.Vec(x, y)
	reach := w.LinkWidth() / w.Scale()
	for i, l := range w.links {
		if w.linkQueued(i) {
			continue
		}
		a, b := w.nodes[l.N1].P, w.nodes[l.N2].P
		if physics.SegmentDistance(p, a, b) <= reach {
			return i, true
		}
	}
	return 0, false
}

// NodesInRect returns the nodes inside the rectangle spanned by two
// corners given in any order
func (w *World) NodesInRect(c1, c2 physics.Vector2D) []int {
	r := physics.RectFromPoints(c1, c2)
	var out []int
	for i, n := range w.nodes {
		if r.Contains(n.P) {
			out = append(out, i)
		}
	}
	return out
}
