// pkg/world/select.go
package world

import (
	"fmt"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// Selection is a standalone copy of part of the world. Link endpoints
// index into Nodes.
type Selection struct {
	Nodes []Node
	Links []Link
	// Requested marks nodes that were asked for explicitly; the rest were
	// pulled in as link endpoints
	Requested []bool
}

// Min returns the lower corner of the selection's bounding box
func (s Selection) Min() physics.Vector2D {
	if len(s.Nodes) == 0 {
		return physics.Vector2D{}
	}
	lo := s.Nodes[0].P
	for _, n := range s.Nodes[1:] {
		lo = lo.Min(n.P)
	}
	return lo
}

// MoveBy translates every node of the selection
func (s Selection) MoveBy(dx, dy float32) {
	for i := range s.Nodes {
		s.Nodes[i].MoveBy(dx, dy)
	}
}

// Select copies the requested nodes plus their direct neighbors.
// Requested nodes come first in request order. Only links touching a
// requested node are kept, so pulled-in neighbors carry no connections to
// the rest of the world.
func (w *World) Select(indices []int) (Selection, error) {
	local := make(map[int]int, len(indices))
	var order []int
	var sel Selection

	for _, i := range indices {
		if !w.validNode(i) {
			return Selection{}, fmt.Errorf("select: %w: %d", ErrNodeNotFound, i)
		}
		if _, ok := local[i]; ok {
			continue
		}
		local[i] = len(sel.Nodes)
		order = append(order, i)
		sel.Nodes = append(sel.Nodes, w.nodes[i])
		sel.Requested = append(sel.Requested, true)
	}

	seen := make(map[int]bool)
	for _, src := range order {
		for _, li := range w.nodeLinks[src] {
			if seen[li] || !w.validLink(li) || w.linkQueued(li) {
				continue
			}
			seen[li] = true

			l := w.links[li]
			if other := l.Other(src); !hasKey(local, other) {
				local[other] = len(sel.Nodes)
				sel.Nodes = append(sel.Nodes, w.nodes[other])
				sel.Requested = append(sel.Requested, false)
			}
			l.N1 = local[l.N1]
			l.N2 = local[l.N2]
			sel.Links = append(sel.Links, l)
		}
	}
	return sel, nil
}

func hasKey(m map[int]int, k int) bool {
	_, ok := m[k]
	return ok
}

// SelectMoved is Select with the copy translated so that its bounding box
// minimum lands on (x, y)
func (w *World) SelectMoved(indices []int, x, y float32) (Selection, error) {
	sel, err := w.Select(indices)
	if err != nil {
		return Selection{}, err
	}
	lo := sel.Min()
	sel.MoveBy(x-lo.X, y-lo.Y)
	return sel, nil
}

// CopyNodes duplicates the selection of indices at (x, y) and returns the
// indices of the appended nodes
func (w *World) CopyNodes(indices []int, x, y float32) ([]int, error) {
	sel, err := w.SelectMoved(indices, x, y)
	if err != nil {
		return nil, err
	}
	return w.Paste(sel), nil
}

// Paste appends a selection and relinks it. Link rest lengths carried by
// the selection are kept.
func (w *World) Paste(sel Selection) []int {
	added := make([]int, len(sel.Nodes))
	for i, n := range sel.Nodes {
		added[i] = w.Add(n)
	}
	for _, l := range sel.Links {
		l.N1 = added[l.N1]
		l.N2 = added[l.N2]
		w.restoreLink(l)
	}
	return added
}
