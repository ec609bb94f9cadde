// pkg/world/edit.go
package world

import (
	"fmt"
	"slices"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// UnlinkNodes queues the link between n1 and n2 for removal
func (w *World) UnlinkNodes(n1, n2 int) error {
	if !w.validNode(n1) {
		return fmt.Errorf("unlink %d-%d: %w: %d", n1, n2, ErrNodeNotFound, n1)
	}
	if !w.validNode(n2) {
		return fmt.Errorf("unlink %d-%d: %w: %d", n1, n2, ErrNodeNotFound, n2)
	}
	li, ok := w.linkBetween(n1, n2)
	if !ok {
		return fmt.Errorf("unlink %d-%d: %w", n1, n2, ErrLinkNotFound)
	}
	return w.RemoveLink(li)
}

// RemoveLink queues link idx for removal. An endpoint left without links
// is queued too unless it is anchored.
func (w *World) RemoveLink(idx int) error {
	if !w.validLink(idx) {
		return fmt.Errorf("remove link: %w: %d", ErrLinkNotFound, idx)
	}
	if w.linkQueued(idx) {
		return nil
	}
	w.linkRemoveQueue = append(w.linkRemoveQueue, idx)

	l := w.links[idx]
	for _, n := range [2]int{l.N1, l.N2} {
		w.pruneIfIsolated(n)
	}
	return nil
}

// RemoveNode queues node idx and its links for removal. Neighbors left
// without links are removed as well unless anchored.
func (w *World) RemoveNode(idx int) error {
	if !w.validNode(idx) {
		return fmt.Errorf("remove node: %w: %d", ErrNodeNotFound, idx)
	}
	if w.nodeQueued(idx) {
		return nil
	}
	w.nodeRemoveQueue = append(w.nodeRemoveQueue, idx)

	for _, li := range w.nodeLinks[idx] {
		if w.linkQueued(li) {
			continue
		}
		w.linkRemoveQueue = append(w.linkRemoveQueue, li)
		w.pruneIfIsolated(w.links[li].Other(idx))
	}
	return nil
}

// pruneIfIsolated queues node n when none of its links survive
func (w *World) pruneIfIsolated(n int) {
	if w.nodeQueued(n) || w.nodes[n].Anchored() {
		return
	}
	if w.liveDegree(n) == 0 {
		_ = w.RemoveNode(n)
	}
}

// liveDegree counts the links of n that are not queued for removal
func (w *World) liveDegree(n int) int {
	count := 0
	for _, li := range w.nodeLinks[n] {
		if !w.linkQueued(li) {
			count++
		}
	}
	return count
}

func (w *World) nodeQueued(i int) bool { return slices.Contains(w.nodeRemoveQueue, i) }
func (w *World) linkQueued(i int) bool { return slices.Contains(w.linkRemoveQueue, i) }

// Pending reports whether removals are waiting for Flush
func (w *World) Pending() bool {
	return len(w.nodeRemoveQueue) > 0 || len(w.linkRemoveQueue) > 0
}

// MoveNode translates node idx and stops it. Rest lengths of incident
// links are remeasured when recompute is set or when either endpoint is
// fully fixed, so dragging re-anchors links instead of stretching them.
func (w *World) MoveNode(idx int, dx, dy float32, recompute bool) error {
	if !w.validNode(idx) {
		return fmt.Errorf("move node: %w: %d", ErrNodeNotFound, idx)
	}
	n := &w.nodes[idx]
	n.MoveBy(dx, dy)
	n.V = physics.Vector2D{}

	for _, li := range w.nodeLinks[idx] {
		l := &w.links[li]
		other := w.nodes[l.Other(idx)]
		if recompute || n.Fixed() || other.Fixed() {
			l.Dist = n.P.Distance(other.P)
		}
	}
	return nil
}

// MoveAll pans the whole structure, keeping velocities
func (w *World) MoveAll(dx, dy float32) {
	for i := range w.nodes {
		w.nodes[i].MoveBy(dx, dy)
	}
}
