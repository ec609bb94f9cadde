// pkg/world/flush.go
package world

import (
	"slices"
)

// Swap records a surviving node that moved from index Old to index New
// during Flush
type Swap struct {
	Old int
	New int
}

// Flush applies all queued removals and compacts the node and link lists.
//
// Links touching a removed node are removed with it. Nodes and links are
// swap-removed from the highest queued index down, link endpoints are
// remapped and the adjacency index is rebuilt. The returned swaps must be
// applied by anyone holding node indices across the call.
func (w *World) Flush() []Swap {
	if !w.Pending() {
		return nil
	}

	removed := make([]bool, len(w.nodes))
	for _, n := range w.nodeRemoveQueue {
		if w.validNode(n) {
			removed[n] = true
		}
	}
	for i, l := range w.links {
		if removed[l.N1] || removed[l.N2] {
			w.linkRemoveQueue = append(w.linkRemoveQueue, i)
		}
	}

	// origin[slot] is the pre-flush index of the node now in slot
	origin := make([]int, len(w.nodes))
	for i := range origin {
		origin[i] = i
	}
	for _, n := range descendingUnique(w.nodeRemoveQueue, len(w.nodes)) {
		last := len(w.nodes) - 1
		w.nodes[n] = w.nodes[last]
		origin[n] = origin[last]
		w.nodes = w.nodes[:last]
	}
	origin = origin[:len(w.nodes)]

	for _, li := range descendingUnique(w.linkRemoveQueue, len(w.links)) {
		last := len(w.links) - 1
		w.links[li] = w.links[last]
		w.links = w.links[:last]
	}

	remap := make([]int, len(removed))
	var swaps []Swap
	for slot, old := range origin {
		remap[old] = slot
		if old != slot {
			swaps = append(swaps, Swap{Old: old, New: slot})
		}
	}
	for i := range w.links {
		w.links[i].N1 = remap[w.links[i].N1]
		w.links[i].N2 = remap[w.links[i].N2]
	}

	w.rebuildNodeLinks()
	w.nodeRemoveQueue = w.nodeRemoveQueue[:0]
	w.linkRemoveQueue = w.linkRemoveQueue[:0]
	return swaps
}

func (w *World) rebuildNodeLinks() {
	if w.nodeLinks == nil {
		w.nodeLinks = make(map[int][]int)
	}
	clear(w.nodeLinks)
	for i, l := range w.links {
		w.nodeLinks[l.N1] = append(w.nodeLinks[l.N1], i)
		w.nodeLinks[l.N2] = append(w.nodeLinks[l.N2], i)
	}
}

// descendingUnique returns the in-range indices of queue, deduplicated and
// sorted from highest to lowest
func descendingUnique(queue []int, n int) []int {
	out := make([]int, 0, len(queue))
	for _, i := range queue {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}
