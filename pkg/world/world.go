// pkg/world/world.go
package world

import (
	"slices"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// World owns every node and link of the structure.
//
// Indices handed out by Add and LinkNode stay valid until the next Flush,
// which reports every node that changed index. World is not safe for
// concurrent use.
type World struct {
	nodes []Node
	links []Link
	// node index -> incident link indices, both endpoints
	nodeLinks map[int][]int

	nodeRemoveQueue []int
	linkRemoveQueue []int

	// Radius is the node size in render units
	Radius float32
	// DT is the current sub-step length
	DT float32
	// Energy is the total kinetic energy after the last update
	Energy float32
	Tuning Tuning

	// reused by Step
	points     []physics.Vector2D
	candidates []int
}

// New creates an empty world with the default radius and tuning
func New() *World {
	return &World{
		nodeLinks: make(map[int][]int),
		Radius:    DefaultRadius,
		Tuning:    DefaultTuning(),
	}
}

// Add appends a node and returns its index
func (w *World) Add(n Node) int {
	w.nodes = append(w.nodes, n)
	return len(w.nodes) - 1
}

// LinkNode validates and inserts a link, returning its index.
//
// The rest length is always measured from the current endpoint positions;
// the Dist carried by l is ignored. Self links, duplicates of an existing
// pair, coincident endpoints, out-of-range endpoints and springs without
// stiffness are rejected with false and leave the world untouched.
func (w *World) LinkNode(l Link) (int, bool) {
	if !w.validNode(l.N1) || !w.validNode(l.N2) || l.N1 == l.N2 {
		return 0, false
	}
	if !l.Kind.Valid() {
		return 0, false
	}
	if l.Kind == KindSpring && l.Stiffness <= 0 {
		return 0, false
	}
	if _, ok := w.linkBetween(l.N1, l.N2); ok {
		return 0, false
	}

	dist := w.nodes[l.N1].P.Distance(w.nodes[l.N2].P)
	if dist < w.Tuning.MinDistance {
		return 0, false
	}
	l.Dist = dist
	return w.insertLink(l), true
}

// restoreLink inserts a link keeping its stored Dist. Only out-of-range,
// self, unknown-kind and duplicate links are rejected: a saved or copied
// link may join endpoints that have since collapsed onto each other.
func (w *World) restoreLink(l Link) (int, bool) {
	if !w.validNode(l.N1) || !w.validNode(l.N2) || l.N1 == l.N2 || !l.Kind.Valid() {
		return 0, false
	}
	if _, ok := w.linkBetween(l.N1, l.N2); ok {
		return 0, false
	}
	return w.insertLink(l), true
}

func (w *World) insertLink(l Link) int {
	if w.nodeLinks == nil {
		w.nodeLinks = make(map[int][]int)
	}
	idx := len(w.links)
	w.links = append(w.links, l)
	w.nodeLinks[l.N1] = append(w.nodeLinks[l.N1], idx)
	w.nodeLinks[l.N2] = append(w.nodeLinks[l.N2], idx)
	return idx
}

// linkBetween finds the link joining a and b
func (w *World) linkBetween(a, b int) (int, bool) {
	for _, li := range w.nodeLinks[a] {
		if li < len(w.links) && w.links[li].Connects(a, b) {
			return li, true
		}
	}
	return 0, false
}

func (w *World) validNode(i int) bool { return i >= 0 && i < len(w.nodes) }
func (w *World) validLink(i int) bool { return i >= 0 && i < len(w.links) }

// Node returns a copy of node i
func (w *World) Node(i int) (Node, bool) {
	if !w.validNode(i) {
		return Node{}, false
	}
	return w.nodes[i], true
}

// Link returns a copy of link i
func (w *World) Link(i int) (Link, bool) {
	if !w.validLink(i) {
		return Link{}, false
	}
	return w.links[i], true
}

func (w *World) NodeCount() int { return len(w.nodes) }
func (w *World) LinkCount() int { return len(w.links) }

// Nodes returns a copy of the node list
func (w *World) Nodes() []Node { return slices.Clone(w.nodes) }

// Links returns a copy of the link list
func (w *World) Links() []Link { return slices.Clone(w.links) }

// NodeLinks returns the indices of links touching node i
func (w *World) NodeLinks(i int) []int {
	return slices.Clone(w.nodeLinks[i])
}

// Scale converts world units to render units
func (w *World) Scale() float32 {
	return w.Radius * 20
}

// SetScale sets the render scale, resizing nodes with it
func (w *World) SetScale(s float32) {
	w.Radius = s * 0.05
}

// LinkWidth is the drawn link thickness in render units
func (w *World) LinkWidth() float32 {
	return w.Radius * 0.65
}

// NodeRadius is the node radius in world units
func (w *World) NodeRadius() float32 {
	return w.Radius / w.Scale()
}

// Clear removes everything, including pending removals
func (w *World) Clear() {
	w.nodes = w.nodes[:0]
	w.links = w.links[:0]
	clear(w.nodeLinks)
	w.nodeRemoveQueue = w.nodeRemoveQueue[:0]
	w.linkRemoveQueue = w.linkRemoveQueue[:0]
	w.Energy = 0
}
