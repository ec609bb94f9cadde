// pkg/world/node.go
package world

import (
	"math"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// Unset marks an unlocked axis in Node.FixedP
const Unset float32 = math.MaxFloat32

// Node is a unit point mass. Its identity is its current index in the
// world and changes when Flush compacts the node list.
type Node struct {
	P physics.Vector2D
	V physics.Vector2D
	// FixedP holds the pinned coordinate per axis, or Unset
	FixedP     physics.Vector2D
	RotorSpeed float32
}

// NewNode creates a free node at (x, y)
func NewNode(x, y float32) Node {
	return Node{
		P:      physics.Vec(x, y),
		FixedP: physics.Splat(Unset),
	}
}

// NewFixed creates a node pinned on both axes
func NewFixed(x, y float32) Node {
	n := NewNode(x, y)
	n.FixedP = n.P
	return n
}

// NewFixedX creates a node that can only slide vertically
func NewFixedX(x, y float32) Node {
	n := NewNode(x, y)
	n.FixedP.X = x
	return n
}

// NewFixedY creates a node that can only slide horizontally
func NewFixedY(x, y float32) Node {
	n := NewNode(x, y)
	n.FixedP.Y = y
	return n
}

// NewRotor creates a fully fixed hub that spins its neighbors at speed
func NewRotor(x, y, speed float32) Node {
	n := NewFixed(x, y)
	n.RotorSpeed = speed
	return n
}

func (n Node) FixedX() bool { return n.FixedP.X != Unset }
func (n Node) FixedY() bool { return n.FixedP.Y != Unset }

// Fixed reports whether both axes are locked
func (n Node) Fixed() bool { return n.FixedX() && n.FixedY() }

// Anchored reports whether any axis is locked. Anchored nodes are never
// pruned when they lose their last link.
func (n Node) Anchored() bool { return n.FixedX() || n.FixedY() }

func (n Node) Rotor() bool { return n.RotorSpeed != 0 }

// MoveBy translates the node. Locked axes move their pin along with it.
func (n *Node) MoveBy(dx, dy float32) {
	n.P = n.P.Add(physics.Vec(dx, dy))
	if n.FixedX() {
		n.FixedP.X += dx
	}
	if n.FixedY() {
		n.FixedP.Y += dy
	}
}

// KineticEnergy returns 0.5*|V|^2 for the unit mass
func (n Node) KineticEnergy() float32 {
	return 0.5 * n.V.LengthSquared()
}

// body and setBody move kinematic state in and out of the contact solver
func (n Node) body() physics.Body {
	return physics.Body{P: n.P, V: n.V}
}

func (n *Node) setBody(b physics.Body) {
	n.P = b.P
	n.V = b.V
}
