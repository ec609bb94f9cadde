// pkg/world/link.go
package world

import "fmt"

// Kind selects how a link responds to stretching
type Kind uint8

const (
	// KindLink is a rigid rod
	KindLink Kind = iota
	// KindRope only pulls, never pushes
	KindRope
	// KindHydraulic is a rod whose rest length grows by Speed per second
	KindHydraulic
	// KindSpring is a soft rod scaled by Stiffness
	KindSpring
)

var kindNames = [...]string{"link", "rope", "hydraulic", "spring"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known link kind
func (k Kind) Valid() bool {
	return k <= KindSpring
}

// Link is an edge between two node indices. Speed is used only by
// hydraulics and Stiffness only by springs.
type Link struct {
	Kind      Kind
	N1        int
	N2        int
	Dist      float32
	Speed     float32
	Stiffness float32
}

func NewLink(n1, n2 int) Link { return Link{Kind: KindLink, N1: n1, N2: n2} }
func NewRope(n1, n2 int) Link { return Link{Kind: KindRope, N1: n1, N2: n2} }

func NewHydraulic(n1, n2 int, speed float32) Link {
	return Link{Kind: KindHydraulic, N1: n1, N2: n2, Speed: speed}
}

func NewSpring(n1, n2 int, stiffness float32) Link {
	return Link{Kind: KindSpring, N1: n1, N2: n2, Stiffness: stiffness}
}

// LinkedTo reports whether n is one of the endpoints
func (l Link) LinkedTo(n int) bool {
	return l.N1 == n || l.N2 == n
}

// Other returns the endpoint opposite n
func (l Link) Other(n int) int {
	if l.N1 == n {
		return l.N2
	}
	return l.N1
}

// Connects reports whether the link joins a and b in either order
func (l Link) Connects(a, b int) bool {
	return (l.N1 == a && l.N2 == b) || (l.N1 == b && l.N2 == a)
}
