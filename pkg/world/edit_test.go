// pkg/world/edit_test.go
package world

import (
	"errors"
	"testing"

	"github.com/opd-ai/go-strut/pkg/physics"
)

func TestUnlinkNodes_Errors(t *testing.T) {
	w := New()
	a := w.Add(NewNode(0, 0))
	b := w.Add(NewNode(1, 0))

	if err := w.UnlinkNodes(a, 5); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("UnlinkNodes(out of range) error = %v, expected ErrNodeNotFound", err)
	}
	if err := w.UnlinkNodes(a, b); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("UnlinkNodes(unlinked) error = %v, expected ErrLinkNotFound", err)
	}
	if err := w.RemoveLink(0); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("RemoveLink(0) error = %v, expected ErrLinkNotFound", err)
	}
	if err := w.RemoveNode(9); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("RemoveNode(9) error = %v, expected ErrNodeNotFound", err)
	}
	if err := w.MoveNode(9, 1, 1, false); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("MoveNode(9) error = %v, expected ErrNodeNotFound", err)
	}
}

func TestRemoveLink_PrunesIsolatedFreeNodes(t *testing.T) {
	t.Run("both_free", func(t *testing.T) {
		w := New()
		a := w.Add(NewNode(0, 0))
		b := w.Add(NewNode(1, 0))
		w.LinkNode(NewLink(a, b))

		if err := w.UnlinkNodes(b, a); err != nil {
			t.Fatal(err)
		}
		w.Flush()

		if w.NodeCount() != 0 || w.LinkCount() != 0 {
			t.Errorf("expected empty world, got %d nodes %d links", w.NodeCount(), w.LinkCount())
		}
	})

	t.Run("anchored_endpoint_survives", func(t *testing.T) {
		w := New()
		a := w.Add(NewFixedY(0, 0))
		b := w.Add(NewNode(1, 0))
		li, _ := w.LinkNode(NewLink(a, b))

		if err := w.RemoveLink(li); err != nil {
			t.Fatal(err)
		}
		w.Flush()

		if w.NodeCount() != 1 || w.LinkCount() != 0 {
			t.Fatalf("expected 1 node 0 links, got %d nodes %d links", w.NodeCount(), w.LinkCount())
		}
		if n, _ := w.Node(0); !n.FixedY() {
			t.Error("surviving node should be the anchored one")
		}
	})

	t.Run("connected_endpoint_survives", func(t *testing.T) {
		w := New()
		a := w.Add(NewNode(0, 0))
		b := w.Add(NewNode(1, 0))
		c := w.Add(NewNode(2, 0))
		w.LinkNode(NewLink(a, b))
		w.LinkNode(NewLink(b, c))

		_ = w.UnlinkNodes(a, b)
		w.Flush()

		if w.NodeCount() != 2 || w.LinkCount() != 1 {
			t.Errorf("expected 2 nodes 1 link, got %d nodes %d links", w.NodeCount(), w.LinkCount())
		}
	})
}

func TestRemoveNode_Cascade(t *testing.T) {
	// anchor - b - c, plus d hanging off b
	w := New()
	anchor := w.Add(NewFixed(0, 0))
	b := w.Add(NewNode(1, 0))
	c := w.Add(NewNode(2, 0))
	d := w.Add(NewNode(1, 1))
	w.LinkNode(NewLink(anchor, b))
	w.LinkNode(NewLink(b, c))
	w.LinkNode(NewLink(b, d))

	if err := w.RemoveNode(b); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if w.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, expected only the anchor", w.NodeCount())
	}
	if n, _ := w.Node(0); !n.Fixed() {
		t.Error("the anchor should survive")
	}
	if w.LinkCount() != 0 {
		t.Errorf("LinkCount() = %d, expected 0", w.LinkCount())
	}
}

func TestRemoveNode_KeepsWellConnectedNeighbors(t *testing.T) {
	// triangle a-b-c with tail c-d; removing d leaves the triangle
	w := New()
	a := w.Add(NewNode(0, 0))
	b := w.Add(NewNode(1, 0))
	c := w.Add(NewNode(0, 1))
	d := w.Add(NewNode(0, 2))
	w.LinkNode(NewLink(a, b))
	w.LinkNode(NewLink(b, c))
	w.LinkNode(NewLink(c, a))
	w.LinkNode(NewLink(c, d))

	_ = w.RemoveNode(d)
	_ = w.RemoveNode(d)
	w.Flush()

	if w.NodeCount() != 3 || w.LinkCount() != 3 {
		t.Errorf("expected triangle to remain, got %d nodes %d links", w.NodeCount(), w.LinkCount())
	}
}

func TestMoveNode(t *testing.T) {
	t.Run("recompute_rest_length", func(t *testing.T) {
		w := New()
		a := w.Add(NewNode(0, 0))
		b := w.Add(NewNode(1, 0))
		li, _ := w.LinkNode(NewLink(a, b))

		if err := w.MoveNode(b, 1, 0, true); err != nil {
			t.Fatal(err)
		}
		if l, _ := w.Link(li); l.Dist != 2 {
			t.Errorf("Dist = %v, expected 2", l.Dist)
		}
	})

	t.Run("free_move_keeps_rest_length", func(t *testing.T) {
		w := New()
		a := w.Add(NewNode(0, 0))
		b := w.Add(NewNode(1, 0))
		li, _ := w.LinkNode(NewLink(a, b))

		_ = w.MoveNode(a, -1, 0, false)
		if l, _ := w.Link(li); l.Dist != 1 {
			t.Errorf("Dist = %v, expected 1", l.Dist)
		}
	})

	t.Run("fixed_endpoint_forces_recompute", func(t *testing.T) {
		w := New()
		a := w.Add(NewFixed(0, 0))
		b := w.Add(NewNode(1, 0))
		li, _ := w.LinkNode(NewLink(a, b))

		// moving the free end still re-anchors the link to the pinned end
		_ = w.MoveNode(b, 0, 1, false)
		if l, _ := w.Link(li); !near(l.Dist, physics.Vec(1, 1).Length()) {
			t.Errorf("Dist = %v, expected sqrt(2)", l.Dist)
		}
	})

	t.Run("stops_and_repins", func(t *testing.T) {
		w := New()
		a := w.Add(NewFixed(0, 0))
		n := w.nodes[a]
		n.V = physics.Vec(3, 3)
		w.nodes[a] = n

		_ = w.MoveNode(a, 2, 2, false)
		got, _ := w.Node(a)
		if got.V != (physics.Vector2D{}) {
			t.Errorf("V = %v, expected zero", got.V)
		}
		if got.FixedP != physics.Vec(2, 2) {
			t.Errorf("FixedP = %v, expected (2, 2)", got.FixedP)
		}
	})
}

func TestMoveAll_KeepsVelocity(t *testing.T) {
	w := New()
	a := w.Add(NewFixed(0, 0))
	b := w.Add(NewNode(1, 0))
	w.nodes[b].V = physics.Vec(0, -1)

	w.MoveAll(10, 5)

	na, _ := w.Node(a)
	nb, _ := w.Node(b)
	if na.P != physics.Vec(10, 5) || na.FixedP != physics.Vec(10, 5) {
		t.Errorf("anchor moved to %v pinned at %v", na.P, na.FixedP)
	}
	if nb.P != physics.Vec(11, 5) || nb.V != physics.Vec(0, -1) {
		t.Errorf("free node at %v with velocity %v", nb.P, nb.V)
	}
}
