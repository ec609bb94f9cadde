// pkg/world/persist_test.go
package world

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/opd-ai/go-strut/pkg/physics"
)

func sampleWorld() *World {
	w := New()
	w.Radius = 0.07

	free := NewNode(0, 0)
	free.V = physics.Vec(1, -1)
	w.Add(free)
	w.Add(NewFixed(1, 0))
	w.Add(NewFixedX(2, 0.5))
	w.Add(NewFixedY(0, 1))
	w.Add(NewRotor(1, 1, 2.5))
	w.Add(NewNode(2, 2))

	w.LinkNode(NewLink(0, 1))
	w.LinkNode(NewRope(1, 2))
	w.LinkNode(NewHydraulic(2, 3, 0.3))
	w.LinkNode(NewSpring(3, 4, 0.8))
	w.LinkNode(NewLink(4, 5))
	// stored rest lengths need not match the geometry
	w.links[0].Dist = 0.7
	return w
}

func roundTrip(t *testing.T, w *World) *World {
	t.Helper()
	var buf bytes.Buffer
	if err := w.Serialize(&buf); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	return got
}

var sortLinks = cmpopts.SortSlices(func(a, b Link) bool {
	if a.N1 != b.N1 {
		return a.N1 < b.N1
	}
	return a.N2 < b.N2
})

func TestSerialize_RoundTrip(t *testing.T) {
	w := sampleWorld()
	got := roundTrip(t, w)

	if got.Radius != w.Radius {
		t.Errorf("Radius = %v, expected %v", got.Radius, w.Radius)
	}
	if diff := cmp.Diff(w.Nodes(), got.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(w.Links(), got.Links()); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
	checkAdjacency(t, got)
}

func TestSerialize_LinkOrderIndependent(t *testing.T) {
	forward := sampleWorld()

	reversed := New()
	reversed.Radius = forward.Radius
	for _, n := range forward.nodes {
		reversed.Add(n)
	}
	links := forward.Links()
	for i := len(links) - 1; i >= 0; i-- {
		li, ok := reversed.LinkNode(links[i])
		if !ok {
			t.Fatalf("relink %d failed", i)
		}
		reversed.links[li].Dist = links[i].Dist
	}

	a, b := roundTrip(t, forward), roundTrip(t, reversed)
	if diff := cmp.Diff(a.Links(), b.Links(), sortLinks); diff != "" {
		t.Errorf("link sets differ (-forward +reversed):\n%s", diff)
	}
	if diff := cmp.Diff(a.Nodes(), b.Nodes()); diff != "" {
		t.Errorf("nodes differ (-forward +reversed):\n%s", diff)
	}
}

func TestSerialize_Layout(t *testing.T) {
	w := New()
	a := w.Add(NewNode(0, 0))
	b := w.Add(NewNode(1, 0))
	w.LinkNode(NewHydraulic(a, b, 2))

	var buf bytes.Buffer
	if err := w.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	// radius, node count, 2 nodes of 7 floats, link count, 13 byte link
	// record plus the hydraulic speed
	if want := 4 + 4 + 2*28 + 4 + 13 + 4; len(data) != want {
		t.Fatalf("len = %d, expected %d", len(data), want)
	}
	le := binary.LittleEndian
	if r := math.Float32frombits(le.Uint32(data[0:4])); r != w.Radius {
		t.Errorf("radius field = %v", r)
	}
	if n := le.Uint32(data[4:8]); n != 2 {
		t.Errorf("node count field = %d", n)
	}
	if tag := data[len(data)-5]; tag != uint8(KindHydraulic) {
		t.Errorf("tag = %d, expected %d", tag, KindHydraulic)
	}
	if speed := math.Float32frombits(le.Uint32(data[len(data)-4:])); speed != 2 {
		t.Errorf("speed = %v", speed)
	}
}

func TestSerialize_IncludesPendingRemovals(t *testing.T) {
	w := sampleWorld()
	_ = w.RemoveNode(5)

	got := roundTrip(t, w)
	if got.NodeCount() != 6 || got.LinkCount() != 5 || got.Pending() {
		t.Errorf("got %d nodes %d links pending=%v", got.NodeCount(), got.LinkCount(), got.Pending())
	}
}

func TestDeserialize_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleWorld().Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()

	for cut := 0; cut < len(full); cut++ {
		if _, err := Deserialize(bytes.NewReader(full[:cut])); !errors.Is(err, ErrMalformed) {
			t.Fatalf("cut at %d: error = %v, expected ErrMalformed", cut, err)
		}
	}
}

// encode writes each part little-endian, for hand-built streams
func encode(t *testing.T, parts ...any) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, p := range parts {
		if err := binary.Write(&buf, binary.LittleEndian, p); err != nil {
			t.Fatal(err)
		}
	}
	return bytes.NewReader(buf.Bytes())
}

func freeRecord(x, y float32) nodeRecord {
	return nodeRecord{PX: x, PY: y, FX: Unset, FY: Unset}
}

func TestDeserialize_Malformed(t *testing.T) {
	radius := float32(0.05)
	two := []any{uint32(2), freeRecord(0, 0), freeRecord(1, 0)}

	tests := []struct {
		name  string
		parts []any
	}{
		{"zero_radius", []any{float32(0), uint32(0), uint32(0)}},
		{"negative_radius", []any{float32(-1), uint32(0), uint32(0)}},
		{"nan_radius", []any{float32(math.NaN()), uint32(0), uint32(0)}},
		{"infinite_radius", []any{float32(math.Inf(1)), uint32(0), uint32(0)}},
		{"absurd_node_count", []any{radius, uint32(MaxNodes + 1)}},
		{"absurd_link_count", append(append([]any{radius}, two...), uint32(MaxLinks+1))},
		{"bad_tag", append(append([]any{radius}, two...), uint32(1), linkRecord{N1: 0, N2: 1, Dist: 1, Tag: 9})},
		{"bad_endpoint", append(append([]any{radius}, two...), uint32(1), linkRecord{N1: 0, N2: 5, Dist: 1})},
		{"missing_payload", append(append([]any{radius}, two...), uint32(1), linkRecord{N1: 0, N2: 1, Dist: 1, Tag: uint8(KindSpring)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Deserialize(encode(t, tt.parts...))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, expected ErrMalformed", err)
			}
			if w != nil {
				t.Error("expected no world on error")
			}
		})
	}
}

func TestDeserialize_DropsInvalidLinks(t *testing.T) {
	r := encode(t,
		float32(0.05),
		uint32(2), freeRecord(0, 0), freeRecord(1, 0),
		uint32(3),
		linkRecord{N1: 0, N2: 1, Dist: 0.9, Tag: uint8(KindLink)},
		linkRecord{N1: 1, N2: 0, Dist: 1, Tag: uint8(KindRope)},
		linkRecord{N1: 0, N2: 0, Dist: 1, Tag: uint8(KindLink)},
	)

	w, err := Deserialize(r)
	if err != nil {
		t.Fatal(err)
	}
	if w.LinkCount() != 1 {
		t.Fatalf("LinkCount() = %d, expected 1", w.LinkCount())
	}
	if l, _ := w.Link(0); l.Kind != KindLink || l.Dist != 0.9 {
		t.Errorf("kept link = %+v", l)
	}
}

func TestSerialize_RoundTripCoincidentLink(t *testing.T) {
	w := New()
	a := w.Add(NewNode(0, 0))
	b := w.Add(NewNode(1, 0))
	w.LinkNode(NewLink(a, b))
	w.LinkNode(NewHydraulic(b, w.Add(NewNode(2, 0)), -0.5))
	if err := w.MoveNode(b, -1, 0, false); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := w.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.LinkCount() != w.LinkCount() {
		t.Fatalf("LinkCount() = %d, expected %d", got.LinkCount(), w.LinkCount())
	}
	if diff := cmp.Diff(w.Links(), got.Links()); diff != "" {
		t.Errorf("links differ (-saved +loaded):\n%s", diff)
	}
	if len(got.NodeLinks(a)) != 1 || len(got.NodeLinks(b)) != 2 {
		t.Errorf("adjacency not rebuilt: a=%v b=%v", got.NodeLinks(a), got.NodeLinks(b))
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSerialize_WriteError(t *testing.T) {
	if err := sampleWorld().Serialize(failWriter{}); err == nil {
		t.Error("expected write error")
	}
}
