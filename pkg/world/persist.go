// pkg/world/persist.go
package world

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/opd-ai/go-strut/pkg/physics"
)

// Upper bounds on persisted counts; anything larger is treated as corrupt
const (
	MaxNodes = 1 << 20
	MaxLinks = 1 << 22
)

// nodeRecord is the on-disk node layout
type nodeRecord struct {
	PX, PY     float32
	VX, VY     float32
	FX, FY     float32
	RotorSpeed float32
}

// linkRecord is the fixed part of the on-disk link layout. Hydraulics and
// springs are followed by one more float32.
type linkRecord struct {
	N1, N2 uint32
	Dist   float32
	Tag    uint8
}

// Serialize writes the world in its little-endian binary layout.
// Removals still waiting for Flush are written as if they had not been
// requested.
func (w *World) Serialize(out io.Writer) error {
	le := binary.LittleEndian
	if err := binary.Write(out, le, w.Radius); err != nil {
		return fmt.Errorf("write radius: %w", err)
	}

	if err := binary.Write(out, le, uint32(len(w.nodes))); err != nil {
		return fmt.Errorf("write node count: %w", err)
	}
	for i, n := range w.nodes {
		rec := nodeRecord{
			PX: n.P.X, PY: n.P.Y,
			VX: n.V.X, VY: n.V.Y,
			FX: n.FixedP.X, FY: n.FixedP.Y,
			RotorSpeed: n.RotorSpeed,
		}
		if err := binary.Write(out, le, rec); err != nil {
			return fmt.Errorf("write node %d: %w", i, err)
		}
	}

	if err := binary.Write(out, le, uint32(len(w.links))); err != nil {
		return fmt.Errorf("write link count: %w", err)
	}
	for i, l := range w.links {
		rec := linkRecord{N1: uint32(l.N1), N2: uint32(l.N2), Dist: l.Dist, Tag: uint8(l.Kind)}
		if err := binary.Write(out, le, rec); err != nil {
			return fmt.Errorf("write link %d: %w", i, err)
		}
		var extra float32
		switch l.Kind {
		case KindHydraulic:
			extra = l.Speed
		case KindSpring:
			extra = l.Stiffness
		default:
			continue
		}
		if err := binary.Write(out, le, extra); err != nil {
			return fmt.Errorf("write link %d: %w", i, err)
		}
	}
	return nil
}

// Deserialize reads a world written by Serialize.
//
// The whole stream is decoded and validated before anything is built, so
// a malformed stream never yields a partial world. Self links and
// duplicates are dropped; every other link keeps its stored rest length,
// even when its endpoints coincide. Every decode failure wraps ErrMalformed.
func Deserialize(in io.Reader) (*World, error) {
	le := binary.LittleEndian

	var radius float32
	if err := binary.Read(in, le, &radius); err != nil {
		return nil, malformed("radius", err)
	}
	if !(radius > 0) || radius == float32(math.Inf(1)) {
		return nil, fmt.Errorf("%w: radius %v", ErrMalformed, radius)
	}

	var nodeCount uint32
	if err := binary.Read(in, le, &nodeCount); err != nil {
		return nil, malformed("node count", err)
	}
	if nodeCount > MaxNodes {
		return nil, fmt.Errorf("%w: node count %d", ErrMalformed, nodeCount)
	}
	nodes := make([]Node, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		var rec nodeRecord
		if err := binary.Read(in, le, &rec); err != nil {
			return nil, malformed(fmt.Sprintf("node %d", i), err)
		}
		nodes = append(nodes, Node{
			P:          physics.Vec(rec.PX, rec.PY),
			V:          physics.Vec(rec.VX, rec.VY),
			FixedP:     physics.Vec(rec.FX, rec.FY),
			RotorSpeed: rec.RotorSpeed,
		})
	}

	var linkCount uint32
	if err := binary.Read(in, le, &linkCount); err != nil {
		return nil, malformed("link count", err)
	}
	if linkCount > MaxLinks {
		return nil, fmt.Errorf("%w: link count %d", ErrMalformed, linkCount)
	}
	links := make([]Link, 0, linkCount)
	for i := uint32(0); i < linkCount; i++ {
		var rec linkRecord
		if err := binary.Read(in, le, &rec); err != nil {
			return nil, malformed(fmt.Sprintf("link %d", i), err)
		}
		if rec.N1 >= nodeCount || rec.N2 >= nodeCount {
			return nil, fmt.Errorf("%w: link %d endpoint out of range (%d, %d)", ErrMalformed, i, rec.N1, rec.N2)
		}
		l := Link{Kind: Kind(rec.Tag), N1: int(rec.N1), N2: int(rec.N2), Dist: rec.Dist}
		if !l.Kind.Valid() {
			return nil, fmt.Errorf("%w: link %d tag %d", ErrMalformed, i, rec.Tag)
		}
		if l.Kind == KindHydraulic || l.Kind == KindSpring {
			var extra float32
			if err := binary.Read(in, le, &extra); err != nil {
				return nil, malformed(fmt.Sprintf("link %d payload", i), err)
			}
			if l.Kind == KindHydraulic {
				l.Speed = extra
			} else {
				l.Stiffness = extra
			}
		}
		links = append(links, l)
	}

	w := New()
	w.Radius = radius
	w.nodes = nodes
	for _, l := range links {
		w.restoreLink(l)
	}
	return w, nil
}

func malformed(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrMalformed, what)
	}
	return fmt.Errorf("%w: read %s: %v", ErrMalformed, what, err)
}
