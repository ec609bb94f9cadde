// cmd/strut-snapshot/demo.go
package main

import (
	"fmt"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/world"
)

// Demo bridge layout, in world units
const (
	bridgeSpans  = 8
	bridgeSpan   = 0.5
	bridgeHeight = 0.4
)

// demoBridge builds a Warren truss pinned at both ends. A weight hangs from
// mid-span on a rope, a spring ties the top chord to an anchor above and
// the middle of the top chord is a hydraulic, so every link kind shows up.
func demoBridge(cfg config.EditorConfig) (*world.World, error) {
	w := world.New()
	left := -bridgeSpan * bridgeSpans / 2

	deck := make([]int, bridgeSpans+1)
	for i := range deck {
		x := float32(left + bridgeSpan*float64(i))
		if i == 0 || i == bridgeSpans {
			deck[i] = w.Add(world.NewFixed(x, 0))
		} else {
			deck[i] = w.Add(world.NewNode(x, 0))
		}
	}
	top := make([]int, bridgeSpans)
	for j := range top {
		x := float32(left + bridgeSpan*(float64(j)+0.5))
		top[j] = w.Add(world.NewNode(x, bridgeHeight))
	}

	var links []world.Link
	for i := 0; i < bridgeSpans; i++ {
		links = append(links,
			world.NewLink(deck[i], deck[i+1]),
			world.NewLink(top[i], deck[i]),
			world.NewLink(top[i], deck[i+1]),
		)
	}
	mid := bridgeSpans/2 - 1
	for j := 0; j+1 < len(top); j++ {
		if j == mid {
			links = append(links, world.NewHydraulic(top[j], top[j+1], cfg.HydraulicSpeed))
			continue
		}
		links = append(links, world.NewLink(top[j], top[j+1]))
	}

	weight := w.Add(world.NewNode(0, -0.8))
	links = append(links, world.NewRope(deck[bridgeSpans/2], weight))

	anchor := w.Add(world.NewFixed(0, 1.2))
	links = append(links, world.NewSpring(top[mid], anchor, cfg.SpringStiffness))

	for _, l := range links {
		if _, ok := w.LinkNode(l); !ok {
			return nil, fmt.Errorf("demo bridge: %s between %d and %d rejected", l.Kind, l.N1, l.N2)
		}
	}
	return w, nil
}
