// pkg/editor/editor.go
package editor

import (
	"context"
	"errors"
	"slices"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/event"
	"github.com/opd-ai/go-strut/pkg/logging"
	"github.com/opd-ai/go-strut/pkg/physics"
	"github.com/opd-ai/go-strut/pkg/world"
)

// ErrNothingSelected is returned by Copy with an empty selection
var ErrNothingSelected = errors.New("nothing selected")

// noNode marks an unset node reference
const noNode = -1

// Editor turns pointer input into world edits. All positions are in world
// units. Node indices held by the editor are kept valid across flushes by
// Remap, which Attach wires to the bus.
//
// Editor is not safe for concurrent use; callers serialize it with the
// world it edits.
type Editor struct {
	world  *world.World
	cfg    config.EditorConfig
	bus    *event.Bus
	logger *logging.Logger
	repeat *Cooldown
	sub    *event.Subscription

	tool    Tool
	pointer physics.Vector2D

	// pending link start
	anchor        int
	anchorCreated bool

	// nodes following the pointer
	drag     []int
	dragFrom physics.Vector2D

	banding   bool
	bandStart physics.Vector2D

	selection []int
	clipboard world.Selection
}

// New creates an editor for w. Edits are published on bus when it is not
// nil.
func New(w *world.World, cfg config.EditorConfig, bus *event.Bus, logger *logging.Logger) *Editor {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Editor{
		world:  w,
		cfg:    cfg,
		bus:    bus,
		logger: logger.Component("editor"),
		repeat: NewCooldown(cfg.Cooldown()),
		anchor: noNode,
	}
}

// Attach keeps the editor's node references valid across flushes
func (e *Editor) Attach(bus *event.Bus) {
	e.Detach()
	e.sub = bus.Subscribe(event.NodesRemapped, func(ev event.Event) {
		if re, ok := ev.(*event.RemapEvent); ok {
			e.Remap(re.Swaps)
		}
	})
}

// Detach undoes Attach
func (e *Editor) Detach() {
	if e.sub != nil {
		e.sub.Cancel()
		e.sub = nil
	}
}

// World returns the edited world
func (e *Editor) World() *world.World { return e.world }

// SetWorld switches to another world, dropping every node reference but
// keeping the clipboard
func (e *Editor) SetWorld(w *world.World) {
	e.world = w
	e.Cancel()
	e.selection = nil
}

// Tool returns the active tool
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, abandoning any gesture in progress
func (e *Editor) SetTool(t Tool) {
	if t != e.tool {
		e.Cancel()
		e.tool = t
	}
}

// Pointer returns the last pointer position
func (e *Editor) Pointer() physics.Vector2D { return e.pointer }

// Cancel abandons a pending link, drag or rubber band
func (e *Editor) Cancel() {
	e.anchor = noNode
	e.anchorCreated = false
	e.drag = nil
	e.banding = false
}

// Press starts a gesture at (x, y).
//
// Pressing a node drags it. On empty space node tools place a node, link
// tools start a link from a new free node and the select tool starts a
// rubber band.
func (e *Editor) Press(x, y float32) {
	e.pointer = physics.Vec(x, y)
	hit, onNode := e.world.NodeAt(x, y)

	if _, ok := e.tool.LinkKind(); ok {
		if onNode {
			e.anchor, e.anchorCreated = hit, false
		} else {
			e.anchor, e.anchorCreated = e.addNode(world.NewNode(x, y)), true
		}
		return
	}

	if e.tool == ToolSelect {
		if !onNode {
			e.banding = true
			e.bandStart = e.pointer
			return
		}
		if !slices.Contains(e.selection, hit) {
			e.selection = []int{hit}
		}
		e.startDrag(slices.Clone(e.selection))
		return
	}

	if onNode {
		e.startDrag([]int{hit})
		return
	}
	e.addNode(e.newNode(x, y))
}

func (e *Editor) startDrag(nodes []int) {
	e.drag = nodes
	e.dragFrom = e.pointer
}

// Drag moves the pointer while pressed. Dragged nodes follow it and their
// links take the new length as rest length.
func (e *Editor) Drag(x, y float32) {
	e.pointer = physics.Vec(x, y)
	if len(e.drag) == 0 {
		return
	}

	d := e.pointer.Sub(e.dragFrom)
	for _, n := range e.drag {
		if err := e.world.MoveNode(n, d.X, d.Y, true); err != nil {
			e.logger.Debug(context.Background(), "drag target gone", "node", n)
		}
	}
	e.dragFrom = e.pointer
}

// Release ends the gesture at (x, y)
func (e *Editor) Release(x, y float32) {
	e.Drag(x, y)
	defer e.Cancel()

	switch {
	case e.banding:
		e.selection = e.world.NodesInRect(e.bandStart, e.pointer)
	case e.anchor != noNode:
		e.finishLink(x, y)
	}
}

// finishLink joins the pending anchor to the node under (x, y), placing a
// free node there if needed
func (e *Editor) finishLink(x, y float32) {
	kind, ok := e.tool.LinkKind()
	if !ok {
		return
	}

	target, onNode := e.world.NodeAt(x, y)
	if onNode && target == e.anchor {
		return
	}
	created := false
	if !onNode {
		target, created = e.addNode(world.NewNode(x, y)), true
	}

	l := e.newLink(kind, e.anchor, target)
	li, linked := e.world.LinkNode(l)
	if !linked {
		e.logger.Debug(context.Background(), "link rejected",
			"kind", kind.String(),
			"from", e.anchor,
			"to", target,
		)
		if created {
			_ = e.world.RemoveNode(target)
		}
		if e.anchorCreated && len(e.world.NodeLinks(e.anchor)) == 0 {
			_ = e.world.RemoveNode(e.anchor)
		}
		return
	}
	e.publish(event.NewEditEvent(event.LinkAdded, e, li, kind))
}

func (e *Editor) newNode(x, y float32) world.Node {
	switch e.tool {
	case ToolFixed:
		return world.NewFixed(x, y)
	case ToolFixedX:
		return world.NewFixedX(x, y)
	case ToolFixedY:
		return world.NewFixedY(x, y)
	case ToolRotor:
		return world.NewRotor(x, y, e.cfg.RotorSpeed)
	default:
		return world.NewNode(x, y)
	}
}

func (e *Editor) newLink(kind world.Kind, a, b int) world.Link {
	switch kind {
	case world.KindRope:
		return world.NewRope(a, b)
	case world.KindHydraulic:
		return world.NewHydraulic(a, b, e.cfg.HydraulicSpeed)
	case world.KindSpring:
		return world.NewSpring(a, b, e.cfg.SpringStiffness)
	default:
		return world.NewLink(a, b)
	}
}

func (e *Editor) addNode(n world.Node) int {
	i := e.world.Add(n)
	e.publish(event.NewEditEvent(event.NodeAdded, e, i, 0))
	return i
}

// Erase removes the node under (x, y), or else the link there. It repeats
// at most once per cooldown while held.
func (e *Editor) Erase(x, y float32) bool {
	e.pointer = physics.Vec(x, y)

	if n, ok := e.world.NodeAt(x, y); ok {
		if !e.repeat.Allow() {
			return false
		}
		_ = e.world.RemoveNode(n)
		e.deselect(n)
		e.publish(event.NewEditEvent(event.PartRemoved, e, n, 0))
		return true
	}
	if li, ok := e.world.LinkAt(x, y); ok {
		if !e.repeat.Allow() {
			return false
		}
		l, _ := e.world.Link(li)
		_ = e.world.RemoveLink(li)
		e.publish(event.NewEditEvent(event.PartRemoved, e, li, l.Kind))
		return true
	}
	return false
}

// ToggleSelect adds or removes the node under (x, y) from the selection
func (e *Editor) ToggleSelect(x, y float32) bool {
	n, ok := e.world.NodeAt(x, y)
	if !ok {
		return false
	}
	if slices.Contains(e.selection, n) {
		e.deselect(n)
	} else {
		e.selection = append(e.selection, n)
	}
	return true
}

func (e *Editor) deselect(n int) {
	e.selection = slices.DeleteFunc(e.selection, func(i int) bool { return i == n })
}

// ClearSelection empties the selection
func (e *Editor) ClearSelection() { e.selection = nil }

// Selection returns the selected node indices
func (e *Editor) Selection() []int { return slices.Clone(e.selection) }

// DeleteSelection queues every selected node for removal and returns how
// many were queued
func (e *Editor) DeleteSelection() int {
	count := 0
	for _, n := range e.selection {
		if err := e.world.RemoveNode(n); err != nil {
			e.logger.Debug(context.Background(), "selected node gone", "node", n)
			continue
		}
		count++
		e.publish(event.NewEditEvent(event.PartRemoved, e, n, 0))
	}
	e.selection = nil
	return count
}

// Nudge moves the selected nodes by (dx, dy), recomputing the rest lengths
// of their links. With nothing selected the whole structure is panned and
// links keep their lengths. It returns the number of nodes moved.
func (e *Editor) Nudge(dx, dy float32) int {
	if len(e.selection) == 0 {
		e.world.MoveAll(dx, dy)
		return e.world.NodeCount()
	}
	moved := 0
	for _, n := range e.selection {
		if err := e.world.MoveNode(n, dx, dy, true); err != nil {
			continue
		}
		moved++
	}
	return moved
}

// Copy stores the selection and its one-hop neighborhood in the clipboard
// and returns the number of copied nodes
func (e *Editor) Copy() (int, error) {
	if len(e.selection) == 0 {
		return 0, ErrNothingSelected
	}
	sel, err := e.world.Select(e.selection)
	if err != nil {
		return 0, logging.WrapError(err, "copy selection")
	}
	e.clipboard = sel
	return len(sel.Nodes), nil
}

// HasClipboard reports whether Paste has anything to place
func (e *Editor) HasClipboard() bool { return len(e.clipboard.Nodes) > 0 }

// Paste places the clipboard with its lower corner at (x, y) and selects
// the pasted copies of the originally selected nodes. It repeats at most
// once per cooldown while held.
func (e *Editor) Paste(x, y float32) ([]int, bool) {
	if !e.HasClipboard() || !e.repeat.Allow() {
		return nil, false
	}

	sel := placed(e.clipboard, x, y)
	added := e.world.Paste(sel)

	e.selection = e.selection[:0]
	for i, n := range added {
		if sel.Requested[i] {
			e.selection = append(e.selection, n)
		}
	}
	e.publish(event.NewEditEvent(event.NodeAdded, e, added[0], 0))
	return added, true
}

// Ghost returns what Paste would place at (x, y): the clipboard if it
// holds anything, else the current selection
func (e *Editor) Ghost(x, y float32) (world.Selection, bool) {
	if e.HasClipboard() {
		return placed(e.clipboard, x, y), true
	}
	if len(e.selection) == 0 {
		return world.Selection{}, false
	}
	sel, err := e.world.SelectMoved(e.selection, x, y)
	if err != nil {
		return world.Selection{}, false
	}
	return sel, true
}

// placed returns a copy of sel moved so its lower corner is at (x, y)
func placed(sel world.Selection, x, y float32) world.Selection {
	out := world.Selection{
		Nodes:     slices.Clone(sel.Nodes),
		Links:     slices.Clone(sel.Links),
		Requested: slices.Clone(sel.Requested),
	}
	lo := out.Min()
	out.MoveBy(x-lo.X, y-lo.Y)
	return out
}

// Remap applies the swaps reported by a flush to every node reference the
// editor holds. References to removed nodes are dropped.
func (e *Editor) Remap(swaps []world.Swap) {
	count := e.world.NodeCount()
	moved := make(map[int]int, len(swaps))
	vacated := make(map[int]bool, len(swaps))
	for _, s := range swaps {
		moved[s.Old] = s.New
		vacated[s.New] = true
	}
	// a slot refilled by a swap held a removed node
	remap := func(i int) (int, bool) {
		if n, ok := moved[i]; ok {
			return n, true
		}
		if vacated[i] || i < 0 || i >= count {
			return 0, false
		}
		return i, true
	}

	e.selection = remapAll(e.selection, remap)
	e.drag = remapAll(e.drag, remap)
	if e.anchor != noNode {
		if n, ok := remap(e.anchor); ok {
			e.anchor = n
		} else {
			e.anchor, e.anchorCreated = noNode, false
		}
	}
}

func remapAll(nodes []int, remap func(int) (int, bool)) []int {
	out := nodes[:0]
	for _, i := range nodes {
		if n, ok := remap(i); ok {
			out = append(out, n)
		}
	}
	return out
}

func (e *Editor) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
