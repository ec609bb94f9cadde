// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-strut/pkg/world"
)

// Type represents the type of event
type Type string

// Sandbox event types
const (
	NodesRemapped     Type = "nodes_remapped"
	WorldLoaded       Type = "world_loaded"
	WorldSaved        Type = "world_saved"
	SaveFailed        Type = "save_failed"
	SimulationPaused  Type = "simulation_paused"
	SimulationResumed Type = "simulation_resumed"
	NodeAdded         Type = "node_added"
	LinkAdded         Type = "link_added"
	PartRemoved       Type = "part_removed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is a registered handler. Cancel removes it from the bus
// and is safe to call more than once.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers, synchronously and in
// subscription order
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// RemapEvent carries the node index changes produced by a flush
type RemapEvent struct {
	BaseEvent
	Swaps []world.Swap
}

// NewRemapEvent creates a NodesRemapped event
func NewRemapEvent(source interface{}, swaps []world.Swap) *RemapEvent {
	return &RemapEvent{
		BaseEvent: BaseEvent{
			EventType: NodesRemapped,
			Source:    source,
		},
		Swaps: swaps,
	}
}

// WorldEvent describes a persisted or loaded world
type WorldEvent struct {
	BaseEvent
	Path  string
	Nodes int
	Links int
	Err   error
}

// NewWorldEvent creates a world storage event
func NewWorldEvent(eventType Type, source interface{}, path string, nodes, links int, err error) *WorldEvent {
	return &WorldEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Path:  path,
		Nodes: nodes,
		Links: links,
		Err:   err,
	}
}

// EditEvent describes a part placed or removed by the editor
type EditEvent struct {
	BaseEvent
	Index int
	Kind  world.Kind
}

// NewEditEvent creates an editor event. Kind is only meaningful for links.
func NewEditEvent(eventType Type, source interface{}, index int, kind world.Kind) *EditEvent {
	return &EditEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Index: index,
		Kind:  kind,
	}
}
