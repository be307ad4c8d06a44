package diagram

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// EventType tags an [Event].
type EventType string

const (
	EventNodeClicked       EventType = "node.clicked"
	EventNodeRemoved       EventType = "node.removed"
	EventParallelNodeAdded EventType = "node.parallel_added"
	EventDragStart         EventType = "drag.start"
	EventDragEnd           EventType = "drag.end"
	EventCanvasClicked     EventType = "canvas.clicked"
	EventLinksRouted       EventType = "links.routed"
)

// Event is a tagged message for the presentation layer. Payload is one of
// [NodePayload], [DragPayload] or [RoutePayload], or nil for canvas clicks.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NodePayload identifies the node an event is about.
type NodePayload struct {
	NodeID     string `json:"nodeId"`
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
	ParentID   string `json:"parentId,omitempty"`
}

// DragPayload carries the viewport when a drag starts or ends.
type DragPayload struct {
	Viewport viewport.Viewport `json:"viewport"`
}

// RoutePayload summarizes a routing pass.
type RoutePayload struct {
	Reason   string  `json:"reason"`
	Links    int     `json:"links"`
	Drawable int     `json:"drawable"`
	Scale    float64 `json:"scale"`
}

// Handler receives events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in subscription order, on the
// publishing goroutine. A panicking handler is logged and skipped.
type Bus struct {
	mu     sync.RWMutex
	typed  map[EventType][]subscription
	all    []subscription
	nextID uint64
	logger *log.Logger
}

// NewBus returns an empty bus. A nil logger discards.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{typed: map[EventType][]subscription{}, logger: logger}
}

// Subscribe registers fn for one event type and returns its unsubscribe func.
func (b *Bus) Subscribe(t EventType, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.typed[t] = append(b.typed[t], subscription{id: id, handler: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.typed[t] = remove(b.typed[t], id)
	}
}

// SubscribeAll registers fn for every event.
func (b *Bus) SubscribeAll(fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// Publish delivers e to typed subscribers first, then to catch-all ones.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.typed[e.Type])+len(b.all))
	subs = append(subs, b.typed[e.Type]...)
	subs = append(subs, b.all...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(e, s)
	}
}

func (b *Bus) dispatch(e Event, s subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", string(e.Type), "panic", r)
		}
	}()
	s.handler(e)
}

func remove(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
