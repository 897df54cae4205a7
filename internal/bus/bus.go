// Package bus carries notifications between views. Delivery is
// synchronous; an emitter never receives its own events.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Event is a notification published on the bus.
type Event interface {
	// Emitter identifies the publisher.
	Emitter() string
}

// DataChanged announces that the workspace membership, association or
// state changed. Every recipient gets the same live workspace and must
// not mutate it.
type DataChanged struct {
	From      string
	Workspace *workspace.Workspace
}

// Emitter implements Event.
func (e DataChanged) Emitter() string { return e.From }

// PageChange asks the destination page to show itself and optionally to
// call one of its methods.
type PageChange struct {
	From     string
	FromPage string
	ToPage   string
	Fn       string
	Args     []any
}

// Emitter implements Event.
func (e PageChange) Emitter() string { return e.From }

// Handler receives events. Handlers must tolerate repeated delivery.
type Handler func(Event)

type subscriber struct {
	emitter string
	handler Handler
}

// Bus is a publish/subscribe hub.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]subscriber
	log  zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// New returns an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{subs: make(map[string]subscriber), log: zerolog.Nop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewEmitterID returns a fresh emitter identity for a view.
func NewEmitterID() string {
	return uuid.NewString()
}

// Subscribe registers h for the events of every other emitter. The
// returned function removes the subscription.
func (b *Bus) Subscribe(emitter string, h Handler) (unsubscribe func()) {
	key := uuid.NewString()
	b.mu.Lock()
	b.subs[key] = subscriber{emitter: emitter, handler: h}
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, key)
		b.mu.Unlock()
	}
}

// Publish delivers e to every subscriber but its emitter and returns the
// number of deliveries. Handlers may subscribe or publish in turn.
func (b *Bus) Publish(e Event) int {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.emitter != e.Emitter() {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	b.log.Debug().Str("from", e.Emitter()).Type("event", e).Int("recipients", len(targets)).Msg("publish")
	for _, h := range targets {
		h(e)
	}
	return len(targets)
}
