package events

import "sync"

// Event names emitted by collections.
const (
	Add               = "add"
	Remove            = "remove"
	Reset             = "reset"
	Sort              = "sort"
	Invalid           = "invalid"
	Fetching          = "fetching"
	Fetched           = "fetched"
	Sync              = "sync"
	Saved             = "saved"
	Error             = "error"
	ComparatorChanged = "sort:comparator:changed"
	DirectionChanged  = "sort:direction:changed"
)

// Event describes a single notification.
type Event struct {
	// Name is one of the event name constants.
	Name string
	// Source is the CID of the emitting collection.
	Source string
	// Subject is the record the event is about, if any.
	Subject any
	// Old and New carry the previous and current values of change events.
	Old any
	New any
	// Err is set for invalid and error events.
	Err error
}

// Bus receives events.
type Bus interface {
	Emit(event Event)
}

// HandlerFunc handles one event.
type HandlerFunc func(event Event)

// Dispatcher fans events out to subscribed handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	all      []HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]HandlerFunc)}
}

// On subscribes fn to events named name.
func (d *Dispatcher) On(name string, fn HandlerFunc) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], fn)
}

// OnAll subscribes fn to every event.
func (d *Dispatcher) OnAll(fn HandlerFunc) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, fn)
}

// Emit calls the handlers for event.Name, then the catch-all handlers.
// Handlers are snapshotted first so they may subscribe further handlers.
func (d *Dispatcher) Emit(event Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	named := append([]HandlerFunc(nil), d.handlers[event.Name]...)
	all := append([]HandlerFunc(nil), d.all...)
	d.mu.RUnlock()

	for _, fn := range named {
		fn(event)
	}
	for _, fn := range all {
		fn(event)
	}
}

// Recorder is a Bus that stores every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit stores event.
func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in emission order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

// Count returns how many events named name were recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
