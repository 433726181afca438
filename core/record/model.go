package record

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"record-collection/core/collection"

	"github.com/google/uuid"
)

// Model is a record backed by an attribute map.
type Model struct {
	mu      sync.RWMutex
	cid     string
	schema  *Schema
	attrs   collection.Attributes
	changed map[string]struct{}
}

func newModel(s *Schema, attrs collection.Attributes) *Model {
	return &Model{
		cid:     uuid.NewString(),
		schema:  s,
		attrs:   attrs,
		changed: make(map[string]struct{}),
	}
}

// CID returns the instance identity.
func (m *Model) CID() string {
	return m.cid
}

// ID returns the identity attribute value.
func (m *Model) ID() any {
	return m.Get(m.schema.idAttribute)
}

// Get returns one attribute value.
func (m *Model) Get(attr string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attrs[attr]
}

// Attributes returns a copy of the attribute bag.
func (m *Model) Attributes() collection.Attributes {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attrs.Clone()
}

// Merge applies attrs in place. Only the attributes whose value differs from
// the current one are reported by HasChanged afterwards. Attributes whose value
// cannot be coerced to the declared kind keep their current value and are
// reported in the returned error; the rest of attrs is still applied.
func (m *Model) Merge(attrs collection.Attributes) error {
	values := attrs.Clone()
	failed, err := m.schema.coerce(values)
	for _, attr := range failed {
		delete(values, attr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = make(map[string]struct{})
	for k, v := range values {
		if old, ok := m.attrs[k]; ok && equalValues(old, v) {
			continue
		}
		m.attrs[k] = v
		m.changed[k] = struct{}{}
	}
	return err
}

// HasChanged reports whether the last Merge changed attr.
func (m *Model) HasChanged(attr string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.changed[attr]
	return ok
}

// Kind returns the declared kind of attr.
func (m *Model) Kind(attr string) collection.Kind {
	return m.schema.Kind(attr)
}

// MarshalJSON encodes the attribute bag.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Attributes())
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return reflect.DeepEqual(a, b)
}
