package events_test

import (
	"testing"

	"record-collection/core/events"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Emit(t *testing.T) {
	t.Run("NamedAndCatchAll", func(t *testing.T) {
		d := events.NewDispatcher()
		var got []string
		d.On(events.Add, func(e events.Event) { got = append(got, "named:"+e.Name) })
		d.OnAll(func(e events.Event) { got = append(got, "all:"+e.Name) })

		d.Emit(events.Event{Name: events.Add})
		d.Emit(events.Event{Name: events.Sort})

		assert.Equal(t, []string{"named:add", "all:add", "all:sort"}, got)
	})

	t.Run("SubscribeDuringEmit", func(t *testing.T) {
		d := events.NewDispatcher()
		calls := 0
		d.On(events.Sort, func(e events.Event) {
			calls++
			d.On(events.Sort, func(events.Event) { calls++ })
		})

		d.Emit(events.Event{Name: events.Sort})
		assert.Equal(t, 1, calls)

		d.Emit(events.Event{Name: events.Sort})
		assert.Equal(t, 3, calls)
	})

	t.Run("NilDispatcher", func(t *testing.T) {
		var d *events.Dispatcher
		assert.NotPanics(t, func() { d.Emit(events.Event{Name: events.Add}) })
	})
}

func TestRecorder(t *testing.T) {
	r := &events.Recorder{}

	r.Emit(events.Event{Name: events.Add})
	r.Emit(events.Event{Name: events.Add})
	r.Emit(events.Event{Name: events.Sort})

	assert.Equal(t, []string{"add", "add", "sort"}, r.Names())
	assert.Equal(t, 2, r.Count(events.Add))
	assert.Len(t, r.Events(), 3)

	r.Reset()
	assert.Empty(t, r.Names())
}
