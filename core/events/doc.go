// Package events provides the synchronous notification bus used by collections.
//
// A collection reports every observable change (records added or removed,
// reorders, fetch and save lifecycle steps) as an Event on a Bus. The Bus is
// fire-and-forget: handlers run synchronously on the emitting goroutine and
// cannot fail the operation that produced the event.
//
// # Dispatcher
//
// Dispatcher is the in-process Bus implementation. Handlers subscribe to a
// single event name with On, or to every event with OnAll.
//
//	bus := events.NewDispatcher()
//	bus.On(events.Add, func(e events.Event) {
//	    log.Info("record added", zap.Any("record", e.Subject))
//	})
//
// # Recorder
//
// Recorder is a Bus that keeps every event in memory. It is meant for tests
// and for debugging commands that print what an operation did.
package events
