// Package drift compares the records held by a collection with the records its
// transport persists.
//
// A check loads both sides concurrently, builds the union of identity keys and
// reports for each key whether the collection holds it, whether the remote
// side holds it and which attributes differ.
//
// # Caching
//
// The remote index is the expensive side. A Checker keeps it for the TTL given
// with WithTTL and rebuilds it through a singleflight group, so concurrent
// checks share one transport read. Invalidate drops it after a save.
//
// # Usage
//
//	checker := drift.NewChecker(
//	    drift.NewCollectionSource(c),
//	    drift.NewTransportSource(c.Transport(), target, c.IDAttribute()),
//	    drift.WithTTL(time.Minute),
//	)
//	report, err := checker.Check(ctx)
package drift
