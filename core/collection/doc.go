// Package collection implements an identity-indexed, ordered collection of
// records with snapshot reconciliation, a type-aware sort engine, a lazily
// rebuilt position cache and a single-flight fetch/save lifecycle.
//
// # Reconciliation
//
// Set merges an incoming snapshot into the held sequence. Records are matched
// by CID first, then by the factory's identity attribute. Matched records are
// merged in place, unknown bags are materialized through the Factory, and held
// records missing from the snapshot are removed. Add, Reset and Remove are thin
// variants of the same engine. Records without an identity never collide: each
// one is added as a new record.
//
// # Sorting
//
// The comparator is an ordered list of attribute names; the direction list maps
// onto it positionally and a shorter list reuses its last entry. Comparison
// dispatches on the declared Kind of each side:
//
//   - KindText on either side compares with the locale collator
//   - KindTimeOfDay on both sides compares wall-clock milliseconds only
//   - anything else uses the default relational comparison
//
// Relation kinds are not orderable; configuring them is a *StructuralSortError.
//
// # Notifications
//
// Every operation queues its notifications while holding the collection mutex
// and emits them, in order, after releasing it. Handlers may therefore call
// back into the collection.
//
// # Lifecycle
//
// Fetch and Save go through the configured Transport. At most one Fetch runs
// at a time; a concurrent Fetch returns ErrFetchInProgress without reaching the
// transport. GetOrFetch coalesces concurrent loads of the same identity.
package collection
