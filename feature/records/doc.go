// Package records hosts a collection over HTTP.
//
// # Routes
//
//	GET    /records               records in collection order, comparator, direction, flags
//	GET    /records/:id           one record, loaded through the transport if not held
//	GET    /records/:id/next      successor, 204 for the last record
//	GET    /records/:id/previous  predecessor, 204 for the first record
//	PUT    /records               reconcile a snapshot (?add=&remove=&merge=&at=)
//	POST   /records               create one record
//	DELETE /records/:id           remove one record
//	POST   /records/sort          {"comparator": [...], "direction": [...]}
//	POST   /records/fetch         reload through the transport (?reset=true)
//	POST   /records/save          persist through the transport (?reset=true)
//	GET    /records/drift         compare held records with the transport (?refresh=true)
//	GET    /records/:id/drift     drift state of one record
//
// # Errors
//
// Failures are answered with {"error": "..."}: 400 for malformed input or
// invalid sort settings, 404 for unknown identities, 409 while a fetch is in
// progress, 422 for records the schema rejects, 501 without a transport and 502
// when the remote API fails.
//
// # Configuration
//
// Config is the "collection" configuration section. It builds the record
// schema (identity attribute, kinds, required attributes) and the collection
// configuration (comparator, direction, locale, URL template and defaults).
package records
