// Package transport implements collection.Transport over HTTP, object storage
// and a relational database.
//
// Every transport speaks attribute bags: a read returns the records found at
// the request target, a create returns the persisted record, and an update
// persists the whole payload and returns the stored state.
//
// # HTTP
//
// HTTP sends requests with the Fiber client agent. Reads are GET, creates are
// POST with a single JSON object and updates are PUT with a JSON array. An
// optional token bucket (golang.org/x/time/rate) throttles outgoing calls.
//
// # Storage
//
// Storage keeps one JSON snapshot per request target in a bucket, optionally
// compressed with zstd. Creates read the snapshot, append and write it back.
//
// # Database
//
// Database maps a target to rows of one table through GORM. Attributes without
// a column are dropped before writing. Updates run in a single transaction that
// upserts the payload and deletes rows missing from it.
//
// # Usage
//
//	tr, err := transport.New(cfg.Transport, transport.Dependencies{Storage: client, DB: db})
//	c, err := collection.New(collection.Config{Factory: schema, Transport: tr, URL: "/records"})
package transport
