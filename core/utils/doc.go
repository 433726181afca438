// Package utils provides loose type conversion helpers.
//
// Attribute bags arrive from JSON, YAML, SQL rows and Go callers, so the same
// logical value may be an int, an int64, a float64 or a json.Number. The
// helpers here convert between those shapes so that identities and sort keys
// compare the same regardless of where a record came from.
package utils
