// Package collation provides locale-aware string comparison for sorting.
//
// A Collator wraps golang.org/x/text/collate for one locale. Comparisons follow
// the locale's collation rules (accented letters group with their base letter,
// lowercase and uppercase variants sort next to each other) instead of raw byte
// order.
//
// Each collection owns its own Collator; there is no process-wide instance.
// The underlying collate.Collator keeps scratch buffers, so Collator guards it
// with a mutex and is safe for concurrent use.
//
// # Usage
//
//	c, err := collation.New("sv")
//	c.CompareString("ä", "z") // 1 in Swedish, -1 in English
package collation
