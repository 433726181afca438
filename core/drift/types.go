package drift

import (
	"time"

	"record-collection/core/collection"
)

// Result is the drift state of a single identity.
type Result struct {
	// ID is the identity key.
	ID string `json:"id"`

	// LocalPresent indicates whether the collection holds the record.
	LocalPresent bool `json:"local_present"`

	// RemotePresent indicates whether the transport returned the record.
	RemotePresent bool `json:"remote_present"`

	// Mismatch describes attribute differences, e.g. "name: local=a remote=b".
	Mismatch []string `json:"mismatch"`
}

// InSync reports whether both sides hold the record with equal attributes.
func (r Result) InSync() bool {
	return r.LocalPresent && r.RemotePresent && len(r.Mismatch) == 0
}

// Summary provides aggregate counts.
type Summary struct {
	// Total is the number of distinct identities on either side.
	Total int `json:"total"`

	// MissingLocal counts records only the remote side holds.
	MissingLocal int `json:"missing_local"`

	// MissingRemote counts records only the collection holds.
	MissingRemote int `json:"missing_remote"`

	// Mismatches counts records held on both sides with differing attributes.
	Mismatches int `json:"mismatches"`
}

// Report contains per-identity results sorted by ID.
type Report struct {
	Results []Result  `json:"results"`
	Summary Summary   `json:"summary"`
	Checked time.Time `json:"checked"`
}

// Index maps identity keys to attribute bags.
type Index map[string]collection.Attributes

// snapshot is a remote index kept for TTL.
type snapshot struct {
	index Index
	built time.Time
	ttl   time.Duration
}

func (s *snapshot) expired() bool {
	if s.ttl == 0 {
		return true
	}
	return time.Since(s.built) > s.ttl
}
