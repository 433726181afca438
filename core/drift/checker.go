package drift

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"record-collection/core/collection"
	"record-collection/core/utils"

	"golang.org/x/sync/singleflight"
)

// Checker compares a local and a remote source. The remote index is kept for
// the configured TTL; the local one is loaded on every check.
type Checker struct {
	local  Source
	remote Source
	ttl    time.Duration

	mu     sync.RWMutex
	cached *snapshot
	sf     singleflight.Group
}

// Option configures a Checker.
type Option func(*Checker)

// WithTTL keeps the remote index for ttl. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Checker) {
		c.ttl = ttl
	}
}

// NewChecker creates a checker comparing local against remote.
func NewChecker(local, remote Source, opts ...Option) *Checker {
	c := &Checker{local: local, remote: remote}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check loads both sources concurrently and reports every identity found on
// either side.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	var (
		localIndex  Index
		remoteIndex Index
		localErr    error
		remoteErr   error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		localIndex, localErr = c.local.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		remoteIndex, remoteErr = c.remoteIndex(ctx)
	}()
	wg.Wait()

	if localErr != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.local.Name(), localErr)
	}
	if remoteErr != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.remote.Name(), remoteErr)
	}

	union := make(map[string]struct{}, len(localIndex)+len(remoteIndex))
	for key := range localIndex {
		union[key] = struct{}{}
	}
	for key := range remoteIndex {
		union[key] = struct{}{}
	}

	report := &Report{Results: make([]Result, 0, len(union)), Checked: time.Now()}
	for key := range union {
		result := buildResult(key, localIndex, remoteIndex)
		report.Results = append(report.Results, result)

		switch {
		case !result.LocalPresent:
			report.Summary.MissingLocal++
		case !result.RemotePresent:
			report.Summary.MissingRemote++
		case len(result.Mismatch) > 0:
			report.Summary.Mismatches++
		}
	}
	report.Summary.Total = len(report.Results)

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].ID < report.Results[j].ID
	})
	return report, nil
}

// CheckOne reports a single identity.
func (c *Checker) CheckOne(ctx context.Context, id any) (*Result, error) {
	report, err := c.Check(ctx)
	if err != nil {
		return nil, err
	}
	key := utils.ToString(id)
	i := sort.Search(len(report.Results), func(i int) bool {
		return report.Results[i].ID >= key
	})
	if i < len(report.Results) && report.Results[i].ID == key {
		return &report.Results[i], nil
	}
	return &Result{ID: key, Mismatch: []string{}}, nil
}

// Invalidate drops the cached remote index.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

func (c *Checker) remoteIndex(ctx context.Context) (Index, error) {
	c.mu.RLock()
	cached := c.cached
	c.mu.RUnlock()
	if cached != nil && !cached.expired() {
		return cached.index, nil
	}

	v, err, _ := c.sf.Do("remote", func() (any, error) {
		c.mu.RLock()
		cached := c.cached
		c.mu.RUnlock()
		if cached != nil && !cached.expired() {
			return cached.index, nil
		}

		index, err := c.remote.Load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = &snapshot{index: index, built: time.Now(), ttl: c.ttl}
		c.mu.Unlock()
		return index, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Index), nil
}

func buildResult(key string, local, remote Index) Result {
	l, localPresent := local[key]
	r, remotePresent := remote[key]

	result := Result{
		ID:            key,
		LocalPresent:  localPresent,
		RemotePresent: remotePresent,
		Mismatch:      []string{},
	}
	if localPresent && remotePresent {
		result.Mismatch = CompareAttributes(l, r)
	}
	return result
}

// CompareAttributes lists the attributes whose values differ, sorted by name.
// Values are compared by their string form so that 1 and 1.0, or a time and
// its RFC 3339 text, are equal.
func CompareAttributes(local, remote collection.Attributes) []string {
	names := make(map[string]struct{}, len(local)+len(remote))
	for name := range local {
		names[name] = struct{}{}
	}
	for name := range remote {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	mismatch := []string{}
	for _, name := range sorted {
		lv, lok := local[name]
		rv, rok := remote[name]
		switch {
		case !lok:
			mismatch = append(mismatch, fmt.Sprintf("%s: local=<missing> remote=%s", name, valueString(rv)))
		case !rok:
			mismatch = append(mismatch, fmt.Sprintf("%s: local=%s remote=<missing>", name, valueString(lv)))
		case !valuesEqual(lv, rv):
			mismatch = append(mismatch, fmt.Sprintf("%s: local=%s remote=%s", name, valueString(lv), valueString(rv)))
		}
	}
	return mismatch
}

func valuesEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return valueString(a) == valueString(b)
}

func valueString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return utils.ToString(v)
}
