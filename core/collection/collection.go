package collection

import (
	"fmt"
	"slices"
	"sync"

	"record-collection/core/collation"
	"record-collection/core/events"
	"record-collection/core/urltemplate"
	"record-collection/core/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config enumerates every configurable field of a Collection.
// Use DefaultConfig to start from the documented defaults.
type Config struct {
	// Factory materializes records. Required. New runs while the collection
	// holds its lock and must not call back into the collection; a parse step
	// exposed through AttributeParser runs before the lock is taken.
	Factory Factory

	// Comparator lists the sort attributes, first one first. Empty means the
	// factory's identity attribute.
	Comparator []string

	// Direction lists one direction per comparator attribute. A shorter list
	// reuses its last entry. Empty means the computed default direction.
	Direction []Direction

	// URL is the request target template, resolved by Resolver.
	URL string

	// Params are extra values available to the URL template.
	Params map[string]any

	// WaitDefault makes Create persist before adding when the call does not
	// say otherwise.
	WaitDefault bool

	// FetchSilentDefault applies fetched records without add/sort notifications
	// when the call does not say otherwise.
	FetchSilentDefault bool

	// Locale selects the text collation used for text attributes.
	Locale string

	// Collator overrides the collator built from Locale.
	Collator Comparer

	// Resolver resolves URL. Defaults to an expression-based urltemplate.Resolver.
	Resolver Resolver

	// Transport performs fetch and save calls. Optional.
	Transport Transport

	// Parser transforms raw input when an operation asks for parsing. It runs
	// before the collection takes its lock, so it may read the collection.
	Parser Parser

	// Bus receives notifications. Optional.
	Bus events.Bus

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with WaitDefault and FetchSilentDefault set.
func DefaultConfig(factory Factory) Config {
	return Config{
		Factory:            factory,
		WaitDefault:        true,
		FetchSilentDefault: true,
	}
}

// Collection is an ordered set of records, unique by identity and kept sorted
// by its comparator.
type Collection struct {
	mu sync.Mutex

	cid         string
	factory     Factory
	url         string
	params      map[string]any
	waitDefault bool
	fetchSilent bool
	locale      string
	collator    Comparer
	resolver    Resolver
	transport   Transport
	parser      Parser
	bus         events.Bus
	logger      *zap.Logger

	comparator []string
	direction  []Direction

	records []Record
	byCID   map[string]Record
	byID    map[string]Record
	index   map[string]int

	fetched  bool
	fetching bool

	pending []events.Event
	sf      singleflight.Group
}

// New validates cfg and creates an empty collection.
func New(cfg Config) (*Collection, error) {
	if cfg.Factory == nil {
		return nil, ErrMissingFactory
	}

	c := &Collection{
		cid:         uuid.NewString(),
		factory:     cfg.Factory,
		url:         cfg.URL,
		params:      cfg.Params,
		waitDefault: cfg.WaitDefault,
		fetchSilent: cfg.FetchSilentDefault,
		locale:      cfg.Locale,
		collator:    cfg.Collator,
		resolver:    cfg.Resolver,
		transport:   cfg.Transport,
		parser:      cfg.Parser,
		bus:         cfg.Bus,
		logger:      cfg.Logger,
		byCID:       make(map[string]Record),
		byID:        make(map[string]Record),
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.resolver == nil {
		c.resolver = urltemplate.New()
	}
	if c.collator == nil {
		if err := collation.Validate(cfg.Locale); err != nil {
			return nil, &ConfigurationError{Field: "Locale", Reason: err.Error()}
		}
	}

	if err := c.validateComparator(cfg.Comparator); err != nil {
		return nil, err
	}
	if err := validateDirection(cfg.Direction); err != nil {
		return nil, err
	}
	c.comparator = slices.Clone(cfg.Comparator)
	c.direction = slices.Clone(cfg.Direction)

	return c, nil
}

// CID returns the collection's instance identity.
func (c *Collection) CID() string {
	return c.cid
}

// IDAttribute returns the name of the records' identity attribute.
func (c *Collection) IDAttribute() string {
	return c.factory.IDAttribute()
}

// Len returns the number of held records.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns the held records in collection order.
func (c *Collection) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Snapshot returns the attribute bags of the held records in collection order.
func (c *Collection) Snapshot() []Attributes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() []Attributes {
	out := make([]Attributes, len(c.records))
	for i, r := range c.records {
		out[i] = r.Attributes()
	}
	return out
}

// At returns the record at position i.
func (c *Collection) At(i int) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.records) {
		return nil, false
	}
	return c.records[i], true
}

// Get looks a record up by instance, CID or domain identity.
func (c *Collection) Get(ref any) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(ref)
}

func (c *Collection) getLocked(ref any) (Record, bool) {
	switch v := ref.(type) {
	case nil:
		return nil, false
	case Record:
		if r, ok := c.byCID[v.CID()]; ok {
			return r, true
		}
		if key, ok := identityKey(v.ID()); ok {
			r, found := c.byID[key]
			return r, found
		}
		return nil, false
	case string:
		if r, ok := c.byCID[v]; ok {
			return r, true
		}
	}
	if key, ok := identityKey(ref); ok {
		r, found := c.byID[key]
		return r, found
	}
	return nil, false
}

// Fetched reports whether at least one fetch has completed.
func (c *Collection) Fetched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched
}

// IsFetching reports whether a fetch is outstanding.
func (c *Collection) IsFetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

// Transport returns the configured transport, or nil.
func (c *Collection) Transport() Transport {
	return c.transport
}

// URL resolves the URL template against the collection.
func (c *Collection) URL() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.urlLocked()
}

func (c *Collection) urlLocked() (string, error) {
	if c.url == "" {
		return "", nil
	}
	params := make(map[string]any, len(c.params)+2)
	for k, v := range c.params {
		params[k] = v
	}
	params["cid"] = c.cid
	params["length"] = len(c.records)

	target, err := c.resolver.Resolve(c.url, params)
	if err != nil {
		return "", fmt.Errorf("failed to resolve url %q: %w", c.url, err)
	}
	return target, nil
}

// register indexes a record by CID and, when it has one, by identity.
func (c *Collection) register(r Record) {
	c.byCID[r.CID()] = r
	if key, ok := identityKey(r.ID()); ok {
		c.byID[key] = r
	}
	c.invalidate()
}

// unregister drops a record from both lookup maps.
func (c *Collection) unregister(r Record) {
	delete(c.byCID, r.CID())
	if key, ok := identityKey(r.ID()); ok && sameRecord(c.byID[key], r) {
		delete(c.byID, key)
	}
}

// mergeInto merges attrs onto r and keeps the identity map in step when the
// merge assigned or changed the record's identity.
func (c *Collection) mergeInto(r Record, attrs Attributes) {
	oldKey, hadKey := identityKey(r.ID())
	c.mergeRecord(r, attrs)
	newKey, hasKey := identityKey(r.ID())
	if hadKey == hasKey && oldKey == newKey {
		return
	}
	if hadKey && sameRecord(c.byID[oldKey], r) {
		delete(c.byID, oldKey)
	}
	if hasKey {
		c.byID[newKey] = r
	}
}

// mergeRecord merges attrs onto r and logs the attributes the record refused.
func (c *Collection) mergeRecord(r Record, attrs Attributes) {
	if err := r.Merge(attrs); err != nil {
		c.logger.Warn("Record merge skipped attributes",
			zap.String("collection", c.cid),
			zap.String("cid", r.CID()),
			zap.Error(err))
	}
}

// notify queues an event; it is emitted once the mutex is released.
func (c *Collection) notify(e events.Event) {
	e.Source = c.cid
	c.pending = append(c.pending, e)
}

func (c *Collection) drain() []events.Event {
	out := c.pending
	c.pending = nil
	return out
}

func (c *Collection) emit(evs []events.Event) {
	if c.bus == nil {
		return
	}
	for _, e := range evs {
		c.bus.Emit(e)
	}
}

// emitNow sends a single event that is not part of a locked operation.
func (c *Collection) emitNow(e events.Event) {
	e.Source = c.cid
	c.emit([]events.Event{e})
}

// identityKey normalizes a domain identity so that 1, int64(1) and float64(1)
// address the same record. Nil identities have no key.
func identityKey(id any) (string, bool) {
	if id == nil {
		return "", false
	}
	key := utils.ToString(id)
	if key == "" {
		return "", false
	}
	return key, true
}

func sameRecord(a, b Record) bool {
	return a != nil && b != nil && a.CID() == b.CID()
}
