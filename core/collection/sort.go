package collection

import (
	"fmt"
	"slices"
	"sort"

	"record-collection/core/collation"
	"record-collection/core/events"

	"go.uber.org/zap"
)

// Sort reorders the records by comparator and direction. Sorting is stable, so
// repeating it without changing either leaves the order untouched.
func (c *Collection) Sort(opts ...Option) {
	o := newOptions(opts)

	c.mu.Lock()
	if c.sortLocked() && !o.isSilent() {
		c.notify(events.Event{Name: events.Sort})
	}
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
}

// Comparator returns the effective sort attributes.
func (c *Collection) Comparator() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.comparatorAttrs())
}

// Direction returns the effective direction of each comparator attribute.
func (c *Collection) Direction() []Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directions(c.comparatorAttrs())
}

// SetComparator replaces the sort attributes, resorts silently and emits a
// comparator change notification. No attributes restores the identity
// attribute. Relation attributes are rejected with a *StructuralSortError.
func (c *Collection) SetComparator(attrs ...string) error {
	if err := c.validateComparator(attrs); err != nil {
		return err
	}

	c.mu.Lock()
	if slices.Equal(c.comparator, attrs) {
		c.mu.Unlock()
		return nil
	}
	old := slices.Clone(c.comparatorAttrs())
	c.comparator = slices.Clone(attrs)
	c.sortLocked()
	c.notify(events.Event{Name: events.ComparatorChanged, Old: old, New: slices.Clone(c.comparatorAttrs())})
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
	return nil
}

// SetDirection replaces the sort directions, resorts silently and emits a
// direction change notification. No directions restores the default.
func (c *Collection) SetDirection(dirs ...Direction) error {
	if err := validateDirection(dirs); err != nil {
		return err
	}

	c.mu.Lock()
	if slices.Equal(c.direction, dirs) {
		c.mu.Unlock()
		return nil
	}
	attrs := c.comparatorAttrs()
	old := c.directions(attrs)
	c.direction = slices.Clone(dirs)
	c.sortLocked()
	c.notify(events.Event{Name: events.DirectionChanged, Old: old, New: c.directions(attrs)})
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
	return nil
}

// sortLocked sorts in place and reports whether anything was sorted.
// The position cache is invalidated either way.
func (c *Collection) sortLocked() bool {
	c.invalidate()

	attrs := c.comparatorAttrs()
	if len(c.records) == 0 || len(attrs) == 0 {
		return false
	}

	dirs := c.directions(attrs)
	collator := c.comparer()
	sort.SliceStable(c.records, func(i, j int) bool {
		return compareRecords(collator, attrs, dirs, c.records[i], c.records[j]) < 0
	})
	return true
}

func (c *Collection) comparatorAttrs() []string {
	if len(c.comparator) > 0 {
		return c.comparator
	}
	return []string{c.factory.IDAttribute()}
}

// directions expands the configured directions to one per attribute.
func (c *Collection) directions(attrs []string) []Direction {
	out := make([]Direction, len(attrs))
	if len(c.direction) > 0 {
		for i := range attrs {
			out[i] = c.direction[min(i, len(c.direction)-1)]
		}
		return out
	}

	if len(attrs) == 1 && c.factory.Kind(attrs[0]).Temporal() {
		out[0] = Desc
		return out
	}
	for i := range out {
		out[i] = Asc
	}
	return out
}

// comparer returns the collation service, building it on first use.
func (c *Collection) comparer() Comparer {
	if c.collator != nil {
		return c.collator
	}
	collator, err := collation.New(c.locale)
	if err != nil {
		// Locale was validated in New; this only guards against misuse.
		c.logger.Error("Failed to build collator, falling back to root locale", zap.Error(err))
		collator, _ = collation.New(collation.DefaultLocale)
	}
	c.logger.Debug("Collator ready", zap.String("collection", c.cid), zap.String("locale", collator.Locale()))
	c.collator = collator
	return c.collator
}

func (c *Collection) validateComparator(attrs []string) error {
	if len(attrs) == 0 {
		attrs = []string{c.factory.IDAttribute()}
	}
	for _, attr := range attrs {
		if attr == "" {
			return &ConfigurationError{Field: "Comparator", Reason: "attribute names must not be empty"}
		}
		if kind := c.factory.Kind(attr); !kind.Orderable() {
			return &StructuralSortError{Attribute: attr, Kind: kind}
		}
	}
	return nil
}

func validateDirection(dirs []Direction) error {
	for _, d := range dirs {
		if d != Asc && d != Desc {
			return &ConfigurationError{Field: "Direction", Reason: fmt.Sprintf("unknown direction %q", d)}
		}
	}
	return nil
}
