package collection

import (
	"fmt"
	"slices"

	"record-collection/core/events"
)

// Set reconciles input into the collection. Input is a Record, an attribute
// bag, or a slice of either.
//
// Held records matching an input identity are retained and, unless
// WithoutMerge, merged in place. Unknown identities are materialized through
// the factory unless WithoutAdd; bags the factory rejects are skipped and
// reported with an invalid notification. Held records missing from the input
// are removed unless WithoutRemove.
//
// The returned slice holds the added or merged record for every accepted input
// item, in input order.
func (c *Collection) Set(input any, opts ...Option) ([]Record, error) {
	o := newOptions(opts)
	items, err := c.prepare(input, o)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	out, err := c.set(items, o)
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
	return out, err
}

// Add is Set without removal.
func (c *Collection) Add(input any, opts ...Option) ([]Record, error) {
	return c.Set(input, append(opts[:len(opts):len(opts)], WithoutRemove())...)
}

// Reset drops every held record without remove notifications, then adds input.
// A single reset notification replaces the add notifications.
func (c *Collection) Reset(input any, opts ...Option) ([]Record, error) {
	o := newOptions(opts)
	silent := o.isSilent()
	items, err := c.prepare(input, o)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records = nil
	c.byCID = make(map[string]Record)
	c.byID = make(map[string]Record)
	c.invalidate()

	o.remove = false
	o.silent = boolPtr(true)
	out, err := c.set(items, o)
	if err == nil && !silent {
		c.notify(events.Event{Name: events.Reset})
	}
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
	return out, err
}

// Remove drops the record referenced by ref (instance, CID or identity).
func (c *Collection) Remove(ref any, opts ...Option) (Record, bool) {
	o := newOptions(opts)

	c.mu.Lock()
	r, ok := c.getLocked(ref)
	if ok {
		c.removeRecords([]Record{r}, o.isSilent())
	}
	evs := c.drain()
	c.mu.Unlock()

	c.emit(evs)
	return r, ok
}

// rejectedBag stands in for an input bag whose parse step failed.
type rejectedBag struct {
	attrs Attributes
	err   error
}

// prepare normalizes input and runs the parse steps. It runs before the mutex
// is taken so parsers may read the collection.
func (c *Collection) prepare(input any, o *options) ([]any, error) {
	items, err := normalize(input)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	if !o.shouldParse() {
		return items, nil
	}

	if c.parser != nil {
		parsed, err := c.parser(items)
		if err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		if items, err = normalize(parsed); err != nil {
			return nil, err
		}
	}

	// The parse step may produce or rename the identity, so bags are parsed
	// before they are matched against held records.
	if parser, ok := c.factory.(AttributeParser); ok {
		for i, item := range items {
			attrs, isBag := item.(Attributes)
			if !isBag {
				continue
			}
			parsed, err := parser.ParseAttributes(attrs)
			if err != nil {
				items[i] = rejectedBag{attrs: attrs, err: err}
				continue
			}
			items[i] = parsed
		}
	}
	return items, nil
}

func (c *Collection) set(items []any, o *options) ([]Record, error) {
	if len(items) == 0 {
		return nil, nil
	}

	comparator := c.comparatorAttrs()
	sortable := len(comparator) > 0 && o.at == nil && !o.noSort
	keepOrder := !sortable && o.add && o.remove

	var (
		result   []Record
		toAdd    []Record
		order    []Record
		retained = make(map[string]struct{})
		placed   = make(map[string]struct{})
		resort   bool
	)

	_, preParsed := c.factory.(AttributeParser)

	for _, item := range items {
		var (
			rec   Record
			attrs Attributes
		)
		switch v := item.(type) {
		case Record:
			rec = v
		case Attributes:
			attrs = v
		case rejectedBag:
			if o.add {
				c.notify(events.Event{Name: events.Invalid, Err: asValidationError(v.attrs, v.err)})
			}
			continue
		}

		existing := c.lookup(rec, attrs)
		if existing == nil && rec == nil && o.add {
			created, err := c.factory.New(attrs, FactoryOptions{Parse: o.shouldParse() && !preParsed})
			if err != nil {
				c.notify(events.Event{Name: events.Invalid, Err: asValidationError(attrs, err)})
				continue
			}
			// A factory without a separate parse step may still resolve an
			// identity that is already held.
			rec = created
			existing = c.lookup(created, nil)
		}

		if existing != nil {
			retained[existing.CID()] = struct{}{}
			if o.merge && (rec == nil || rec.CID() != existing.CID()) {
				incoming := attrs
				if rec != nil {
					incoming = rec.Attributes()
				}
				c.mergeInto(existing, incoming)
				if sortable && !resort && changedAny(existing, comparator) {
					resort = true
				}
			}
			rec = existing
		} else if o.add {
			c.register(rec)
			retained[rec.CID()] = struct{}{}
			toAdd = append(toAdd, rec)
		} else {
			continue
		}

		result = append(result, rec)
		if keepOrder {
			if _, ok := placed[rec.CID()]; !ok {
				placed[rec.CID()] = struct{}{}
				order = append(order, rec)
			}
		}
	}

	if o.remove {
		var toRemove []Record
		for _, r := range c.records {
			if _, ok := retained[r.CID()]; !ok {
				toRemove = append(toRemove, r)
			}
		}
		if len(toRemove) > 0 {
			c.removeRecords(toRemove, o.isSilent())
		}
	}

	orderChanged := false
	if len(toAdd) > 0 || len(order) > 0 {
		if sortable {
			resort = true
		}
		switch {
		case o.at != nil:
			at := min(max(*o.at, 0), len(c.records))
			c.records = slices.Insert(c.records, at, toAdd...)
		case keepOrder:
			orderChanged = !sameOrder(c.records, order)
			c.records = order
		default:
			c.records = append(c.records, toAdd...)
		}
		c.invalidate()
	}

	if resort {
		c.sortLocked()
	}

	if !o.isSilent() {
		for _, r := range toAdd {
			c.notify(events.Event{Name: events.Add, Subject: r})
		}
		if resort || orderChanged {
			c.notify(events.Event{Name: events.Sort})
		}
	}

	return result, nil
}

// lookup finds the held (or already registered) record an input item refers to.
func (c *Collection) lookup(rec Record, attrs Attributes) Record {
	if rec != nil {
		r, _ := c.getLocked(rec)
		return r
	}
	if attrs == nil {
		return nil
	}
	key, ok := identityKey(attrs[c.factory.IDAttribute()])
	if !ok {
		return nil
	}
	return c.byID[key]
}

// removeRecords drops records from the sequence and both lookup maps.
func (c *Collection) removeRecords(records []Record, silent bool) {
	drop := make(map[string]struct{}, len(records))
	for _, r := range records {
		drop[r.CID()] = struct{}{}
	}
	c.records = slices.DeleteFunc(c.records, func(r Record) bool {
		_, ok := drop[r.CID()]
		return ok
	})
	for _, r := range records {
		c.unregister(r)
		if !silent {
			c.notify(events.Event{Name: events.Remove, Subject: r})
		}
	}
	c.invalidate()
}

// normalize turns Set input into a slice of Record or Attributes items.
func normalize(input any) ([]any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case Record:
		return []any{v}, nil
	case Attributes:
		return []any{v}, nil
	case map[string]any:
		return []any{Attributes(v)}, nil
	case []Record:
		out := make([]any, len(v))
		for i, r := range v {
			out[i] = r
		}
		return out, nil
	case []Attributes:
		out := make([]any, len(v))
		for i, a := range v {
			out[i] = a
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i, a := range v {
			out[i] = Attributes(a)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			switch it := item.(type) {
			case nil:
				out[i] = Attributes{}
			case Record:
				out[i] = it
			case Attributes:
				out[i] = it
			case map[string]any:
				out[i] = Attributes(it)
			default:
				return nil, &InvalidInputError{Input: item}
			}
		}
		return out, nil
	}
	return nil, &InvalidInputError{Input: input}
}

func changedAny(r Record, attrs []string) bool {
	for _, attr := range attrs {
		if r.HasChanged(attr) {
			return true
		}
	}
	return false
}

func sameOrder(a, b []Record) bool {
	return slices.EqualFunc(a, b, func(x, y Record) bool {
		return x.CID() == y.CID()
	})
}

func boolPtr(b bool) *bool {
	return &b
}
