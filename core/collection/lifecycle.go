package collection

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"record-collection/core/events"
	"record-collection/core/utils"

	"go.uber.org/zap"
)

// Fetch loads the collection through the transport and reconciles the result.
//
// Only one fetch may be outstanding: a fetch issued while another is running
// is dropped with ErrFetchInProgress and never reaches the transport. Records
// are applied silently unless FetchSilentDefault is off or WithSilent says
// otherwise. Whatever the transport outcome, the completion phase runs the
// OnComplete callback, marks the collection fetched, emits fetched and clears
// the in-progress flag, in that order.
func (c *Collection) Fetch(ctx context.Context, opts ...Option) error {
	o := newOptions(opts)

	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		c.logger.Warn("Collection is currently fetching, new fetch aborted", zap.String("collection", c.cid))
		return ErrFetchInProgress
	}
	if c.transport == nil {
		c.mu.Unlock()
		return ErrNoTransport
	}
	c.fetching = true
	target, urlErr := c.urlLocked()
	c.mu.Unlock()

	c.emitNow(events.Event{Name: events.Fetching})

	err := urlErr
	if err == nil {
		err = c.fetch(ctx, target, o)
	}
	if err != nil {
		c.logger.Error("Collection fetch failed", zap.String("collection", c.cid), zap.String("target", target), zap.Error(err))
		c.emitNow(events.Event{Name: events.Error, Err: err})
	}

	if o.onComplete != nil {
		o.onComplete(c, err)
	}

	c.mu.Lock()
	c.fetched = true
	c.mu.Unlock()

	c.emitNow(events.Event{Name: events.Fetched})

	c.mu.Lock()
	c.fetching = false
	c.mu.Unlock()

	return err
}

func (c *Collection) fetch(ctx context.Context, target string, o *options) error {
	resp, err := c.transport.Do(ctx, Request{Method: MethodRead, Target: target})
	if err != nil {
		return fmt.Errorf("failed to fetch collection: %w", err)
	}

	applyOpts := []Option{WithSilent(c.fetchSilent), WithParse(true)}
	if o.silent != nil {
		applyOpts = append(applyOpts, WithSilent(*o.silent))
	}
	if o.parse != nil {
		applyOpts = append(applyOpts, WithParse(*o.parse))
	}
	if err := c.apply(resp, o, applyOpts); err != nil {
		return err
	}

	if o.onSuccess != nil {
		o.onSuccess(c, resp)
	}
	return nil
}

// Save persists every held record as one bulk update and reconciles the
// response. A sync notification follows a successful save; saved is emitted in
// the completion phase whatever the outcome.
func (c *Collection) Save(ctx context.Context, opts ...Option) error {
	o := newOptions(opts)

	c.mu.Lock()
	if c.transport == nil {
		c.mu.Unlock()
		return ErrNoTransport
	}
	payload := c.snapshotLocked()
	target, err := c.urlLocked()
	c.mu.Unlock()

	if err == nil {
		err = c.save(ctx, target, payload, o)
	}
	if err != nil {
		c.logger.Error("Collection save failed", zap.String("collection", c.cid), zap.String("target", target), zap.Error(err))
		c.emitNow(events.Event{Name: events.Error, Err: err})
	}

	if o.onComplete != nil {
		o.onComplete(c, err)
	}
	c.emitNow(events.Event{Name: events.Saved})

	return err
}

func (c *Collection) save(ctx context.Context, target string, payload []Attributes, o *options) error {
	resp, err := c.transport.Do(ctx, Request{Method: MethodUpdate, Target: target, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}

	applyOpts := []Option{WithParse(true)}
	if o.silent != nil {
		applyOpts = append(applyOpts, WithSilent(*o.silent))
	}
	if o.parse != nil {
		applyOpts = append(applyOpts, WithParse(*o.parse))
	}
	if err := c.apply(resp, o, applyOpts); err != nil {
		return err
	}

	if o.onSuccess != nil {
		o.onSuccess(c, resp)
	}
	c.emitNow(events.Event{Name: events.Sync})
	return nil
}

// apply reconciles a transport response with Reset or Set.
func (c *Collection) apply(resp Response, o *options, applyOpts []Option) error {
	if o.reset {
		if _, err := c.Reset(resp.Records, applyOpts...); err != nil {
			return fmt.Errorf("failed to apply response: %w", err)
		}
		return nil
	}

	if !o.add {
		applyOpts = append(applyOpts, WithoutAdd())
	}
	if !o.remove {
		applyOpts = append(applyOpts, WithoutRemove())
	}
	if !o.merge {
		applyOpts = append(applyOpts, WithoutMerge())
	}
	if _, err := c.Set(resp.Records, applyOpts...); err != nil {
		return fmt.Errorf("failed to apply response: %w", err)
	}
	return nil
}

// Create materializes input, persists it and adds it to the collection.
//
// With wait (the WaitDefault unless WithWait says otherwise) the record is
// added only after the transport accepted it, so the server response decides
// its final attributes. Without wait it is added first and updated from the
// response.
func (c *Collection) Create(ctx context.Context, input any, opts ...Option) (Record, error) {
	o := newOptions(opts)
	if c.transport == nil {
		return nil, ErrNoTransport
	}

	rec, err := c.prepareRecord(input)
	if err != nil {
		return nil, err
	}

	wait := c.waitDefault
	if o.wait != nil {
		wait = *o.wait
	}
	addOpts := append(opts[:len(opts):len(opts)], WithoutRemove())

	if !wait {
		if _, err := c.Set(rec, addOpts...); err != nil {
			return nil, err
		}
	}

	target, err := c.URL()
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Do(ctx, Request{Method: MethodCreate, Target: target, Payload: []Attributes{rec.Attributes()}})
	if err != nil {
		err = fmt.Errorf("failed to create record: %w", err)
		c.logger.Error("Record create failed", zap.String("collection", c.cid), zap.String("cid", rec.CID()), zap.Error(err))
		c.emitNow(events.Event{Name: events.Error, Subject: rec, Err: err})
		return rec, err
	}

	var attrs Attributes
	if len(resp.Records) > 0 {
		attrs = resp.Records[0]
	}

	if wait {
		if attrs != nil {
			c.mergeRecord(rec, attrs)
		}
		added, err := c.Set(rec, addOpts...)
		if err != nil {
			return nil, err
		}
		if len(added) > 0 {
			rec = added[0]
		}
	} else if attrs != nil {
		c.mu.Lock()
		c.mergeInto(rec, attrs)
		if changedAny(rec, c.comparatorAttrs()) && c.sortLocked() && !o.isSilent() {
			c.notify(events.Event{Name: events.Sort})
		}
		evs := c.drain()
		c.mu.Unlock()
		c.emit(evs)
	}

	c.emitNow(events.Event{Name: events.Sync, Subject: rec})
	return rec, nil
}

// prepareRecord turns Create input into a record without adding it.
func (c *Collection) prepareRecord(input any) (Record, error) {
	switch v := input.(type) {
	case Record:
		return v, nil
	case Attributes:
		return c.materialize(v)
	case map[string]any:
		return c.materialize(Attributes(v))
	}
	return nil, &InvalidInputError{Input: input}
}

func (c *Collection) materialize(attrs Attributes) (Record, error) {
	rec, err := c.factory.New(attrs, FactoryOptions{})
	if err != nil {
		verr := asValidationError(attrs, err)
		c.emitNow(events.Event{Name: events.Invalid, Err: verr})
		return nil, verr
	}
	return rec, nil
}

// GetOrFetch returns the held record with identity id, or loads it through the
// transport and appends it. Concurrent calls for the same id share one
// transport call.
func (c *Collection) GetOrFetch(ctx context.Context, id any) (Record, error) {
	if r, ok := c.Get(id); ok {
		return r, nil
	}
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	key, ok := identityKey(id)
	if !ok {
		return nil, &InvalidInputError{Input: id}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if r, ok := c.Get(id); ok {
			return r, nil
		}

		rec, err := c.materialize(Attributes{c.factory.IDAttribute(): id})
		if err != nil {
			return nil, err
		}

		target, err := c.recordURL(id)
		if err != nil {
			return nil, err
		}

		resp, err := c.transport.Do(ctx, Request{Method: MethodRead, Target: target})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch record %s: %w", key, err)
		}
		if len(resp.Records) > 0 {
			c.mergeRecord(rec, resp.Records[0])
		}

		added, err := c.Set(rec, WithoutRemove(), At(math.MaxInt))
		if err != nil {
			return nil, err
		}
		if len(added) > 0 {
			rec = added[0]
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Record), nil
}

// RecordURL resolves the request target of a single held record: the
// collection URL followed by the escaped identity. Records without an
// identity address the collection itself.
func (c *Collection) RecordURL(ref any) (string, error) {
	r, ok := c.Get(ref)
	if !ok {
		return "", &InvalidInputError{Input: ref}
	}
	if r.ID() == nil {
		return c.URL()
	}
	return c.recordURL(r.ID())
}

func (c *Collection) recordURL(id any) (string, error) {
	base, err := c.URL()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(utils.ToString(id)), nil
}
