package collection

// Option tunes a single collection operation. Each operation reads the
// fields it understands and ignores the rest.
type Option func(*options)

type options struct {
	add    bool
	remove bool
	merge  bool
	at     *int
	noSort bool
	silent *bool
	parse  *bool
	reset  bool
	wait   *bool

	onSuccess  func(c *Collection, resp Response)
	onComplete func(c *Collection, err error)
}

func newOptions(opts []Option) *options {
	o := &options{
		add:    true,
		remove: true,
		merge:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) isSilent() bool {
	return o.silent != nil && *o.silent
}

func (o *options) shouldParse() bool {
	return o.parse != nil && *o.parse
}

// WithoutAdd stops Set from materializing records that are not held yet.
func WithoutAdd() Option {
	return func(o *options) {
		o.add = false
	}
}

// WithoutRemove stops Set from removing held records missing from the input.
func WithoutRemove() Option {
	return func(o *options) {
		o.remove = false
	}
}

// WithoutMerge stops Set from applying incoming attributes onto held records.
func WithoutMerge() Option {
	return func(o *options) {
		o.merge = false
	}
}

// At inserts new records at index i, keeping their input order and skipping
// the resort. Out-of-range indexes are clamped.
func At(i int) Option {
	return func(o *options) {
		o.at = &i
	}
}

// WithoutSort suppresses the resort that Set would otherwise schedule.
func WithoutSort() Option {
	return func(o *options) {
		o.noSort = true
	}
}

// Silent suppresses per-operation notifications.
func Silent() Option {
	return WithSilent(true)
}

// WithSilent sets the silent flag explicitly, overriding collection defaults
// such as FetchSilentDefault.
func WithSilent(silent bool) Option {
	return func(o *options) {
		o.silent = &silent
	}
}

// WithParse runs the configured Parser over the input before reconciling.
func WithParse(parse bool) Option {
	return func(o *options) {
		o.parse = &parse
	}
}

// WithReset applies a fetch or save response with Reset instead of Set.
func WithReset() Option {
	return func(o *options) {
		o.reset = true
	}
}

// WithWait overrides WaitDefault for Create.
func WithWait(wait bool) Option {
	return func(o *options) {
		o.wait = &wait
	}
}

// OnSuccess registers a callback run after a fetch or save response was applied.
func OnSuccess(fn func(c *Collection, resp Response)) Option {
	return func(o *options) {
		o.onSuccess = fn
	}
}

// OnComplete registers a callback run in the completion phase of a fetch or
// save, whatever the transport outcome.
func OnComplete(fn func(c *Collection, err error)) Option {
	return func(o *options) {
		o.onComplete = fn
	}
}
