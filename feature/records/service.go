package records

import (
	"context"
	"errors"
	"time"

	"record-collection/core/collection"
	"record-collection/core/drift"
	"record-collection/core/events"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no held record matches an identity.
var ErrNotFound = errors.New("record not found")

// SetFlags mirrors the reconciliation options exposed over HTTP.
type SetFlags struct {
	Add    bool
	Remove bool
	Merge  bool
	// At inserts new records at this position when non-negative.
	At int
}

// Summary describes the collection state.
type Summary struct {
	Records    []collection.Attributes `json:"records"`
	Comparator []string                `json:"comparator"`
	Direction  []collection.Direction  `json:"direction"`
	Fetched    bool                    `json:"fetched"`
	Fetching   bool                    `json:"fetching"`
	URL        string                  `json:"url"`
}

// Service exposes a collection to the HTTP handler.
type Service struct {
	collection *collection.Collection
	logger     *zap.Logger
	driftTTL   time.Duration
	checker    *drift.Checker
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDriftTTL keeps the remote side of drift checks for ttl.
func WithDriftTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.driftTTL = ttl
	}
}

// NewService creates a service for c. When dispatcher is set every collection
// event is logged at debug level.
func NewService(c *collection.Collection, dispatcher *events.Dispatcher, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{collection: c, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	if tr := c.Transport(); tr != nil {
		target, err := c.URL()
		if err != nil {
			logger.Warn("Drift checks disabled, collection url does not resolve", zap.Error(err))
		} else {
			s.checker = drift.NewChecker(
				drift.NewCollectionSource(c),
				drift.NewTransportSource(tr, target, c.IDAttribute()),
				drift.WithTTL(s.driftTTL),
			)
		}
	}

	if dispatcher != nil {
		dispatcher.OnAll(s.logEvent)
	}
	return s
}

func (s *Service) logEvent(e events.Event) {
	fields := []zap.Field{zap.String("event", e.Name), zap.String("collection", e.Source)}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if e.Name == events.Invalid {
		s.logger.Warn("Record rejected", fields...)
		return
	}
	s.logger.Debug("Collection event", fields...)
}

// Summary returns the records in collection order with the sort settings.
func (s *Service) Summary() Summary {
	u, err := s.collection.URL()
	if err != nil {
		s.logger.Warn("Failed to resolve collection url", zap.Error(err))
	}
	return Summary{
		Records:    s.collection.Snapshot(),
		Comparator: s.collection.Comparator(),
		Direction:  s.collection.Direction(),
		Fetched:    s.collection.Fetched(),
		Fetching:   s.collection.IsFetching(),
		URL:        u,
	}
}

// Get returns the record with identity id, loading it through the transport
// when the collection has one.
func (s *Service) Get(ctx context.Context, id string) (collection.Attributes, error) {
	if r, ok := s.collection.Get(id); ok {
		return r.Attributes(), nil
	}
	r, err := s.collection.GetOrFetch(ctx, id)
	if errors.Is(err, collection.ErrNoTransport) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Attributes(), nil
}

// Next returns the record after id.
func (s *Service) Next(id string) (collection.Attributes, error) {
	return s.adjacent(id, s.collection.Next)
}

// Previous returns the record before id.
func (s *Service) Previous(id string) (collection.Attributes, error) {
	return s.adjacent(id, s.collection.Previous)
}

func (s *Service) adjacent(id string, fn func(any) (collection.Record, bool)) (collection.Attributes, error) {
	if _, ok := s.collection.Get(id); !ok {
		return nil, ErrNotFound
	}
	r, ok := fn(id)
	if !ok {
		return nil, nil
	}
	return r.Attributes(), nil
}

// Set reconciles items into the collection.
func (s *Service) Set(items []collection.Attributes, flags SetFlags) ([]collection.Attributes, error) {
	var opts []collection.Option
	if !flags.Add {
		opts = append(opts, collection.WithoutAdd())
	}
	if !flags.Remove {
		opts = append(opts, collection.WithoutRemove())
	}
	if !flags.Merge {
		opts = append(opts, collection.WithoutMerge())
	}
	if flags.At >= 0 {
		opts = append(opts, collection.At(flags.At))
	}

	out, err := s.collection.Set(items, opts...)
	if err != nil {
		return nil, err
	}
	return attributesOf(out), nil
}

// Create persists attrs and adds the record.
func (s *Service) Create(ctx context.Context, attrs collection.Attributes) (collection.Attributes, error) {
	r, err := s.collection.Create(ctx, attrs)
	if err != nil {
		return nil, err
	}
	return r.Attributes(), nil
}

// Remove drops the record with identity id.
func (s *Service) Remove(id string) (collection.Attributes, error) {
	r, ok := s.collection.Remove(id)
	if !ok {
		return nil, ErrNotFound
	}
	return r.Attributes(), nil
}

// Sort replaces comparator and direction. Empty lists restore the defaults.
func (s *Service) Sort(comparator []string, direction []string) error {
	dirs, err := ParseDirections(direction)
	if err != nil {
		return &collection.ConfigurationError{Field: "Direction", Reason: err.Error()}
	}
	if err := s.collection.SetComparator(comparator...); err != nil {
		return err
	}
	return s.collection.SetDirection(dirs...)
}

// Fetch reloads the collection through the transport.
func (s *Service) Fetch(ctx context.Context, reset bool) error {
	var opts []collection.Option
	if reset {
		opts = append(opts, collection.WithReset())
	}
	err := s.collection.Fetch(ctx, opts...)
	s.invalidateDrift()
	if err != nil {
		return err
	}
	s.logger.Info("Collection fetched", zap.Int("records", s.collection.Len()))
	return nil
}

// Save persists the collection through the transport.
func (s *Service) Save(ctx context.Context, reset bool) error {
	var opts []collection.Option
	if reset {
		opts = append(opts, collection.WithReset())
	}
	err := s.collection.Save(ctx, opts...)
	s.invalidateDrift()
	if err != nil {
		return err
	}
	s.logger.Info("Collection saved", zap.Int("records", s.collection.Len()))
	return nil
}

// Drift compares the held records with the transport. refresh drops the
// cached remote index first.
func (s *Service) Drift(ctx context.Context, refresh bool) (*drift.Report, error) {
	if s.checker == nil {
		return nil, collection.ErrNoTransport
	}
	if refresh {
		s.checker.Invalidate()
	}
	return s.checker.Check(ctx)
}

// DriftOne reports the drift state of one identity.
func (s *Service) DriftOne(ctx context.Context, id string) (*drift.Result, error) {
	if s.checker == nil {
		return nil, collection.ErrNoTransport
	}
	return s.checker.CheckOne(ctx, id)
}

func (s *Service) invalidateDrift() {
	if s.checker != nil {
		s.checker.Invalidate()
	}
}

func attributesOf(records []collection.Record) []collection.Attributes {
	out := make([]collection.Attributes, len(records))
	for i, r := range records {
		out[i] = r.Attributes()
	}
	return out
}
