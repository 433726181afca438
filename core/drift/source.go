package drift

import (
	"context"
	"fmt"

	"record-collection/core/collection"
	"record-collection/core/utils"
)

// Source loads one side of a drift check.
type Source interface {
	// Name identifies the source in errors and logs.
	Name() string
	// Load returns every record of the source indexed by identity key.
	Load(ctx context.Context) (Index, error)
}

// CollectionSource indexes the records held by a collection.
type CollectionSource struct {
	c *collection.Collection
}

// NewCollectionSource creates a source over c.
func NewCollectionSource(c *collection.Collection) *CollectionSource {
	return &CollectionSource{c: c}
}

func (s *CollectionSource) Name() string {
	return "collection"
}

// Load never fails; records without an identity are left out.
func (s *CollectionSource) Load(_ context.Context) (Index, error) {
	records := s.c.Records()
	index := make(Index, len(records))
	for _, r := range records {
		if r.ID() == nil {
			continue
		}
		index[utils.ToString(r.ID())] = r.Attributes()
	}
	return index, nil
}

// TransportSource reads a collection target through a transport.
type TransportSource struct {
	transport   collection.Transport
	target      string
	idAttribute string
}

// NewTransportSource creates a source reading target through t. Records are
// keyed by idAttribute.
func NewTransportSource(t collection.Transport, target, idAttribute string) *TransportSource {
	if idAttribute == "" {
		idAttribute = "id"
	}
	return &TransportSource{transport: t, target: target, idAttribute: idAttribute}
}

func (s *TransportSource) Name() string {
	return "transport"
}

// Load reads the target. Records without an identity are left out.
func (s *TransportSource) Load(ctx context.Context) (Index, error) {
	resp, err := s.transport.Do(ctx, collection.Request{Method: collection.MethodRead, Target: s.target})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.target, err)
	}
	index := make(Index, len(resp.Records))
	for _, attrs := range resp.Records {
		id, ok := attrs[s.idAttribute]
		if !ok || id == nil {
			continue
		}
		index[utils.ToString(id)] = attrs
	}
	return index, nil
}
