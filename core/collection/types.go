package collection

import (
	"context"
	"fmt"
)

// Attributes is the raw attribute bag of a record.
type Attributes map[string]any

// Clone returns a shallow copy of the attribute bag.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Kind is the declared type of a record attribute.
// It is consulted only to dispatch comparisons and to pick default directions.
type Kind int

const (
	// KindOther compares values with the default relational comparison.
	KindOther Kind = iota
	// KindText compares values with the locale collator.
	KindText
	// KindTimeOfDay compares the wall-clock part of a time.Time only.
	KindTimeOfDay
	// KindDate is a calendar date.
	KindDate
	// KindDateTime is a full timestamp.
	KindDateTime
	// KindToOne is a relation to a single record. It is not orderable.
	KindToOne
	// KindToMany is a relation to a collection. It is not orderable.
	KindToMany
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTimeOfDay:
		return "time"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindToOne:
		return "model"
	case KindToMany:
		return "collection"
	default:
		return "other"
	}
}

// Orderable reports whether records may be sorted by an attribute of this kind.
func (k Kind) Orderable() bool {
	return k != KindToOne && k != KindToMany
}

// Temporal reports whether the kind holds a date, a timestamp or a time of day.
func (k Kind) Temporal() bool {
	return k == KindDate || k == KindDateTime || k == KindTimeOfDay
}

// ParseKind maps a kind name (as used in configuration files) to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "", "other":
		return KindOther, nil
	case "text", "string":
		return KindText, nil
	case "time":
		return KindTimeOfDay, nil
	case "date":
		return KindDate, nil
	case "datetime":
		return KindDateTime, nil
	case "model":
		return KindToOne, nil
	case "collection":
		return KindToMany, nil
	}
	return KindOther, fmt.Errorf("unknown attribute kind %q", name)
}

// Direction is the sort direction for one comparator attribute.
type Direction string

const (
	// Asc sorts smallest first.
	Asc Direction = "asc"
	// Desc sorts largest first.
	Desc Direction = "desc"
)

// Record is a single addressable entity held by a Collection.
type Record interface {
	// CID returns the instance-scoped surrogate identity.
	CID() string
	// ID returns the domain identity, or nil when the record has none yet.
	ID() any
	// Get returns the value of one attribute.
	Get(attr string) any
	// Attributes returns a copy of the attribute bag.
	Attributes() Attributes
	// Merge applies attrs onto the record in place and records which
	// attributes changed value. Attributes that cannot be applied are skipped
	// and reported in the returned error.
	Merge(attrs Attributes) error
	// HasChanged reports whether the last Merge changed attr.
	HasChanged(attr string) bool
	// Kind returns the declared kind of attr.
	Kind(attr string) Kind
}

// FactoryOptions is passed to the record factory on materialization.
type FactoryOptions struct {
	// Parse asks the factory to run its own parse step on the bag.
	Parse bool
}

// Factory materializes records from attribute bags.
type Factory interface {
	// New builds a record. A *ValidationError marks the bag as invalid.
	New(attrs Attributes, opts FactoryOptions) (Record, error)
	// IDAttribute is the name of the domain identity attribute.
	IDAttribute() string
	// Kind returns the declared kind of attr for records of this factory.
	Kind(attr string) Kind
}

// AttributeParser is implemented by factories whose parse step can run on its
// own. Set parses incoming bags with it before matching them against held
// records, so an identity produced by parsing is found.
type AttributeParser interface {
	ParseAttributes(attrs Attributes) (Attributes, error)
}

// Comparer performs locale-aware text comparison.
type Comparer interface {
	CompareString(a, b string) int
}

// Resolver turns a URL template into a concrete request target.
type Resolver interface {
	Resolve(template string, params map[string]any) (string, error)
}

// Parser transforms raw input items before reconciliation.
type Parser func(items []any) ([]any, error)

// Method is the kind of request issued to the transport.
type Method string

const (
	// MethodRead loads a collection or a single record.
	MethodRead Method = "read"
	// MethodCreate persists a new record.
	MethodCreate Method = "create"
	// MethodUpdate persists the whole collection as one bulk update.
	MethodUpdate Method = "update"
)

// Request is a single transport call.
type Request struct {
	Method  Method
	Target  string
	Payload []Attributes
}

// Response carries the attribute bags returned by the transport.
type Response struct {
	Records []Attributes
}

// Transport performs fetch and save calls. It owns retry and timeout policy.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}
