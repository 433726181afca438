package record

import (
	"errors"
	"fmt"
	"time"

	"record-collection/core/collection"
)

// DefaultIDAttribute is the identity attribute used when none is configured.
const DefaultIDAttribute = "id"

// Validator checks an attribute bag before a record is materialized.
type Validator func(attrs collection.Attributes) error

// ParseFunc rewrites an attribute bag when the caller asks for parsing.
type ParseFunc func(attrs collection.Attributes) (collection.Attributes, error)

// Schema declares the shape of records and materializes them.
type Schema struct {
	idAttribute string
	kinds       map[string]collection.Kind
	defaults    collection.Attributes
	validators  []Validator
	parse       ParseFunc
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithIDAttribute sets the identity attribute name.
func WithIDAttribute(name string) SchemaOption {
	return func(s *Schema) {
		if name != "" {
			s.idAttribute = name
		}
	}
}

// WithKind declares the kind of one attribute.
func WithKind(attr string, kind collection.Kind) SchemaOption {
	return func(s *Schema) {
		s.kinds[attr] = kind
	}
}

// WithKinds declares the kinds of several attributes.
func WithKinds(kinds map[string]collection.Kind) SchemaOption {
	return func(s *Schema) {
		for attr, kind := range kinds {
			s.kinds[attr] = kind
		}
	}
}

// WithDefaults sets attribute values applied before the incoming bag.
func WithDefaults(defaults collection.Attributes) SchemaOption {
	return func(s *Schema) {
		s.defaults = defaults.Clone()
	}
}

// WithValidator appends a validator.
func WithValidator(v Validator) SchemaOption {
	return func(s *Schema) {
		if v != nil {
			s.validators = append(s.validators, v)
		}
	}
}

// WithParse sets the parse step run when FactoryOptions.Parse is set.
func WithParse(fn ParseFunc) SchemaOption {
	return func(s *Schema) {
		s.parse = fn
	}
}

// NewSchema creates a schema. Without options records are identified by "id"
// and every attribute compares as KindOther.
func NewSchema(opts ...SchemaOption) *Schema {
	s := &Schema{
		idAttribute: DefaultIDAttribute,
		kinds:       make(map[string]collection.Kind),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// IDAttribute returns the identity attribute name.
func (s *Schema) IDAttribute() string {
	return s.idAttribute
}

// Kind returns the declared kind of attr.
func (s *Schema) Kind(attr string) collection.Kind {
	return s.kinds[attr]
}

// New materializes a record from attrs. Validation failures are returned as
// *collection.ValidationError.
func (s *Schema) New(attrs collection.Attributes, opts collection.FactoryOptions) (collection.Record, error) {
	values := s.defaults.Clone()
	for k, v := range attrs {
		values[k] = v
	}

	if opts.Parse && s.parse != nil {
		parsed, err := s.parse(values)
		if err != nil {
			return nil, &collection.ValidationError{Attributes: attrs, Err: fmt.Errorf("parse: %w", err)}
		}
		values = parsed
	}

	if _, err := s.coerce(values); err != nil {
		return nil, &collection.ValidationError{Attributes: attrs, Err: err}
	}

	for _, validate := range s.validators {
		if err := validate(values); err != nil {
			return nil, &collection.ValidationError{Attributes: attrs, Err: err}
		}
	}

	return newModel(s, values), nil
}

// ParseAttributes runs the parse step alone, without defaults, coercion or
// validation. attrs is not modified.
func (s *Schema) ParseAttributes(attrs collection.Attributes) (collection.Attributes, error) {
	if s.parse == nil {
		return attrs, nil
	}
	parsed, err := s.parse(attrs.Clone())
	if err != nil {
		return nil, &collection.ValidationError{Attributes: attrs, Err: fmt.Errorf("parse: %w", err)}
	}
	return parsed, nil
}

// coerce converts string values of temporal attributes to time.Time in place.
// Values that do not parse are left untouched; their attribute names are
// returned alongside the joined error.
func (s *Schema) coerce(values collection.Attributes) ([]string, error) {
	var (
		failed []string
		errs   []error
	)
	for attr, v := range values {
		kind := s.kinds[attr]
		if !kind.Temporal() {
			continue
		}
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		t, err := parseTime(kind, str)
		if err != nil {
			failed = append(failed, attr)
			errs = append(errs, fmt.Errorf("attribute %q: %w", attr, err))
			continue
		}
		values[attr] = t
	}
	return failed, errors.Join(errs...)
}

var (
	timeOfDayLayouts = []string{"15:04:05.000", "15:04:05", "15:04", time.RFC3339Nano}
	dateLayouts      = []string{time.DateOnly, time.RFC3339Nano, time.DateTime}
	dateTimeLayouts  = []string{time.RFC3339Nano, time.DateTime, "2006-01-02T15:04:05", time.DateOnly}
)

func parseTime(kind collection.Kind, value string) (time.Time, error) {
	layouts := dateTimeLayouts
	switch kind {
	case collection.KindTimeOfDay:
		layouts = timeOfDayLayouts
	case collection.KindDate:
		layouts = dateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as %s", value, kind)
}

// Required returns a validator that rejects bags missing any of attrs or
// holding an empty string for them.
func Required(attrs ...string) Validator {
	return func(values collection.Attributes) error {
		for _, attr := range attrs {
			v, ok := values[attr]
			if !ok || v == nil {
				return fmt.Errorf("attribute %q is required", attr)
			}
			if s, isString := v.(string); isString && s == "" {
				return fmt.Errorf("attribute %q must not be empty", attr)
			}
		}
		return nil
	}
}

// ParseKinds converts configured kind names ("text", "datetime", ...) to kinds.
func ParseKinds(names map[string]string) (map[string]collection.Kind, error) {
	kinds := make(map[string]collection.Kind, len(names))
	for attr, name := range names {
		kind, err := collection.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr, err)
		}
		kinds[attr] = kind
	}
	return kinds, nil
}
