package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the root of all configuration errors.
	ErrConfiguration = errors.New("collection: invalid configuration")

	// ErrMissingFactory is returned by New when no record factory is configured.
	ErrMissingFactory = &ConfigurationError{Field: "Factory", Reason: "a collection must define a record factory"}

	// ErrInvalidInput is the root of all InvalidInputError values.
	ErrInvalidInput = errors.New("collection: invalid input")

	// ErrFetchInProgress is returned when a fetch is issued while another one
	// is still outstanding. The collection is left unchanged.
	ErrFetchInProgress = errors.New("collection: fetch already in progress")

	// ErrNoTransport is returned by Fetch, Save, Create and GetOrFetch when the
	// collection has no transport.
	ErrNoTransport = errors.New("collection: no transport configured")
)

// ConfigurationError reports a collection that cannot operate as configured.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("collection: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// StructuralSortError reports a comparator attribute that denotes a relation.
type StructuralSortError struct {
	Attribute string
	Kind      Kind
}

func (e *StructuralSortError) Error() string {
	return fmt.Sprintf("collection: sorting by attribute %q of type %s is not allowed", e.Attribute, e.Kind)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *StructuralSortError) Unwrap() error {
	return ErrConfiguration
}

// InvalidInputError reports a Set payload that is neither a record, an
// attribute bag nor a sequence of those.
type InvalidInputError struct {
	Input any
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("collection: records must be a record, an attribute map or a slice, got %T", e.Input)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationError reports an attribute bag the factory refused to materialize.
// It is never returned from Set; it travels on the invalid notification.
type ValidationError struct {
	Attributes Attributes
	Err        error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "collection: invalid record"
	}
	return fmt.Sprintf("collection: invalid record: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// asValidationError normalizes factory errors so the invalid notification always
// carries a *ValidationError.
func asValidationError(attrs Attributes, err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Attributes == nil {
			verr.Attributes = attrs
		}
		return verr
	}
	return &ValidationError{Attributes: attrs, Err: err}
}
