package collation

import (
	"fmt"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "und"

// Option configures a Collator.
type Option func(*settings)

type settings struct {
	numeric bool
}

// WithNumeric sorts runs of digits by numeric value ("2" before "10").
func WithNumeric() Option {
	return func(s *settings) {
		s.numeric = true
	}
}

// Collator compares strings by the rules of one locale.
type Collator struct {
	mu  sync.Mutex
	c   *collate.Collator
	tag language.Tag
}

// New creates a collator for locale (a BCP 47 tag such as "en" or "de-CH").
// An empty locale selects the root collation.
func New(locale string, opts ...Option) (*Collator, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}

	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	var collateOpts []collate.Option
	if s.numeric {
		collateOpts = append(collateOpts, collate.Numeric)
	}

	return &Collator{
		c:   collate.New(tag, collateOpts...),
		tag: tag,
	}, nil
}

// CompareString returns -1, 0 or 1 depending on whether a sorts before,
// together with, or after b.
func (c *Collator) CompareString(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// Locale returns the BCP 47 tag the collator was built for.
func (c *Collator) Locale() string {
	return c.tag.String()
}

// Validate reports whether locale can be used to build a Collator.
func Validate(locale string) error {
	if locale == "" {
		return nil
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}
	return nil
}
