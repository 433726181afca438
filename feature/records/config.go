package records

import (
	"fmt"
	"strings"
	"time"

	"record-collection/core/collation"
	"record-collection/core/collection"
	"record-collection/core/record"
)

// Config describes the hosted collection. List values are comma separated so
// they can be set from environment variables.
type Config struct {
	// IDAttribute names the identity attribute of records.
	IDAttribute string `mapstructure:"id_attribute" default:"id"`
	// Kinds declares attribute kinds as "attr:kind" pairs, e.g. "name:text,opensAt:time".
	Kinds string `mapstructure:"kinds" default:""`
	// Required lists attributes every record must carry.
	Required string `mapstructure:"required" default:""`
	// Comparator lists the sort attributes. Empty sorts by identity.
	Comparator string `mapstructure:"comparator" default:""`
	// Direction lists asc/desc per comparator attribute.
	Direction string `mapstructure:"direction" default:""`
	// Locale selects the text collation.
	Locale string `mapstructure:"locale" default:"und"`
	// NumericCollation compares digit runs in text attributes by value.
	NumericCollation bool `mapstructure:"numeric_collation" default:"false"`
	// URL is the collection URL template.
	URL string `mapstructure:"url" default:"/records"`
	// WaitDefault makes creates persist before adding.
	WaitDefault bool `mapstructure:"wait_default" default:"true"`
	// FetchSilentDefault applies fetched records without notifications.
	FetchSilentDefault bool `mapstructure:"fetch_silent_default" default:"true"`
	// DriftTTLSeconds keeps the remote index of drift checks; 0 reads it every time.
	DriftTTLSeconds int `mapstructure:"drift_ttl_seconds" default:"60"`
}

// DriftTTL returns the drift cache lifetime.
func (c Config) DriftTTL() time.Duration {
	if c.DriftTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DriftTTLSeconds) * time.Second
}

// ComparatorList returns the configured comparator attributes.
func (c Config) ComparatorList() []string {
	return splitList(c.Comparator)
}

// DirectionList parses the configured directions.
func (c Config) DirectionList() ([]collection.Direction, error) {
	return ParseDirections(splitList(c.Direction))
}

// KindMap parses the configured attribute kinds.
func (c Config) KindMap() (map[string]collection.Kind, error) {
	names := make(map[string]string)
	for _, pair := range splitList(c.Kinds) {
		attr, kind, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(attr) == "" {
			return nil, fmt.Errorf("invalid kind declaration %q, want attr:kind", pair)
		}
		names[strings.TrimSpace(attr)] = strings.TrimSpace(kind)
	}
	return record.ParseKinds(names)
}

// Schema builds the record schema.
func (c Config) Schema() (*record.Schema, error) {
	kinds, err := c.KindMap()
	if err != nil {
		return nil, err
	}
	opts := []record.SchemaOption{
		record.WithIDAttribute(c.IDAttribute),
		record.WithKinds(kinds),
	}
	if required := splitList(c.Required); len(required) > 0 {
		opts = append(opts, record.WithValidator(record.Required(required...)))
	}
	return record.NewSchema(opts...), nil
}

// CollectionConfig builds the collection configuration for schema.
// Transport, bus and logger are left for the caller.
func (c Config) CollectionConfig(schema *record.Schema) (collection.Config, error) {
	dirs, err := c.DirectionList()
	if err != nil {
		return collection.Config{}, err
	}

	cfg := collection.DefaultConfig(schema)
	cfg.Comparator = c.ComparatorList()
	cfg.Direction = dirs
	cfg.Locale = c.Locale
	cfg.URL = c.URL
	cfg.WaitDefault = c.WaitDefault
	cfg.FetchSilentDefault = c.FetchSilentDefault

	if c.NumericCollation {
		collator, err := collation.New(c.Locale, collation.WithNumeric())
		if err != nil {
			return collection.Config{}, fmt.Errorf("failed to build collator: %w", err)
		}
		cfg.Collator = collator
	}
	return cfg, nil
}

// ParseDirections converts "asc"/"desc" names to directions.
func ParseDirections(names []string) ([]collection.Direction, error) {
	dirs := make([]collection.Direction, 0, len(names))
	for _, name := range names {
		switch d := collection.Direction(strings.ToLower(name)); d {
		case collection.Asc, collection.Desc:
			dirs = append(dirs, d)
		default:
			return nil, fmt.Errorf("unknown direction %q", name)
		}
	}
	return dirs, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
