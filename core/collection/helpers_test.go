package collection_test

import (
	"testing"

	"record-collection/core/collection"
	"record-collection/core/events"
	"record-collection/core/record"

	"github.com/stretchr/testify/require"
)

func newCollection(t *testing.T, schema *record.Schema, mutate ...func(*collection.Config)) (*collection.Collection, *events.Recorder) {
	t.Helper()
	if schema == nil {
		schema = record.NewSchema()
	}
	rec := &events.Recorder{}
	cfg := collection.DefaultConfig(schema)
	cfg.Bus = rec
	for _, fn := range mutate {
		fn(&cfg)
	}
	c, err := collection.New(cfg)
	require.NoError(t, err)
	return c, rec
}

func ids(c *collection.Collection) []any {
	records := c.Records()
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func bags(values ...collection.Attributes) []collection.Attributes {
	return values
}
