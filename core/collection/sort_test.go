package collection_test

import (
	"slices"
	"testing"
	"time"

	"record-collection/core/collection"
	"record-collection/core/events"
	"record-collection/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func names(c *collection.Collection) []any {
	records := c.Records()
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r.Get("name")
	}
	return out
}

func TestSort_DirectionReversal(t *testing.T) {
	c, _ := newCollection(t, nil, func(cfg *collection.Config) {
		cfg.Comparator = []string{"rank"}
	})
	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "rank": 5},
		collection.Attributes{"id": 2, "rank": 3},
		collection.Attributes{"id": 3, "rank": 9},
		collection.Attributes{"id": 4, "rank": 1},
	))
	require.NoError(t, err)
	asc := ids(c)
	assert.Equal(t, []any{4, 2, 1, 3}, asc)

	require.NoError(t, c.SetDirection(collection.Desc))
	desc := ids(c)
	slices.Reverse(desc)
	assert.Equal(t, asc, desc)
}

func TestSort_Composite(t *testing.T) {
	c, _ := newCollection(t, nil, func(cfg *collection.Config) {
		cfg.Comparator = []string{"a", "b"}
		cfg.Direction = []collection.Direction{collection.Asc, collection.Asc}
	})
	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "a": 1, "b": 2},
		collection.Attributes{"id": 2, "a": 1, "b": 1},
	))
	require.NoError(t, err)
	assert.Equal(t, []any{2, 1}, ids(c))
}

func TestSort_ShortDirectionListReusesLast(t *testing.T) {
	c, _ := newCollection(t, nil, func(cfg *collection.Config) {
		cfg.Comparator = []string{"a", "b", "c"}
		cfg.Direction = []collection.Direction{collection.Asc, collection.Desc}
	})
	assert.Equal(t, []collection.Direction{collection.Asc, collection.Desc, collection.Desc}, c.Direction())

	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "a": 1, "b": 1, "c": 1},
		collection.Attributes{"id": 2, "a": 1, "b": 1, "c": 2},
		collection.Attributes{"id": 3, "a": 0, "b": 0, "c": 0},
	))
	require.NoError(t, err)
	assert.Equal(t, []any{3, 2, 1}, ids(c))
}

func TestSort_LocaleCollation(t *testing.T) {
	schema := record.NewSchema(record.WithKind("name", collection.KindText))

	t.Run("English", func(t *testing.T) {
		c, _ := newCollection(t, schema, func(cfg *collection.Config) {
			cfg.Comparator = []string{"name"}
			cfg.Locale = "en"
		})
		_, err := c.Set(bags(
			collection.Attributes{"id": 1, "name": "c"},
			collection.Attributes{"id": 2, "name": "B"},
			collection.Attributes{"id": 3, "name": "á"},
			collection.Attributes{"id": 4, "name": "b"},
			collection.Attributes{"id": 5, "name": "a"},
		))
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "á", "b", "B", "c"}, names(c))
	})

	t.Run("Swedish", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		c, _ := newCollection(t, schema, func(cfg *collection.Config) {
			cfg.Comparator = []string{"name"}
			cfg.Locale = "sv"
			cfg.Logger = zap.New(core)
		})
		_, err := c.Set(bags(
			collection.Attributes{"id": 1, "name": "ä"},
			collection.Attributes{"id": 2, "name": "z"},
			collection.Attributes{"id": 3, "name": "a"},
		))
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "z", "ä"}, names(c))

		ready := logs.FilterMessage("Collator ready").All()
		require.Len(t, ready, 1, "collator is built once")
		assert.Equal(t, "sv", ready[0].ContextMap()["locale"])
	})
}

func TestSort_TimeOfDayIgnoresDate(t *testing.T) {
	schema := record.NewSchema(record.WithKind("opensAt", collection.KindTimeOfDay))
	c, _ := newCollection(t, schema, func(cfg *collection.Config) {
		cfg.Comparator = []string{"opensAt"}
		cfg.Direction = []collection.Direction{collection.Asc}
	})
	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "opensAt": time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)},
		collection.Attributes{"id": 2, "opensAt": time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		collection.Attributes{"id": 3, "opensAt": time.Date(1999, 12, 31, 9, 0, 0, 0, time.UTC)},
	))
	require.NoError(t, err)
	assert.Equal(t, []any{3, 1, 2}, ids(c))

	require.NoError(t, c.SetDirection(collection.Desc))
	assert.Equal(t, []any{1, 2, 3}, ids(c), "equal wall-clock times keep their relative order")
}

func TestSort_DefaultDirection(t *testing.T) {
	schema := record.NewSchema(
		record.WithKind("createdAt", collection.KindDateTime),
		record.WithKind("day", collection.KindDate),
		record.WithKind("name", collection.KindText),
	)

	tests := []struct {
		name       string
		comparator []string
		want       []collection.Direction
	}{
		{"Identity", nil, []collection.Direction{collection.Asc}},
		{"Text", []string{"name"}, []collection.Direction{collection.Asc}},
		{"DateTime", []string{"createdAt"}, []collection.Direction{collection.Desc}},
		{"Date", []string{"day"}, []collection.Direction{collection.Desc}},
		{"Composite", []string{"createdAt", "name"}, []collection.Direction{collection.Asc, collection.Asc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCollection(t, schema, func(cfg *collection.Config) {
				cfg.Comparator = tt.comparator
			})
			assert.Equal(t, tt.want, c.Direction())
		})
	}
}

func TestSort_RelationsAreRejected(t *testing.T) {
	schema := record.NewSchema(
		record.WithKind("owner", collection.KindToOne),
		record.WithKind("members", collection.KindToMany),
	)

	cfg := collection.DefaultConfig(schema)
	cfg.Comparator = []string{"owner"}
	_, err := collection.New(cfg)
	var serr *collection.StructuralSortError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "owner", serr.Attribute)
	assert.ErrorIs(t, err, collection.ErrConfiguration)

	c, rec := newCollection(t, schema)
	err = c.SetComparator("id", "members")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, collection.KindToMany, serr.Kind)
	assert.Equal(t, []string{"id"}, c.Comparator())
	assert.Empty(t, rec.Names())
}

func TestSetComparator(t *testing.T) {
	c, rec := newCollection(t, nil)
	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "rank": 2},
		collection.Attributes{"id": 2, "rank": 1},
	))
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, c.SetComparator("rank"))
	assert.Equal(t, []any{2, 1}, ids(c))
	assert.Equal(t, []string{"rank"}, c.Comparator())

	evs := rec.Events()
	require.Len(t, evs, 1, "resort is silent")
	assert.Equal(t, events.ComparatorChanged, evs[0].Name)
	assert.Equal(t, []string{"id"}, evs[0].Old)
	assert.Equal(t, []string{"rank"}, evs[0].New)
	assert.Equal(t, c.CID(), evs[0].Source)

	require.NoError(t, c.SetComparator("rank"))
	assert.Len(t, rec.Events(), 1, "unchanged comparator is a no-op")

	require.NoError(t, c.SetComparator())
	assert.Equal(t, []string{"id"}, c.Comparator())
	assert.Equal(t, []any{1, 2}, ids(c))
}

func TestSetDirection(t *testing.T) {
	c, rec := newCollection(t, nil)
	_, err := c.Set(bags(collection.Attributes{"id": 1}, collection.Attributes{"id": 2}))
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, c.SetDirection(collection.Desc))
	assert.Equal(t, []any{2, 1}, ids(c))

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.DirectionChanged, evs[0].Name)
	assert.Equal(t, []collection.Direction{collection.Asc}, evs[0].Old)
	assert.Equal(t, []collection.Direction{collection.Desc}, evs[0].New)

	err = c.SetDirection("sideways")
	var cerr *collection.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Direction", cerr.Field)
}

func TestSort_Idempotent(t *testing.T) {
	c, rec := newCollection(t, nil, func(cfg *collection.Config) {
		cfg.Comparator = []string{"group"}
	})
	c.Sort()
	assert.Empty(t, rec.Names(), "empty collection does not sort")

	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "group": "b"},
		collection.Attributes{"id": 2, "group": "a"},
		collection.Attributes{"id": 3, "group": "a"},
		collection.Attributes{"id": 4, "group": "b"},
	))
	require.NoError(t, err)
	first := ids(c)

	c.Sort()
	c.Sort()
	assert.Equal(t, first, ids(c))
	assert.Equal(t, []any{2, 3, 1, 4}, first)

	rec.Reset()
	c.Sort(collection.Silent())
	assert.Empty(t, rec.Names())
}

func TestSort_NilValuesFirst(t *testing.T) {
	c, _ := newCollection(t, nil, func(cfg *collection.Config) {
		cfg.Comparator = []string{"rank"}
	})
	_, err := c.Set(bags(
		collection.Attributes{"id": 1, "rank": 2},
		collection.Attributes{"id": 2},
		collection.Attributes{"id": 3, "rank": 1.5},
	))
	require.NoError(t, err)
	assert.Equal(t, []any{2, 3, 1}, ids(c))
}
