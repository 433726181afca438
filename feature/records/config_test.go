package records_test

import (
	"testing"

	"record-collection/core/collection"
	"record-collection/feature/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLists(t *testing.T) {
	cfg := records.Config{
		IDAttribute: "code",
		Comparator:  " name , opensAt ,",
		Direction:   "asc,DESC",
		Kinds:       "name:text, opensAt:time, owner:model",
		Locale:      "sv",
	}

	assert.Equal(t, []string{"name", "opensAt"}, cfg.ComparatorList())

	dirs, err := cfg.DirectionList()
	require.NoError(t, err)
	assert.Equal(t, []collection.Direction{collection.Asc, collection.Desc}, dirs)

	kinds, err := cfg.KindMap()
	require.NoError(t, err)
	assert.Equal(t, collection.KindText, kinds["name"])
	assert.Equal(t, collection.KindTimeOfDay, kinds["opensAt"])
	assert.Equal(t, collection.KindToOne, kinds["owner"])

	schema, err := cfg.Schema()
	require.NoError(t, err)
	assert.Equal(t, "code", schema.IDAttribute())
	assert.Equal(t, collection.KindText, schema.Kind("name"))

	ccfg, err := cfg.CollectionConfig(schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "opensAt"}, ccfg.Comparator)
	assert.Equal(t, "sv", ccfg.Locale)
	assert.Nil(t, ccfg.Collator)
}

func TestConfigErrors(t *testing.T) {
	_, err := records.Config{Kinds: "name"}.KindMap()
	assert.Error(t, err)

	_, err = records.Config{Kinds: "name:colour"}.Schema()
	assert.Error(t, err)

	_, err = records.Config{Direction: "up"}.DirectionList()
	assert.Error(t, err)

	_, err = records.ParseDirections([]string{"asc", ""})
	assert.Error(t, err)
}

func TestConfigNumericCollation(t *testing.T) {
	cfg := records.Config{Locale: "en", NumericCollation: true, Comparator: "label", Kinds: "label:text"}
	schema, err := cfg.Schema()
	require.NoError(t, err)
	ccfg, err := cfg.CollectionConfig(schema)
	require.NoError(t, err)
	require.NotNil(t, ccfg.Collator)
	assert.Negative(t, ccfg.Collator.CompareString("item 2", "item 10"))

	c, err := collection.New(ccfg)
	require.NoError(t, err)
	_, err = c.Set([]collection.Attributes{{"id": 1, "label": "item 10"}, {"id": 2, "label": "item 2"}})
	require.NoError(t, err)
	first, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, 2, first.ID())
}
