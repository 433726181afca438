package collation_test

import (
	"sort"
	"testing"

	"record-collection/core/collation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorted(c *collation.Collator, in []string) []string {
	out := append([]string(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i], out[j]) < 0
	})
	return out
}

func TestCollator_CompareString(t *testing.T) {
	tests := []struct {
		name   string
		locale string
		input  []string
		want   []string
	}{
		{"AccentsGroupWithBase", "en", []string{"b", "á", "c", "a"}, []string{"a", "á", "b", "c"}},
		{"CaseGroupsWithBase", "en", []string{"b", "B", "a"}, []string{"a", "b", "B"}},
		{"SwedishTailoring", "sv", []string{"ä", "z", "a"}, []string{"a", "z", "ä"}},
		{"GermanKeepsUmlautNearBase", "de", []string{"z", "ä", "a"}, []string{"a", "ä", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := collation.New(tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sorted(c, tt.input))
		})
	}
}

func TestCollator_Numeric(t *testing.T) {
	plain, err := collation.New("en")
	require.NoError(t, err)
	numeric, err := collation.New("en", collation.WithNumeric())
	require.NoError(t, err)

	assert.Equal(t, -1, plain.CompareString("item10", "item2"))
	assert.Equal(t, 1, numeric.CompareString("item10", "item2"))
	assert.Equal(t, -1, numeric.CompareString("item2", "item10"))
}

func TestNew(t *testing.T) {
	t.Run("EmptyLocaleUsesRoot", func(t *testing.T) {
		c, err := collation.New("")
		require.NoError(t, err)
		assert.Equal(t, "und", c.Locale())
		assert.Equal(t, 0, c.CompareString("same", "same"))
	})

	t.Run("InvalidLocale", func(t *testing.T) {
		_, err := collation.New("not a locale!")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, collation.Validate(""))
	assert.NoError(t, collation.Validate("de-CH"))
	assert.Error(t, collation.Validate("not a locale!"))
}
