package urltemplate_test

import (
	"testing"

	"record-collection/core/urltemplate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]any
		want     string
	}{
		{"NoPlaceholders", "/records", nil, "/records"},
		{"SimpleVariable", "/rooms/{roomId}/items", map[string]any{"roomId": 7}, "/rooms/7/items"},
		{"NestedValue", "/rooms/{room.id}", map[string]any{"room": map[string]any{"id": "lobby"}}, "/rooms/lobby"},
		{"Fallback", "/page/{page ?? 1}", map[string]any{}, "/page/1"},
		{"MissingIsEmpty", "/a/{missing}/b", map[string]any{}, "/a//b"},
		{"EscapesValues", "/files/{name}", map[string]any{"name": "a b/c"}, "/files/a%20b%2Fc"},
		{"Expression", "/items?limit={length * 2}", map[string]any{"length": 5}, "/items?limit=10"},
	}

	r := urltemplate.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.template, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_WithoutEscape(t *testing.T) {
	r := urltemplate.New(urltemplate.WithoutEscape())
	got, err := r.Resolve("{base}/records", map[string]any{"base": "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/records", got)
}

func TestResolver_Errors(t *testing.T) {
	r := urltemplate.New()

	_, err := r.Resolve("/rooms/{roomId", nil)
	assert.ErrorIs(t, err, urltemplate.ErrUnterminated)

	_, err = r.Resolve("/rooms/{}", nil)
	assert.Error(t, err)

	_, err = r.Resolve("/rooms/{1 +}", nil)
	assert.Error(t, err)
}
