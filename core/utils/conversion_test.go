package utils_test

import (
	"encoding/json"
	"testing"

	"record-collection/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "abc", "abc"},
		{"Bytes", []byte("abc"), "abc"},
		{"Int", 42, "42"},
		{"WholeFloat", float64(42), "42"},
		{"Fraction", 1.5, "1.5"},
		{"JSONNumber", json.Number("7"), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ToString(tt.in))
		})
	}
}

func TestToFloat(t *testing.T) {
	f, ok := utils.ToFloat(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = utils.ToFloat(json.Number("2.5"))
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = utils.ToFloat("3")
	assert.False(t, ok)

	_, ok = utils.ToFloat(nil)
	assert.False(t, ok)
}

func TestToBool(t *testing.T) {
	assert.True(t, utils.ToBool("true"))
	assert.True(t, utils.ToBool(" TRUE "))
	assert.True(t, utils.ToBool([]byte("1")))
	assert.True(t, utils.ToBool(1))
	assert.False(t, utils.ToBool("no"))
	assert.False(t, utils.ToBool(nil))
}
