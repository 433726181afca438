package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecord struct {
	cid   string
	attrs Attributes
}

func (r *stubRecord) CID() string { return r.cid }
func (r *stubRecord) ID() any { return r.attrs["id"] }
func (r *stubRecord) Get(attr string) any { return r.attrs[attr] }
func (r *stubRecord) Attributes() Attributes { return r.attrs.Clone() }
func (r *stubRecord) Merge(attrs Attributes) error { r.attrs = attrs.Clone(); return nil }
func (r *stubRecord) HasChanged(string) bool { return false }
func (r *stubRecord) Kind(string) Kind { return KindOther }

type stubFactory struct{ n int }

func (f *stubFactory) New(attrs Attributes, _ FactoryOptions) (Record, error) {
	f.n++
	return &stubRecord{cid: "c" + string(rune('0'+f.n)), attrs: attrs.Clone()}, nil
}
func (f *stubFactory) IDAttribute() string { return "id" }
func (f *stubFactory) Kind(string) Kind { return KindOther }

func TestPositionCache_Invalidation(t *testing.T) {
	c, err := New(Config{Factory: &stubFactory{}})
	require.NoError(t, err)

	_, err = c.Set([]Attributes{{"id": 1}, {"id": 2}, {"id": 3}})
	require.NoError(t, err)
	assert.Nil(t, c.index)

	_, ok := c.Next(1)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"c1": 0, "c2": 1, "c3": 2}, c.index)

	c.Sort()
	assert.Nil(t, c.index, "sort invalidates")

	c.Next(1)
	c.Remove(3)
	assert.Nil(t, c.index, "remove invalidates")

	c.Next(1)
	_, err = c.Add(Attributes{"id": 4})
	require.NoError(t, err)
	assert.Nil(t, c.index, "add invalidates")

	c.Next(1)
	assert.Len(t, c.index, 3, "rebuilt in full")
}
