package collection_test

import (
	"testing"

	"record-collection/core/collection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPrevious(t *testing.T) {
	c, _ := newCollection(t, nil)
	_, err := c.Set(bags(
		collection.Attributes{"id": 1},
		collection.Attributes{"id": 2},
		collection.Attributes{"id": 3},
	))
	require.NoError(t, err)

	_, ok := c.Next(3)
	assert.False(t, ok, "last record has no successor")
	_, ok = c.Previous(1)
	assert.False(t, ok, "first record has no predecessor")

	interior, _ := c.Get(2)
	prev, ok := c.Previous(interior)
	require.True(t, ok)
	next, ok := c.Next(prev)
	require.True(t, ok)
	assert.Equal(t, interior.CID(), next.CID())

	_, ok = c.Next(42)
	assert.False(t, ok)
}

func TestNextPrevious_AfterMutation(t *testing.T) {
	c, _ := newCollection(t, nil)
	_, err := c.Set(bags(
		collection.Attributes{"id": 1},
		collection.Attributes{"id": 2},
		collection.Attributes{"id": 3},
	))
	require.NoError(t, err)

	next, ok := c.Next(1)
	require.True(t, ok)
	assert.Equal(t, 2, next.ID())

	_, err = c.Add(collection.Attributes{"id": 0})
	require.NoError(t, err)
	prev, ok := c.Previous(1)
	require.True(t, ok)
	assert.Equal(t, 0, prev.ID())

	c.Remove(2)
	next, ok = c.Next(1)
	require.True(t, ok)
	assert.Equal(t, 3, next.ID())

	require.NoError(t, c.SetDirection(collection.Desc))
	next, ok = c.Next(1)
	require.True(t, ok)
	assert.Equal(t, 0, next.ID())
}
