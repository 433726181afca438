package record_test

import (
	"encoding/json"
	"testing"
	"time"

	"record-collection/core/collection"
	"record-collection/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, s *record.Schema, attrs collection.Attributes) collection.Record {
	t.Helper()
	rec, err := s.New(attrs, collection.FactoryOptions{})
	require.NoError(t, err)
	return rec
}

func TestModel_Merge(t *testing.T) {
	s := record.NewSchema(record.WithKind("at", collection.KindDateTime))
	rec := newModel(t, s, collection.Attributes{"id": 1, "name": "a", "rank": 3})

	require.NoError(t, rec.Merge(collection.Attributes{"name": "b", "rank": 3, "extra": true}))
	assert.True(t, rec.HasChanged("name"))
	assert.True(t, rec.HasChanged("extra"))
	assert.False(t, rec.HasChanged("rank"))
	assert.Equal(t, "b", rec.Get("name"))

	require.NoError(t, rec.Merge(collection.Attributes{"id": 2}))
	assert.False(t, rec.HasChanged("name"), "changes reset on each merge")
	assert.True(t, rec.HasChanged("id"))
	assert.Equal(t, 2, rec.ID())
}

func TestModel_MergeTimeEquality(t *testing.T) {
	s := record.NewSchema(record.WithKind("at", collection.KindDateTime))
	rec := newModel(t, s, collection.Attributes{"at": "2024-03-01T10:00:00Z"})

	require.NoError(t, rec.Merge(collection.Attributes{"at": time.Date(2024, 3, 1, 11, 0, 0, 0, time.FixedZone("CET", 3600))}))
	assert.False(t, rec.HasChanged("at"))

	require.NoError(t, rec.Merge(collection.Attributes{"at": "2024-03-02T10:00:00Z"}))
	assert.True(t, rec.HasChanged("at"))
	assert.IsType(t, time.Time{}, rec.Get("at"))
}

func TestModel_MergeSkipsUncoercibleAttributes(t *testing.T) {
	s := record.NewSchema(record.WithKind("at", collection.KindDateTime))
	rec := newModel(t, s, collection.Attributes{"id": 1, "name": "a", "at": "2024-03-01T10:00:00Z"})
	before := rec.Get("at")

	err := rec.Merge(collection.Attributes{"name": "b", "at": "not a time"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `attribute "at"`)
	assert.Equal(t, before, rec.Get("at"))
	assert.IsType(t, time.Time{}, rec.Get("at"))
	assert.False(t, rec.HasChanged("at"))
	assert.Equal(t, "b", rec.Get("name"))
	assert.True(t, rec.HasChanged("name"))
}

func TestModel_AttributesIsCopy(t *testing.T) {
	rec := newModel(t, record.NewSchema(), collection.Attributes{"id": 1})
	attrs := rec.Attributes()
	attrs["id"] = 99
	assert.Equal(t, 1, rec.ID())
}

func TestModel_Kind(t *testing.T) {
	rec := newModel(t, record.NewSchema(record.WithKind("name", collection.KindText)), nil)
	assert.Equal(t, collection.KindText, rec.Kind("name"))
	assert.Nil(t, rec.ID())
}

func TestModel_MarshalJSON(t *testing.T) {
	rec := newModel(t, record.NewSchema(), collection.Attributes{"id": 7, "name": "x"})
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"x"}`, string(raw))
}
