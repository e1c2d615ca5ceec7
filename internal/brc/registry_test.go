package brc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	names := []string{"Tokyo", "Paris", "Abéché", "Oslo", "Os", "Zürich", "Ab"}
	for i, name := range names {
		require.NoError(t, r.Register(Slot(i), name))
	}
	assert.Equal(t, len(names), r.Len())

	name, ok := r.Name(2)
	assert.True(t, ok)
	assert.Equal(t, "Abéché", name)
	_, ok = r.Name(Slot(len(names)))
	assert.False(t, ok)
	_, ok = r.Name(noSlot)
	assert.False(t, ok)

	slot, ok := r.Lookup("Oslo")
	assert.True(t, ok)
	assert.Equal(t, Slot(3), slot)
	_, ok = r.Lookup("Osl")
	assert.False(t, ok)

	var gotNames []string
	var gotSlots []Slot
	for slot, name := range r.All() {
		gotNames = append(gotNames, name)
		gotSlots = append(gotSlots, slot)
	}
	assert.Equal(t, []string{"Ab", "Abéché", "Os", "Oslo", "Paris", "Tokyo", "Zürich"}, gotNames)
	assert.Equal(t, []Slot{6, 2, 4, 3, 1, 0, 5}, gotSlots)
}

func TestRegistryRegisterOnce(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(0, "a"))
	assert.Error(t, r.Register(0, "b"), "slot already registered")
	assert.Error(t, r.Register(2, "c"), "slot out of order")
	assert.Error(t, r.Register(1, "a"), "name already registered")
	require.NoError(t, r.Register(1, "b"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryAllStops(t *testing.T) {
	r := NewRegistry()
	for i, name := range []string{"c", "b", "a"} {
		require.NoError(t, r.Register(Slot(i), name))
	}
	var got []string
	for _, name := range r.All() {
		got = append(got, name)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}
