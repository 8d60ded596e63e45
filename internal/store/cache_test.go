package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func key(name string) LoadKey {
	return LoadKey{Source: "test", Params: name}
}

func TestDatasetCache_BasicGetPut(t *testing.T) {
	c := newDatasetCache(3)
	a := &Dataset{Key: key("a")}

	c.putIfAbsent(key("a"), a)

	got, ok := c.get(key("a"))
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = c.get(key("missing"))
	assert.False(t, ok)
}

func TestDatasetCache_WriteOnce(t *testing.T) {
	c := newDatasetCache(1)
	first := &Dataset{Key: key("a")}
	second := &Dataset{Key: key("a")}

	assert.Same(t, first, c.putIfAbsent(key("a"), first))
	assert.Same(t, first, c.putIfAbsent(key("a"), second), "existing entry must not be replaced")
}

func TestDatasetCache_Eviction(t *testing.T) {
	c := newDatasetCache(2)

	c.putIfAbsent(key("a"), &Dataset{})
	c.putIfAbsent(key("b"), &Dataset{})
	c.putIfAbsent(key("c"), &Dataset{}) // evicts "a"

	_, ok := c.get(key("a"))
	assert.False(t, ok, "a should have been evicted")
	_, ok = c.get(key("b"))
	assert.True(t, ok)
	_, ok = c.get(key("c"))
	assert.True(t, ok)
}

func TestDatasetCache_AccessPromotesEntry(t *testing.T) {
	c := newDatasetCache(2)

	c.putIfAbsent(key("a"), &Dataset{})
	c.putIfAbsent(key("b"), &Dataset{})
	c.get(key("a"))
	c.putIfAbsent(key("c"), &Dataset{})

	_, ok := c.get(key("a"))
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get(key("b"))
	assert.False(t, ok, "b should have been evicted")
}

func TestDatasetCache_Invalidate(t *testing.T) {
	c := newDatasetCache(2)
	c.putIfAbsent(key("a"), &Dataset{})
	c.putIfAbsent(key("b"), &Dataset{})

	assert.True(t, c.invalidate(key("a")))
	assert.False(t, c.invalidate(key("a")))
	assert.Equal(t, 1, c.len())

	_, ok := c.get(key("b"))
	assert.True(t, ok)
}

func TestDatasetCache_MinimumCapacity(t *testing.T) {
	c := newDatasetCache(0)
	c.putIfAbsent(key("a"), &Dataset{})

	assert.Equal(t, 1, c.len())
}
