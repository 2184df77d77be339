package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := NewInMemory(time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Size())
}

func TestExpiry(t *testing.T) {
	c := NewInMemory(time.Minute)
	c.SetWithTTL("k", "v", -time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := NewInMemory(time.Minute)
	c.Set("k", "v")
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDeletePrefix(t *testing.T) {
	c := NewInMemory(time.Minute)
	c.Set("resolve:a/b", 1)
	c.Set("resolve:a/b/c", 2)
	c.Set("resolve:x", 3)

	removed := c.DeletePrefix("resolve:a/b")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Size())

	_, ok := c.Get("resolve:x")
	assert.True(t, ok)
}

func TestCleanup(t *testing.T) {
	c := NewInMemory(time.Minute)
	c.SetWithTTL("dead", 1, -time.Second)
	c.Set("live", 2)

	c.Cleanup()
	assert.Equal(t, 1, c.Size())
}

func TestClear(t *testing.T) {
	c := NewInMemory(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Size())
}
