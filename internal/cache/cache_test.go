package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)

	c.Set("k", []byte("value"), 0)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	// Returned slices are copies.
	got[0] = 'V'
	again, _ := c.Get("k")
	assert.Equal(t, []byte("value"), again)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)
	c.Set("short", []byte("x"), 20*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestMemory_DeleteClear(t *testing.T) {
	c := NewMemory(0, time.Minute)
	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("analyze", "x"), Key("analyze", "x"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Contains(t, Key("x"), "objectify:v1:")
}
