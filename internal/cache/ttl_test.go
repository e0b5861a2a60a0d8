package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int](WithNow(func() time.Time { return now }))

	c.Set("a", 1, time.Minute)
	c.Set("forever", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheMaxSize(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, string](WithNow(func() time.Time { return now }), WithMaxSize(2))

	c.Set("soon", "x", time.Second)
	c.Set("later", "y", time.Hour)
	c.Set("new", "z", time.Hour)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("soon")
	assert.False(t, ok)
	_, ok = c.Get("new")
	assert.True(t, ok)
}
