package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiscout-mcp/pkg/scout"
)

func TestResultCache(t *testing.T) {
	c, err := NewResultCache(2)
	require.NoError(t, err)

	c.Put(&scout.Result{EndpointKey: "users"})
	c.Put(&scout.Result{EndpointKey: "orders"})

	got, ok := c.Get("users")
	require.True(t, ok)
	assert.Equal(t, "users", got.EndpointKey)

	// users was just read, so orders is evicted.
	c.Put(&scout.Result{EndpointKey: "items"})
	_, ok = c.Get("orders")
	assert.False(t, ok)
	assert.Equal(t, []string{"users", "items"}, c.Keys())

	c.Invalidate("users")
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestResultCache_Replace(t *testing.T) {
	c, err := NewResultCache(4)
	require.NoError(t, err)

	first := &scout.Result{EndpointKey: "users"}
	second := &scout.Result{EndpointKey: "users"}
	c.Put(first)
	c.Put(second)

	got, ok := c.Get("users")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.Len())
}

func TestNewResultCache_InvalidSize(t *testing.T) {
	_, err := NewResultCache(0)
	assert.Error(t, err)
}
