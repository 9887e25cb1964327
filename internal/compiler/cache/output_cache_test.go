package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputCache(t *testing.T) {
	oc := NewOutputCache()
	assert.Equal(t, 0, oc.Size())
	assert.False(t, oc.Fresh("shapes", "h1"))

	oc.Set("shapes", "h1", []byte("package shapes"))
	entry, ok := oc.Get("shapes")
	require.True(t, ok)
	assert.Equal(t, "package shapes", string(entry.Output))
	assert.True(t, oc.Fresh("shapes", "h1"))
	assert.False(t, oc.Fresh("shapes", "h2"))

	oc.Set("zoo", "h9", nil)
	assert.Equal(t, 2, oc.Size())

	oc.Invalidate("shapes")
	_, ok = oc.Get("shapes")
	assert.False(t, ok)
	assert.Equal(t, 1, oc.Size())
}
