package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scriptbridge/catalog"
)

func TestCachePutAndLookup(t *testing.T) {
	r := catalog.NewRegistry()
	e, err := r.AddFunction(catalog.EntryMeta{}, catalog.CallableMember{Name: "PrintString"})
	require.NoError(t, err)

	c := NewCache()
	require.NoError(t, c.Put("SystemLibrary::PrintString", e))

	got, ok := c.Lookup("SystemLibrary::PrintString")
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	r := catalog.NewRegistry()
	e, err := r.AddFunction(catalog.EntryMeta{}, catalog.CallableMember{Name: "F"})
	require.NoError(t, err)

	c := NewCache()
	assert.Error(t, c.Put("", e))
	assert.Error(t, c.Put("key", nil))
	assert.Equal(t, 0, c.Len())
}

func TestCacheSelfHealsOnDeadEntry(t *testing.T) {
	r := catalog.NewRegistry()
	e, err := r.AddFunction(catalog.EntryMeta{}, catalog.CallableMember{Name: "PrintString"})
	require.NoError(t, err)

	c := NewCache()
	var evicted []string
	c.SetEvictionHook(func(key string) { evicted = append(evicted, key) })
	require.NoError(t, c.Put("PrintString", e))

	// Host destroys the entry between calls
	r.Remove(e)

	_, ok := c.Lookup("PrintString")
	assert.False(t, ok, "dead entry must not be dereferenced")
	assert.Equal(t, 0, c.Len(), "stale mapping must be removed")
	assert.Equal(t, []string{"PrintString"}, evicted)

	// Second lookup is a clean miss, not a second eviction
	_, ok = c.Lookup("PrintString")
	assert.False(t, ok)
	assert.Len(t, evicted, 1)
}

func TestCacheRefreshAfterRediscovery(t *testing.T) {
	r := catalog.NewRegistry()
	old, err := r.AddFunction(catalog.EntryMeta{}, catalog.CallableMember{Name: "PrintString"})
	require.NoError(t, err)

	c := NewCache()
	require.NoError(t, c.Put("PrintString", old))
	r.Remove(old)

	// Rediscovery repopulates the same key with the new backing entry
	fresh, err := r.AddFunction(catalog.EntryMeta{}, catalog.CallableMember{Name: "PrintString"})
	require.NoError(t, err)
	require.NoError(t, c.Put("PrintString", fresh))

	got, ok := c.Lookup("PrintString")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}
