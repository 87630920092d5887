package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biffcrash1/image-viewer/cache/memory"
)

func newMemoryProvider(t *testing.T) Provider {
	provider, err := memory.NewMemory(memory.Config{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return provider
}

func TestMemorySetGetBytes(t *testing.T) {
	provider := newMemoryProvider(t)
	ctx := context.Background()

	err := provider.Set(ctx, "k", []byte("value"), time.Minute)
	require.NoError(t, err)

	var got []byte
	err = provider.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemorySetGetStruct(t *testing.T) {
	provider := newMemoryProvider(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	err := provider.Set(ctx, "k", payload{Name: "cat", Count: 2}, time.Minute)
	require.NoError(t, err)

	var got payload
	err = provider.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "cat", Count: 2}, got)
}

func TestMemoryMiss(t *testing.T) {
	provider := newMemoryProvider(t)

	var got []byte
	err := provider.Get(context.Background(), "absent", &got)
	require.Error(t, err)
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryDeleteAndExists(t *testing.T) {
	provider := newMemoryProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "k", []byte("v"), time.Minute))
	ok, err := provider.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, provider.Delete(ctx, "k"))
	ok, err = provider.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("image_list")
	assert.Equal(t, "image_list", kb.Build())
	assert.Equal(t, "image_list:3:abc", kb.Build("3", "abc"))
	assert.Equal(t, "image_list:42", kb.BuildID(42))

	custom := NewKeyBuilder("x").WithSeparator("/")
	assert.Equal(t, "x/a/b", custom.Build("a", "b"))
}

func TestIsCacheMiss(t *testing.T) {
	assert.True(t, IsCacheMiss(ErrCacheMiss))
	assert.True(t, IsCacheMiss(memory.ErrCacheMiss))
	assert.False(t, IsCacheMiss(nil))
	assert.False(t, IsCacheMiss(assert.AnError))
}
