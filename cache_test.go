package atelier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCacheHitAndMiss(t *testing.T) {
	c := NewMemoryCache(8, time.Minute)
	ctx := context.Background()
	loads := 0
	load := func() ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	v, err := cached(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	v, err = cached(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, 1, loads)

	c.Invalidate(ctx)
	_, err = cached(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestContentCacheDoesNotStoreErrors(t *testing.T) {
	c := NewMemoryCache(8, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := cached(ctx, c, "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := cached(ctx, c, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestContentCacheExpires(t *testing.T) {
	c := NewMemoryCache(8, 20*time.Millisecond)
	ctx := context.Background()
	loads := 0
	load := func() (int, error) { loads++; return loads, nil }

	_, _ = cached(ctx, c, "k", load)
	time.Sleep(60 * time.Millisecond)
	v, err := cached(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestContentCacheMutationDuringLoad(t *testing.T) {
	c := NewMemoryCache(8, time.Minute)
	ctx := context.Background()
	loads := 0

	_, err := cached(ctx, c, "k", func() (int, error) {
		loads++
		c.Invalidate(ctx)
		return 1, nil
	})
	require.NoError(t, err)
	_, err = cached(ctx, c, "k", func() (int, error) { loads++; return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "a value loaded across an invalidation is not stored")
}

func TestNilContentCache(t *testing.T) {
	var c *ContentCache
	ctx := context.Background()
	c.Invalidate(ctx)

	loads := 0
	for i := 0; i < 2; i++ {
		_, err := cached(ctx, c, "k", func() (int, error) { loads++; return 0, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loads)
}
