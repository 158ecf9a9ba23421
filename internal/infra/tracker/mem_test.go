package tracker

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestMemInfractionStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemInfractionStore()

	c, err := s.Get(ctx, "g1", "bob")
	assert.NoError(err)
	assert.Equal(0, c)

	for k := 1; k <= 5; k++ {
		n, err := s.Increment(ctx, "g1", "bob")
		assert.NoError(err)
		assert.Equal(k, n)
	}
	c, _ = s.Get(ctx, "g1", "bob")
	assert.Equal(5, c)

	// guilds are independent
	c, _ = s.Get(ctx, "g2", "bob")
	assert.Equal(0, c)

	assert.NoError(s.Reset(ctx, "g1", "bob"))
	c, _ = s.Get(ctx, "g1", "bob")
	assert.Equal(0, c)
	assert.NoError(s.Reset(ctx, "g1", "nobody"))
}

func TestMemInfractionStoreCleanup(t *testing.T) {
	ctx := context.Background()
	s := NewMemInfractionStore()
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Increment(ctx, "g1", u)
		require.NoError(t, err)
	}
	_, _ = s.Increment(ctx, "g2", "a")

	removed, err := s.Cleanup(ctx, "g1", set("b", "zed"))
	require.NoError(t, err)
	sort.Strings(removed)
	assert.Equal(t, []string{"a", "c"}, removed)

	again, err := s.Cleanup(ctx, "g1", set("b", "zed"))
	require.NoError(t, err)
	assert.Empty(t, again)

	c, _ := s.Get(ctx, "g1", "b")
	assert.Equal(t, 1, c)
	c, _ = s.Get(ctx, "g2", "a")
	assert.Equal(t, 1, c)
}

func TestMemInfractionStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemInfractionStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := s.Increment(ctx, "g1", "bob")
				assert.NoError(t, err)
				_, _ = s.Get(ctx, "g1", "bob")
			}
		}()
	}
	wg.Wait()

	c, err := s.Get(ctx, "g1", "bob")
	assert.NoError(t, err)
	assert.Equal(t, 200, c)
}

func TestMemThrottleStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemThrottleStore()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	for k := 1; k <= 3; k++ {
		n, err := s.Bump(ctx, "bob", start.Add(time.Duration(k)*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, k, n)
	}
	_, _ = s.Bump(ctx, "old", start)

	n, err := s.Purge(ctx, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())

	// removal resets to absent, so the next bump starts again at 1
	require.NoError(t, s.Remove(ctx, "bob"))
	c, _ := s.Bump(ctx, "bob", start.Add(time.Hour))
	assert.Equal(t, 1, c)
}
