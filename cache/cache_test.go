package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	// No janitor; expiry is still enforced lazily on read.
	return NewWithSweepInterval(0)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("greeting", "hello", time.Minute)

	v, ok := s.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	_, ok := s.Get("absent")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("ephemeral", 42, 10*time.Millisecond)

	v, ok := s.Get("ephemeral")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	time.Sleep(20 * time.Millisecond)

	_, ok = s.Get("ephemeral")
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("pinned", "forever", 0)
	time.Sleep(10 * time.Millisecond)

	v, ok := s.Get("pinned")
	require.True(t, ok)
	assert.Equal(t, "forever", v)
}

func TestGetOrSetComputesOnce(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	v, err := s.GetOrSet("key", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = s.GetOrSet("key", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	assert.Equal(t, 1, calls)
}

func TestGetOrSetCoalescesConcurrentMisses(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	compute := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return "value", nil
	}

	const workers = 25
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]interface{}, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = s.GetOrSet("key", time.Minute, compute)
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "value", results[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrSetErrorNotCached(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	boom := errors.New("backend down")
	_, err := s.GetOrSet("key", time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// The failed compute must not have stored anything.
	v, err := s.GetOrSet("key", time.Minute, func() (interface{}, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestGetOrSetNilNotCached(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return nil, nil
	}

	v, err := s.GetOrSet("key", time.Minute, compute)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = s.GetOrSet("key", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDelWildcard(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("tracks:list:1", "a", time.Minute)
	s.Set("tracks:list:2", "b", time.Minute)
	s.Set("track:9", "c", time.Minute)

	removed := s.Del("tracks:list*")
	assert.Equal(t, 2, removed)

	_, ok := s.Get("track:9")
	assert.True(t, ok)
}

func TestDelExactKey(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("one", 1, time.Minute)

	assert.Equal(t, 1, s.Del("one"))
	assert.Equal(t, 0, s.Del("one"))
}

func TestInvalidateTracks(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set(KeyTracksList+":1:20", "page", time.Minute)
	s.Set(KeySearch+"beatles", "results", time.Minute)
	s.Set(KeyPodcastsList+":1:20", "podcasts", time.Minute)

	s.Invalidate("tracks")

	_, ok := s.Get(KeyTracksList + ":1:20")
	assert.False(t, ok)
	_, ok = s.Get(KeySearch + "beatles")
	assert.False(t, ok)
	_, ok = s.Get(KeyPodcastsList + ":1:20")
	assert.True(t, ok)
}

func TestInvalidateAll(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)

	s.Invalidate("all")

	assert.Equal(t, 0, s.Stats().Keys)
}

func TestInvalidateUnknownCategoryDeletesLiteralKey(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("genres", []string{"Jazz"}, time.Minute)

	s.Invalidate("genres")

	_, ok := s.Get("genres")
	assert.False(t, ok)
}

func TestStatsCounters(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("hit", 1, time.Minute)

	s.Get("hit")
	s.Get("miss")
	s.Get("miss")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestStatsCountersSurviveFlush(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("k", 1, time.Minute)
	s.Get("k")
	s.Flush()

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 0, stats.Keys)
}

func TestStatsExcludesExpiredKeys(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("short", 1, 5*time.Millisecond)
	s.Set("long", 2, time.Minute)

	time.Sleep(15 * time.Millisecond)

	assert.Equal(t, 1, s.Stats().Keys)
}

func TestJanitorSweepsExpiredEntries(t *testing.T) {
	s := NewWithSweepInterval(10 * time.Millisecond)
	defer s.Close()

	s.Set("gone", 1, time.Millisecond)

	assert.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		_, ok := s.entries["gone"]
		return !ok
	}, time.Second, 5*time.Millisecond)
}
