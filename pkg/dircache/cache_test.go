package dircache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlog-dev/visitlog/pkg/storage"
)

// countingLister serves canned listings and counts calls per path.
type countingLister struct {
	mu       sync.Mutex
	listings map[string][]storage.Folder
	errs     map[string]error
	calls    map[string]int
}

func newCountingLister() *countingLister {
	return &countingLister{
		listings: make(map[string][]storage.Folder),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (l *countingLister) ListChildDirs(ctx context.Context, path string) ([]storage.Folder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[path]++
	if err := l.errs[path]; err != nil {
		return nil, err
	}
	return l.listings[path], nil
}

func (l *countingLister) callCount(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[path]
}

func TestGetCachesListing(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/Projects"] = []storage.Folder{{Name: "Acme", Path: "/Projects/Acme"}}

	cache := New(lister)
	ctx := context.Background()

	first := cache.Get(ctx, "/Projects")
	second := cache.Get(ctx, "/Projects")
	third := cache.Get(ctx, "/Projects/")

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, lister.callCount("/Projects"), "one backend call until invalidated")
}

func TestGetAfterInvalidateRefetches(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/Projects"] = []storage.Folder{{Name: "Acme", Path: "/Projects/Acme"}}

	cache := New(lister)
	ctx := context.Background()

	cache.Get(ctx, "/Projects")
	cache.Invalidate("/Projects")
	cache.Get(ctx, "/Projects")

	assert.Equal(t, 2, lister.callCount("/Projects"))
}

func TestGetFailureDegradesToEmpty(t *testing.T) {
	lister := newCountingLister()
	lister.errs["/Projects"] = errors.New("backend down")

	cache := New(lister)
	got := cache.Get(context.Background(), "/Projects")
	assert.Empty(t, got)

	// Failures are not cached: the next call retries the backend.
	cache.Get(context.Background(), "/Projects")
	assert.Equal(t, 2, lister.callCount("/Projects"))
}

func TestClear(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/a"] = []storage.Folder{}
	lister.listings["/b"] = []storage.Folder{}

	cache := New(lister)
	ctx := context.Background()
	cache.Get(ctx, "/a")
	cache.Get(ctx, "/b")
	require.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestWarmAll(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/Team1"] = []storage.Folder{{Name: "Sub", Path: "/Team1/Sub"}}
	lister.listings["/Team2"] = []storage.Folder{}
	lister.errs["/Broken"] = errors.New("transient failure")

	cache := New(lister)
	stats := cache.WarmAll(context.Background(), []string{"/Team1", "/Team2", "/Broken"})

	assert.Equal(t, 2, stats.Warmed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, cache.Len())

	// Warmed entries serve from cache.
	cache.Get(context.Background(), "/Team1")
	assert.Equal(t, 1, lister.callCount("/Team1"))
}

func TestWarmAllEmptyRoots(t *testing.T) {
	cache := New(newCountingLister())
	stats := cache.WarmAll(context.Background(), nil)
	assert.Equal(t, WarmStats{}, stats)
}

func TestWarmSingleRoot(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/Team"] = []storage.Folder{{Name: "Sub", Path: "/Team/Sub"}}

	cache := New(lister)
	require.NoError(t, cache.Warm(context.Background(), "/Team"))
	assert.Equal(t, 1, cache.Len())

	lister.errs["/Nope"] = errors.New("boom")
	assert.Error(t, cache.Warm(context.Background(), "/Nope"))
}

func TestConcurrentAccess(t *testing.T) {
	lister := newCountingLister()
	lister.listings["/p"] = []storage.Folder{{Name: "x", Path: "/p/x"}}

	cache := New(lister)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cache.Get(ctx, "/p")
				if j%10 == 0 {
					cache.Invalidate("/p")
				}
			}
		}()
	}
	wg.Wait()
}
