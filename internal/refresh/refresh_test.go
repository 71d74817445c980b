package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlog-dev/visitlog/pkg/dircache"
	"github.com/visitlog-dev/visitlog/pkg/storage"
)

type staticRoots []string

func (r staticRoots) Entries() []string { return r }

func TestEmptyScheduleIsDisabled(t *testing.T) {
	backend := storage.NewMockBackend()
	client := storage.NewClient(backend, storage.ClientConfig{RetryDelay: time.Millisecond})
	cache := dircache.New(client)

	s := NewScheduler(cache, staticRoots{}, "")
	require.NoError(t, s.Start())
	s.Stop()
}

func TestInvalidScheduleRejected(t *testing.T) {
	backend := storage.NewMockBackend()
	client := storage.NewClient(backend, storage.ClientConfig{RetryDelay: time.Millisecond})
	cache := dircache.New(client)

	s := NewScheduler(cache, staticRoots{"/Projects"}, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestRefreshClearsAndRewarms(t *testing.T) {
	backend := storage.NewMockBackend()
	backend.AddDir("/Projects/Acme")
	client := storage.NewClient(backend, storage.ClientConfig{RetryDelay: time.Millisecond})
	cache := dircache.New(client)

	s := NewScheduler(cache, staticRoots{"/Projects"}, "@hourly")

	s.refresh()
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, backend.Calls["list"])

	// A second cycle drops the entry and lists again.
	s.refresh()
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 2, backend.Calls["list"])
}
