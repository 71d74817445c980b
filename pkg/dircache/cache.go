// Package dircache caches child-directory listings of the remote namespace.
// Entries are invalidated explicitly on structural mutation; there is no TTL.
package dircache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/visitlog-dev/visitlog/pkg/observability"
	"github.com/visitlog-dev/visitlog/pkg/pathutil"
	"github.com/visitlog-dev/visitlog/pkg/storage"
)

// Lister fetches child directories from the backend on a cache miss.
// *storage.Client satisfies it.
type Lister interface {
	ListChildDirs(ctx context.Context, path string) ([]storage.Folder, error)
}

// entry is one cached listing.
type entry struct {
	children  []storage.Folder
	fetchedAt time.Time
}

// Cache maps normalized path -> child folder descriptors.
// A read racing a concurrent invalidate may observe either the old or the
// new listing; it never observes a torn value. Cache is safe for
// concurrent use.
type Cache struct {
	lister  Lister
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache backed by the given lister.
func New(lister Lister) *Cache {
	return &Cache{
		lister:  lister,
		entries: make(map[string]entry),
	}
}

// Get returns the child directories of path, from cache when present.
// A population failure degrades to an empty listing so navigation keeps
// working through backend hiccups; the failure is logged, not cached, so
// the next call retries.
func (c *Cache) Get(ctx context.Context, path string) []storage.Folder {
	path = pathutil.Normalize(path)

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		observability.RecordCacheHit()
		return e.children
	}
	observability.RecordCacheMiss()

	children, err := c.lister.ListChildDirs(ctx, path)
	if err != nil {
		log.Printf("dircache: listing %s failed, serving empty: %v", path, err)
		return []storage.Folder{}
	}

	c.mu.Lock()
	c.entries[path] = entry{children: children, fetchedAt: time.Now()}
	c.mu.Unlock()
	return children
}

// Invalidate drops the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	path = pathutil.Normalize(path)
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	log.Printf("dircache: cleared")
}

// Len returns the number of cached listings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
