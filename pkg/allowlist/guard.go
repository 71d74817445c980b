// Package allowlist restricts navigation and mutation to a configured
// forest of allowed subtrees of the remote namespace.
package allowlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/visitlog-dev/visitlog/pkg/pathutil"
	"github.com/visitlog-dev/visitlog/pkg/storage"
)

var (
	// ErrAlreadyAllowed is returned when adding a path that is already listed.
	ErrAlreadyAllowed = errors.New("path is already in the allow-list")
	// ErrNotAllowed is returned when removing a path that is not listed.
	ErrNotAllowed = errors.New("path is not in the allow-list")
	// ErrNotFound is returned when adding a path that does not exist remotely.
	ErrNotFound = errors.New("path does not exist on the backend")
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("allow-list store is closed")
)

// ExistsChecker verifies a remote path exists before it can be allowed.
// *storage.Client satisfies it.
type ExistsChecker interface {
	PathExists(ctx context.Context, path string) (bool, error)
}

// Warmer pre-populates the directory cache for a newly allowed root.
// *dircache.Cache satisfies it.
type Warmer interface {
	Warm(ctx context.Context, root string) error
}

// Evictor drops the cache entry for a removed root.
// *dircache.Cache satisfies it.
type Evictor interface {
	Invalidate(path string)
}

// Guard holds the forest of allowed roots. An empty list authorizes
// everything (fail-open, intentional). Guard is safe for concurrent use.
type Guard struct {
	store   Store
	checker ExistsChecker
	warmer  Warmer
	evictor Evictor

	mu      sync.RWMutex
	entries []string
}

// NewGuard creates a guard and loads the initial list from the store.
// warmer and evictor may be nil; the corresponding cache hooks are skipped.
func NewGuard(store Store, checker ExistsChecker, warmer Warmer, evictor Evictor) (*Guard, error) {
	g := &Guard{store: store, checker: checker, warmer: warmer, evictor: evictor}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// IsAuthorized reports whether path is inside the allowed forest.
// Containment is prefix-with-boundary: entry "/Team" covers "/Team" and
// "/Team/Sub", never "/Team2".
func (g *Guard) IsAuthorized(path string) bool {
	g.mu.RLock()
	entries := g.entries
	g.mu.RUnlock()

	if len(entries) == 0 {
		return true
	}

	path = pathutil.Normalize(path)
	for _, entry := range entries {
		// The root entry covers the whole tree; the boundary check below
		// would build a "//" prefix that never matches.
		if entry == "/" {
			return true
		}
		if path == entry || strings.HasPrefix(path, entry+"/") {
			return true
		}
	}
	return false
}

// Entries returns a copy of the current allow-list.
func (g *Guard) Entries() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.entries))
	copy(out, g.entries)
	return out
}

// Folders returns the allow-list as folder descriptors, for presenting the
// roots as a navigable listing. The shape is the same one the storage
// client produces, so consumers never dispatch on the source.
func (g *Guard) Folders() []storage.Folder {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]storage.Folder, 0, len(g.entries))
	for _, entry := range g.entries {
		out = append(out, storage.Folder{Name: pathutil.Leaf(entry), Path: entry})
	}
	return out
}

// Add validates, verifies, persists, and installs a new allowed root.
// The cache warm for the new root is fire-and-forget: its failure is
// observable only in the log.
func (g *Guard) Add(ctx context.Context, path string) error {
	path = pathutil.Normalize(path)

	if path != "/" {
		for _, seg := range strings.Split(path[1:], "/") {
			if err := pathutil.ValidateSegment(seg); err != nil {
				return fmt.Errorf("invalid path %q: %w", path, err)
			}
		}
	}

	g.mu.RLock()
	present := contains(g.entries, path)
	g.mu.RUnlock()
	if present {
		return ErrAlreadyAllowed
	}

	exists, err := g.checker.PathExists(ctx, path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	g.mu.Lock()
	if contains(g.entries, path) {
		g.mu.Unlock()
		return ErrAlreadyAllowed
	}
	updated := append(append([]string{}, g.entries...), path)
	if err := g.store.Save(updated); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("persist allow-list: %w", err)
	}
	g.entries = updated
	g.mu.Unlock()

	log.Printf("allowlist: added %s (%d entries)", path, len(updated))

	if g.warmer != nil {
		go func() {
			if err := g.warmer.Warm(context.Background(), path); err != nil {
				log.Printf("allowlist: warm-up for %s failed: %v", path, err)
			}
		}()
	}
	return nil
}

// Remove deletes an allowed root, persists the list, and evicts the cache
// entry for that exact path.
func (g *Guard) Remove(path string) error {
	path = pathutil.Normalize(path)

	g.mu.Lock()
	idx := -1
	for i, entry := range g.entries {
		if entry == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		g.mu.Unlock()
		return ErrNotAllowed
	}

	updated := append(append([]string{}, g.entries[:idx]...), g.entries[idx+1:]...)
	if err := g.store.Save(updated); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("persist allow-list: %w", err)
	}
	g.entries = updated
	g.mu.Unlock()

	log.Printf("allowlist: removed %s (%d entries)", path, len(updated))

	if g.evictor != nil {
		g.evictor.Invalidate(path)
	}
	return nil
}

// Reload re-reads the list from the store, replacing in-memory state
// atomically: readers never see a half-updated list.
func (g *Guard) Reload() error {
	raw, err := g.store.Load()
	if err != nil {
		return fmt.Errorf("load allow-list: %w", err)
	}

	entries := make([]string, 0, len(raw))
	for _, p := range raw {
		entries = append(entries, pathutil.Normalize(p))
	}

	g.mu.Lock()
	g.entries = entries
	g.mu.Unlock()

	log.Printf("allowlist: loaded %d entries", len(entries))
	return nil
}

func contains(entries []string, path string) bool {
	for _, e := range entries {
		if e == path {
			return true
		}
	}
	return false
}
