package dircache

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/visitlog-dev/visitlog/pkg/observability"
	"github.com/visitlog-dev/visitlog/pkg/pathutil"
)

// warmConcurrency bounds how many roots are fetched in parallel.
const warmConcurrency = 4

// WarmStats reports the outcome of a warm-up pass.
type WarmStats struct {
	Warmed int
	Failed int
}

// Warm populates the cache entry for a single root.
func (c *Cache) Warm(ctx context.Context, root string) error {
	path := pathutil.Normalize(root)
	children, err := c.lister.ListChildDirs(ctx, path)
	if err != nil {
		observability.RecordCacheWarmRoot("error")
		return err
	}
	c.mu.Lock()
	c.entries[path] = entry{children: children, fetchedAt: time.Now()}
	c.mu.Unlock()
	observability.RecordCacheWarmRoot("ok")
	return nil
}

// WarmAll eagerly populates the cache for every given root, continuing past
// individual failures. Used at startup and after allow-list edits.
func (c *Cache) WarmAll(ctx context.Context, roots []string) WarmStats {
	if len(roots) == 0 {
		log.Printf("dircache: no roots to warm")
		return WarmStats{}
	}

	start := time.Now()
	results := make([]bool, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			path := pathutil.Normalize(root)
			children, err := c.lister.ListChildDirs(gctx, path)
			if err != nil {
				log.Printf("dircache: warming %s failed: %v", path, err)
				observability.RecordCacheWarmRoot("error")
				return nil
			}
			c.mu.Lock()
			c.entries[path] = entry{children: children, fetchedAt: time.Now()}
			c.mu.Unlock()
			results[i] = true
			observability.RecordCacheWarmRoot("ok")
			return nil
		})
	}
	_ = g.Wait()

	stats := WarmStats{}
	for _, ok := range results {
		if ok {
			stats.Warmed++
		} else {
			stats.Failed++
		}
	}
	log.Printf("dircache: warmed %d/%d roots in %v", stats.Warmed, len(roots), time.Since(start))
	return stats
}
