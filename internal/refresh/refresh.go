// Package refresh periodically drops and rewarms the directory cache so
// listings never drift too far from the backend.
package refresh

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/visitlog-dev/visitlog/pkg/dircache"
)

// refreshTimeout bounds one full rewarm cycle.
const refreshTimeout = 5 * time.Minute

// RootSource yields the roots to rewarm. *allowlist.Guard satisfies it.
type RootSource interface {
	Entries() []string
}

// Scheduler refreshes the cache on a cron schedule. An empty schedule
// disables it.
type Scheduler struct {
	cache *dircache.Cache
	roots RootSource
	spec  string
	cron  *cron.Cron
}

// NewScheduler creates a scheduler; spec is a standard cron expression.
func NewScheduler(cache *dircache.Cache, roots RootSource, spec string) *Scheduler {
	return &Scheduler{
		cache: cache,
		roots: roots,
		spec:  spec,
		cron:  cron.New(),
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		log.Println("refresh: no schedule configured, periodic refresh disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("refresh: scheduled cache refresh (%s)", s.spec)
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.cache.Clear()
	stats := s.cache.WarmAll(ctx, s.roots.Entries())
	log.Printf("refresh: cache rewarmed (%d ok, %d failed)", stats.Warmed, stats.Failed)
}
