// Package scheduler wires up the cron job that periodically geocodes and
// persists coordinates for entities that only carry location text.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"jobboard/geo-service/internal/proximity"
)

// Backfiller is the slice of proximity.Service the scheduler drives.
type Backfiller interface {
	Backfill(ctx context.Context) (proximity.BackfillReport, error)
}

// Scheduler wraps robfig/cron and manages the backfill loop. At most one
// pass runs at a time, whether started by a tick or by Start.
type Scheduler struct {
	cron    *cron.Cron
	svc     Backfiller
	spec    string // cron spec, e.g. "@every 6h"
	running sync.Mutex
	wg      sync.WaitGroup
}

// New creates a Scheduler that fires on the given cron schedule.
func New(svc Backfiller, spec string) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		svc:  svc,
		spec: spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one pass
// immediately so coordinates are cached without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop shuts down the scheduler and waits for any running pass, including
// the one started by Start, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

// RunOnce performs a single backfill pass and logs its report. It returns
// false without doing anything when another pass is still running.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.TryLock() {
		log.Println("[scheduler] Backfill still running, skipping")
		return false
	}
	defer s.running.Unlock()

	rep, err := s.svc.Backfill(ctx)
	if err != nil {
		log.Printf("[scheduler] Backfill error: %v", err)
		return true
	}
	log.Printf("[scheduler] Backfill complete: %d job(s), %d candidate(s) updated, %d unresolved, %d failed",
		rep.JobsUpdated, rep.CandidatesUpdated, rep.Unresolved, rep.Failed)
	return true
}
