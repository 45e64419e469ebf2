package reconciler

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Runner drives the reconciler on a fixed interval. At most one cycle is
// ever in flight; ticks that fire while a cycle is running are dropped.
type Runner struct {
	reconciler *Reconciler
	interval   time.Duration
	busy       atomic.Bool
}

func NewRunner(r *Reconciler, interval time.Duration) *Runner {
	return &Runner{reconciler: r, interval: interval}
}

// Start blocks until ctx is cancelled, firing a cycle every interval.
func (r *Runner) Start(ctx context.Context) {
	log.Printf("INFO (Reconciler): polling every %s", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO (Reconciler): runner stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if !r.busy.CompareAndSwap(false, true) {
		log.Println("WARN (Reconciler): previous cycle still running, dropping tick")
		return
	}

	go func() {
		defer r.busy.Store(false)
		if err := r.reconciler.RunCycle(ctx); err != nil {
			log.Printf("ERROR (Reconciler): poll cycle failed: %v", err)
		}
	}()
}
