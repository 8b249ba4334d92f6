package realtime

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Reaper bounds resource growth from abandoned connections by sweeping the
// activity tracker on a fixed tick and tearing down stale sessions.
type Reaper struct {
	cfg     Config
	log     *logrus.Logger
	manager *Manager
}

func NewReaper(cfg Config, log *logrus.Logger, manager *Manager) *Reaper {
	return &Reaper{cfg: cfg.withDefaults(), log: log, manager: manager}
}

// Start runs the sweep loop until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ReapInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}

// Sweep reclaims every session idle beyond the timeout and returns the count.
func (r *Reaper) Sweep(ctx context.Context) int {
	stale := r.manager.Activity().StaleIDs(r.cfg.IdleTimeout)
	for _, id := range stale {
		r.manager.Expire(ctx, id)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	r.log.WithFields(logrus.Fields{
		"reclaimed":    len(stale),
		"sessions":     r.manager.Sessions(),
		"heap_inuse_m": mem.HeapInuse >> 20,
	}).Info("idle sweep")
	return len(stale)
}
