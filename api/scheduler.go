/*
scheduler.go - Automated payout snapshot scheduler

PURPOSE:
  Periodically freezes the current payout run so the history of payouts
  can be compared over time without anyone pressing a button.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Each tick stores one snapshot labelled with the tick time
  - Skips the tick when the roster is empty
  - Failures are logged and retried on the next tick

CONFIGURATION:
  - Interval: How often to snapshot (scheduler.snapshot_interval)
  - Enabled:  Whether scheduler is active (interval > 0)

USAGE:
  scheduler := NewSnapshotScheduler(handler, time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateSnapshot endpoint (manual snapshot)
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/incentive-engine/store"
)

// snapshotTimeout bounds one scheduled snapshot.
const snapshotTimeout = 30 * time.Second

// SnapshotScheduler stores payout snapshots on a fixed interval.
type SnapshotScheduler struct {
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler. A non-positive interval
// disables it.
func NewSnapshotScheduler(h *Handler, interval time.Duration) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:  h,
		Interval: interval,
		Enabled:  interval > 0,
	}
}

// Start begins the scheduler.
func (ss *SnapshotScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		zap.L().Info("snapshot scheduler disabled")
		return
	}
	if ss.ticker != nil {
		return
	}

	ss.ticker = time.NewTicker(ss.Interval)
	ss.stop = make(chan struct{})
	ss.wg.Add(1)

	go ss.run(ss.ticker, ss.stop)

	zap.L().Info("snapshot scheduler started", zap.Duration("interval", ss.Interval))
}

// Stop stops the scheduler and waits for a running snapshot to finish.
func (ss *SnapshotScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker == nil {
		return
	}
	ss.ticker.Stop()
	close(ss.stop)
	ss.wg.Wait()
	ss.ticker = nil
	zap.L().Info("snapshot scheduler stopped")
}

func (ss *SnapshotScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ss.wg.Done()

	for {
		select {
		case <-ticker.C:
			ss.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow stores a snapshot immediately. It returns the zero Snapshot and
// false when the roster is empty or the snapshot failed.
func (ss *SnapshotScheduler) RunNow(ctx context.Context) (store.Snapshot, bool) {
	if len(ss.Handler.State().Employees) == 0 {
		zap.L().Debug("snapshot skipped, roster is empty")
		return store.Snapshot{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	label := "Scheduled run " + ss.Handler.now().UTC().Format("2006-01-02 15:04")
	snap, err := ss.Handler.snapshot(ctx, label)
	if err != nil {
		zap.L().Error("scheduled snapshot failed", zap.Error(err))
		return store.Snapshot{}, false
	}
	return snap, true
}

// NextRunTime returns when the next scheduled snapshot will occur.
func (ss *SnapshotScheduler) NextRunTime() time.Time {
	return ss.Handler.now().Add(ss.Interval)
}
