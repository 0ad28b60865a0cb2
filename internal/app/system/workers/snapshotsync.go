// internal/app/system/workers/snapshotsync.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Loader reads the full record store.
type Loader interface {
	Load(ctx context.Context) (scheduling.Snapshot, error)
}

// Source opens a stream of change signals. It is called once at Start.
type Source func(ctx context.Context) (<-chan struct{}, error)

// SnapshotSync is a background worker that reloads the record store whenever
// a change source signals and publishes the result on Updates. When no
// source can be opened it falls back to polling every pollInterval.
type SnapshotSync struct {
	loader       Loader
	sources      []Source
	pollInterval time.Duration
	log          *zap.Logger
	generation   func() uint64

	updates chan scheduling.Snapshot
	trigger chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewSnapshotSync creates a new snapshot sync worker.
//
// Parameters:
//   - loader: the record store
//   - logger: zap logger for logging
//   - pollInterval: reload period used only when no source opens (0 disables polling)
//   - sources: change signal streams, e.g. a change stream and the Redis bus
func NewSnapshotSync(loader Loader, logger *zap.Logger, pollInterval time.Duration, sources ...Source) *SnapshotSync {
	return &SnapshotSync{
		loader:       loader,
		sources:      sources,
		pollInterval: pollInterval,
		log:          logger,
		updates:      make(chan scheduling.Snapshot, 1),
		trigger:      make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
	}
}

// StampWith makes every reload carry gen(), read before the load, in
// Snapshot.Generation. Call it before Start.
func (w *SnapshotSync) StampWith(gen func() uint64) { w.generation = gen }

// Updates delivers reloaded snapshots. Only the latest unread snapshot is
// kept. The channel is closed by Stop.
func (w *SnapshotSync) Updates() <-chan scheduling.Snapshot { return w.updates }

// Start opens the change sources and begins the reload loop.
func (w *SnapshotSync) Start() {
	ctx, cancel := context.WithCancel(context.Background())

	opened := 0
	for _, src := range w.sources {
		ch, err := src(ctx)
		if err != nil {
			w.log.Warn("change source unavailable", zap.Error(err))
			continue
		}
		opened++
		w.wg.Add(1)
		go w.forward(ch)
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if opened == 0 && w.pollInterval > 0 {
		ticker = time.NewTicker(w.pollInterval)
		tick = ticker.C
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		if ticker != nil {
			defer ticker.Stop()
		}
		w.run(ctx, tick)
	}()

	w.log.Info("snapshot sync worker started",
		zap.Int("sources", opened),
		zap.Bool("polling", tick != nil),
		zap.Duration("poll_interval", w.pollInterval))
}

// Stop signals the worker to stop, waits for it to finish and closes Updates.
func (w *SnapshotSync) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		close(w.updates)
		w.log.Info("snapshot sync worker stopped")
	})
}

func (w *SnapshotSync) forward(ch <-chan struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		}
	}
}

func (w *SnapshotSync) run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.trigger:
			w.reload(ctx)
		case <-tick:
			w.reload(ctx)
		}
	}
}

func (w *SnapshotSync) reload(ctx context.Context) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), w.log, "reload snapshot")
	defer cancel()

	var gen uint64
	if w.generation != nil {
		gen = w.generation()
	}
	snap, err := w.loader.Load(ctx)
	if err != nil {
		w.log.Error("failed to reload record store", zap.Error(err))
		return
	}
	snap.Generation = gen
	w.publish(snap)
}

// publish replaces any unread snapshot with snap.
func (w *SnapshotSync) publish(snap scheduling.Snapshot) {
	for {
		select {
		case w.updates <- snap:
			return
		default:
			select {
			case <-w.updates:
			default:
			}
		}
	}
}
