// Package worker drives the monitoring loop: collect facts, classify them,
// score the cycle, persist the snapshot, and dispatch notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homesoc/internal/collector"
	"homesoc/internal/engine"
	"homesoc/internal/notify"
	"homesoc/internal/snapshot"
	"homesoc/internal/store"
)

const defaultInterval = 60 * time.Second

// Worker orchestrates the pipeline: Collector -> Engine -> Store -> Notify.
type Worker struct {
	provider   collector.FactsProvider
	table      engine.Table
	store      *store.JSONL
	history    *store.History
	dispatcher *notify.Dispatcher
	interval   time.Duration
	log        logrus.FieldLogger
	onSnapshot func(snapshot.Snapshot, *collector.Facts)

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// Options configures a Worker. Provider, Store, and Dispatcher are required;
// History is an optional mirror and OnSnapshot an optional render hook.
type Options struct {
	Provider   collector.FactsProvider
	Table      engine.Table
	Store      *store.JSONL
	History    *store.History
	Dispatcher *notify.Dispatcher
	Interval   time.Duration
	Log        logrus.FieldLogger
	OnSnapshot func(snapshot.Snapshot, *collector.Facts)
}

func New(opts Options) (*Worker, error) {
	if opts.Provider == nil || opts.Store == nil || opts.Dispatcher == nil {
		return nil, errors.New("provider, store, and dispatcher are required")
	}
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Worker{
		provider:   opts.Provider,
		table:      opts.Table,
		store:      opts.Store,
		history:    opts.History,
		dispatcher: opts.Dispatcher,
		interval:   opts.Interval,
		log:        opts.Log,
		onSnapshot: opts.OnSnapshot,
	}, nil
}

// Start begins the periodic monitoring loop. The first cycle runs
// immediately; subsequent cycles fire on the interval.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("worker already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
// Cancellation lands at a cycle boundary, never mid-persist.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.running = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// RunOnce executes a single cycle immediately and returns its snapshot.
func (w *Worker) RunOnce(ctx context.Context) (snapshot.Snapshot, error) {
	return w.Cycle(ctx)
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes one cycle on a context detached from the loop's
// cancellation. Shutdown is observed only by the select above, so an
// in-flight cycle always runs its probes and persists a full snapshot
// instead of a degraded all-gaps one. The per-probe deadline and the
// dispatch bound inside Cycle keep the detached cycle finite.
func (w *Worker) runCycle(ctx context.Context) {
	if _, err := w.Cycle(context.WithoutCancel(ctx)); err != nil {
		w.log.WithError(err).Error("monitoring cycle failed")
	}
}

// Cycle runs the full pipeline once. Probe failures have already been folded
// into gap entries by the collector; the only errors surfaced here are
// persistence failures, which abort the cycle before any notification.
func (w *Worker) Cycle(ctx context.Context) (snapshot.Snapshot, error) {
	started := time.Now()

	facts := w.provider.Collect(ctx)
	events := engine.Evaluate(facts, w.table)
	score := engine.Score(events, w.table.Weights)
	snap := snapshot.Assemble(started, score, events)

	if err := w.store.AppendSnapshot(snap); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("persist snapshot: %w", err)
	}
	if batch, ok := snap.Alerts(); ok {
		if err := w.store.AppendAlerts(batch); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("persist alerts: %w", err)
		}
	}

	// The history mirror is advisory: the JSONL logs stay canonical and a
	// mirror failure must not block notification.
	if w.history != nil {
		if err := w.history.Insert(ctx, snap); err != nil {
			w.log.WithError(err).Warn("history mirror insert failed")
		}
	}

	// Dispatch runs every cycle, alerts or not, so the dedup state always
	// reflects the latest set. The deadline keeps a hung transport from
	// stalling the single-threaded sampling loop.
	notifyCtx, cancel := context.WithTimeout(ctx, w.interval)
	w.dispatcher.Dispatch(notifyCtx, snap.AlertMessages())
	cancel()

	w.log.WithFields(logrus.Fields{
		"score":    snap.SecurityScore,
		"entries":  len(snap.Entries),
		"alerts":   len(snap.AlertMessages()),
		"gaps":     len(facts.Gaps),
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("cycle complete")

	if w.onSnapshot != nil {
		w.onSnapshot(snap, facts)
	}
	return snap, nil
}
