package worker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"homesoc/internal/collector"
	"homesoc/internal/engine"
	"homesoc/internal/notify"
	"homesoc/internal/probe"
	"homesoc/internal/store"
)

type fixedProvider struct {
	facts *collector.Facts
}

func (f *fixedProvider) Collect(context.Context) *collector.Facts {
	return f.facts
}

type countingNotifier struct {
	mu    sync.Mutex
	sends [][]string
}

func (c *countingNotifier) Name() string { return "counting" }

func (c *countingNotifier) Send(_ context.Context, messages []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, append([]string(nil), messages...))
	return nil
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func calmFacts() *collector.Facts {
	return &collector.Facts{
		Load:    &probe.LoadFacts{Load1: 0.2, Load5: 0.1, Load15: 0.1, Cores: 4},
		Memory:  &probe.MemoryFacts{UsedPct: 35.0, TotalMB: 8192, UsedMB: 2867},
		Process: &probe.ProcessFacts{},
		Network: &probe.NetworkFacts{ListeningSockets: 8, Established: 3},
		Auth:    &probe.AuthFacts{LogPath: "/var/log/auth.log", WindowLines: 300},
	}
}

func hostileFacts() *collector.Facts {
	f := calmFacts()
	f.Auth.FailedLogins = 25
	return f
}

func newTestWorker(t *testing.T, provider collector.FactsProvider, notifier notify.Notifier) (*Worker, *store.JSONL) {
	t.Helper()
	dir := t.TempDir()
	s := store.NewJSONL(filepath.Join(dir, "metrics.jsonl"), filepath.Join(dir, "alerts.jsonl"))
	w, err := New(Options{
		Provider:   provider,
		Table:      engine.DefaultTable(),
		Store:      s,
		Dispatcher: notify.NewDispatcher(quietLogger(), notifier),
		Interval:   time.Hour,
		Log:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, s
}

func TestCyclePersistsSnapshot(t *testing.T) {
	w, s := newTestWorker(t, &fixedProvider{facts: calmFacts()}, &countingNotifier{})

	snap, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if snap.SecurityScore != 100 {
		t.Errorf("calm host score = %d, want 100", snap.SecurityScore)
	}

	got, err := s.TailSnapshots(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("persisted %d snapshots, want 1", len(got))
	}
	if got[0].SecurityScore != snap.SecurityScore {
		t.Errorf("persisted score %d != returned %d", got[0].SecurityScore, snap.SecurityScore)
	}
}

func TestCyclePersistsAlertsAndNotifies(t *testing.T) {
	notifier := &countingNotifier{}
	w, s := newTestWorker(t, &fixedProvider{facts: hostileFacts()}, notifier)

	snap, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.SecurityScore != 85 {
		t.Errorf("score = %d, want 85 (one alert)", snap.SecurityScore)
	}

	batches, err := s.TailAlerts(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || len(batches[0].Alerts) != 1 {
		t.Fatalf("alert log = %+v, want one batch with one alert", batches)
	}
	if notifier.count() != 1 {
		t.Errorf("notifier fired %d times, want 1", notifier.count())
	}
}

func TestRepeatedCycleDoesNotRenotify(t *testing.T) {
	notifier := &countingNotifier{}
	w, _ := newTestWorker(t, &fixedProvider{facts: hostileFacts()}, notifier)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := w.RunOnce(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if notifier.count() != 1 {
		t.Errorf("notifier fired %d times across identical cycles, want 1", notifier.count())
	}
}

func TestCalmCycleWritesNoAlertLine(t *testing.T) {
	w, s := newTestWorker(t, &fixedProvider{facts: calmFacts()}, &countingNotifier{})

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.AlertsPath()); !os.IsNotExist(err) {
		t.Error("calm cycle must not touch the alerts log")
	}
}

func TestGapCycleStillProducesSnapshot(t *testing.T) {
	facts := calmFacts()
	facts.Auth = nil
	facts.Gaps = []collector.Gap{{Source: "auth_log", Reason: "probe source unavailable"}}
	w, _ := newTestWorker(t, &fixedProvider{facts: facts}, &countingNotifier{})

	snap, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.SecurityScore != 100 {
		t.Errorf("gap must not cost score, got %d", snap.SecurityScore)
	}

	found := false
	for _, e := range snap.Entries {
		if e.Metric == engine.MetricAuthLog && e.Level == engine.LevelInfo {
			found = true
		}
	}
	if !found {
		t.Error("gap cycle missing info-level auth_log entry")
	}
}

// gateProvider blocks in Collect until released, reporting all-gap facts if
// its context was cancelled while it waited.
type gateProvider struct {
	started chan struct{}
	release chan struct{}
}

func (p *gateProvider) Collect(ctx context.Context) *collector.Facts {
	close(p.started)
	<-p.release
	if ctx.Err() != nil {
		return &collector.Facts{Gaps: []collector.Gap{{Source: "load", Reason: ctx.Err().Error()}}}
	}
	return calmFacts()
}

func TestShutdownDoesNotCancelInFlightCycle(t *testing.T) {
	provider := &gateProvider{started: make(chan struct{}), release: make(chan struct{})}
	w, s := newTestWorker(t, provider, &countingNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	<-provider.started
	cancel() // shutdown lands while the first cycle is mid-collect
	close(provider.release)
	w.Stop()

	got, err := s.TailSnapshots(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("persisted %d snapshots, want 1", len(got))
	}
	if got[0].SecurityScore != 100 {
		t.Errorf("score = %d, want 100 (in-flight cycle must finish undisturbed)", got[0].SecurityScore)
	}
	for _, e := range got[0].Entries {
		if v, ok := e.Value.(string); ok && v == "unavailable" {
			t.Errorf("shutdown mid-cycle degraded %s to a gap entry", e.Metric)
		}
	}
}

// stallingNotifier hangs until its context expires, like a black-holed
// transport endpoint.
type stallingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (s *stallingNotifier) Name() string { return "stalling" }

func (s *stallingNotifier) Send(ctx context.Context, _ []string) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (s *stallingNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestHungNotifierDoesNotStallCycle(t *testing.T) {
	notifier := &stallingNotifier{}
	dir := t.TempDir()
	s := store.NewJSONL(filepath.Join(dir, "metrics.jsonl"), filepath.Join(dir, "alerts.jsonl"))
	w, err := New(Options{
		Provider:   &fixedProvider{facts: hostileFacts()},
		Table:      engine.DefaultTable(),
		Store:      s,
		Dispatcher: notify.NewDispatcher(quietLogger(), notifier),
		Interval:   100 * time.Millisecond,
		Log:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("cycle took %v behind a hung notifier, want the dispatch deadline to cut it off", elapsed)
	}
	if notifier.count() != 1 {
		t.Errorf("notifier attempted %d times, want 1", notifier.count())
	}

	got, err := s.TailSnapshots(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal("snapshot must be persisted even when notification hangs")
	}
}

func TestStartStopRunsCycles(t *testing.T) {
	notifier := &countingNotifier{}
	w, s := newTestWorker(t, &fixedProvider{facts: calmFacts()}, notifier)

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("second Start must fail while running")
	}

	// The first cycle runs immediately; poll briefly for its write.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := s.TailSnapshots(1); len(got) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	w.Stop()

	got, err := s.TailSnapshots(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Error("no snapshot persisted before Stop")
	}
}

func TestNewRejectsInvalidTable(t *testing.T) {
	table := engine.DefaultTable()
	table.FailedLogins = engine.Breakpoints{Warning: 20, Alert: 5}

	_, err := New(Options{
		Provider:   &fixedProvider{facts: calmFacts()},
		Table:      table,
		Store:      store.NewJSONL("m.jsonl", "a.jsonl"),
		Dispatcher: notify.NewDispatcher(quietLogger()),
	})
	if err == nil {
		t.Fatal("contradictory table must be rejected at construction")
	}
}
