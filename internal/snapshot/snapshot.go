// Package snapshot defines the immutable per-cycle record and the alert
// subset derived from it.
package snapshot

import (
	"time"

	"homesoc/internal/engine"
)

// TimeFormat is the local-time layout persisted in both log files.
const TimeFormat = "2006-01-02 15:04:05"

// Snapshot is the unit of persistence and display for one sampling cycle.
// It is never mutated after assembly; the next cycle supersedes it.
type Snapshot struct {
	Timestamp     string         `json:"timestamp"`
	SecurityScore int            `json:"security_score"`
	Entries       []engine.Event `json:"entries"`
}

// AlertBatch is the subset of a snapshot's entries at alert level. The
// message text is the persisted identity used for deduplication.
type AlertBatch struct {
	Timestamp string   `json:"timestamp"`
	Alerts    []string `json:"alerts"`
}

// Assemble combines a cycle's classified events and score into a snapshot.
// Entry order is preserved exactly as classified (probe evaluation order),
// never re-sorted by severity.
func Assemble(ts time.Time, score int, entries []engine.Event) Snapshot {
	return Snapshot{
		Timestamp:     ts.Format(TimeFormat),
		SecurityScore: score,
		Entries:       entries,
	}
}

// AlertMessages returns the messages of all alert-level entries in order.
func (s Snapshot) AlertMessages() []string {
	var msgs []string
	for _, e := range s.Entries {
		if e.Level == engine.LevelAlert {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Alerts builds the alert batch for the cycle. ok is false when the cycle
// produced no alert-level entries; such batches are never persisted.
func (s Snapshot) Alerts() (AlertBatch, bool) {
	msgs := s.AlertMessages()
	if len(msgs) == 0 {
		return AlertBatch{}, false
	}
	return AlertBatch{Timestamp: s.Timestamp, Alerts: msgs}, true
}

// MetricValue extracts the numeric value of the first entry with the given
// metric id, for flattened chart series. ok is false when the metric is
// absent or non-numeric (e.g. a gap marker).
func (s Snapshot) MetricValue(metric string) (float64, bool) {
	for _, e := range s.Entries {
		if e.Metric != metric {
			continue
		}
		switch v := e.Value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
		return 0, false
	}
	return 0, false
}
