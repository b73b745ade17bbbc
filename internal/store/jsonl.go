// Package store persists snapshots: append-only JSON Lines logs as the
// canonical record, plus an optional DuckDB mirror for trend queries.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"homesoc/internal/snapshot"
)

// Default log file names, shared with the web reader.
const (
	DefaultMetricsFile = "monitor_metrics.jsonl"
	DefaultAlertsFile  = "monitor_alerts.jsonl"
)

// JSONL appends snapshots and alert batches as one complete JSON line per
// record. The collector is the sole writer; concurrent readers see either a
// fully written line or, after a crash, at most one torn trailing line.
type JSONL struct {
	metricsPath string
	alertsPath  string
}

func NewJSONL(metricsPath, alertsPath string) *JSONL {
	if metricsPath == "" {
		metricsPath = DefaultMetricsFile
	}
	if alertsPath == "" {
		alertsPath = DefaultAlertsFile
	}
	return &JSONL{metricsPath: metricsPath, alertsPath: alertsPath}
}

func (s *JSONL) MetricsPath() string { return s.metricsPath }
func (s *JSONL) AlertsPath() string  { return s.alertsPath }

// AppendSnapshot appends one snapshot line to the metrics log.
func (s *JSONL) AppendSnapshot(snap snapshot.Snapshot) error {
	return appendLine(s.metricsPath, snap)
}

// AppendAlerts appends one batch line to the alerts log. Empty batches are
// never written.
func (s *JSONL) AppendAlerts(batch snapshot.AlertBatch) error {
	if len(batch.Alerts) == 0 {
		return nil
	}
	return appendLine(s.alertsPath, batch)
}

// appendLine marshals v and issues the whole line, terminator included, as a
// single Write on an O_APPEND descriptor. Readers doing whole-file reads can
// therefore only observe complete lines.
func appendLine(path string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	payload = append(payload, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

// TailSnapshots parses the last k complete snapshot lines of the metrics
// log, oldest first. A torn trailing line (crash mid-write) is ignored; a
// missing file yields an empty slice.
func (s *JSONL) TailSnapshots(k int) ([]snapshot.Snapshot, error) {
	lines, err := tailRecords(s.metricsPath, k)
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.Snapshot, 0, len(lines))
	for i, line := range lines {
		var snap snapshot.Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			if i == len(lines)-1 {
				continue // torn tail
			}
			return nil, fmt.Errorf("parse %s line: %w", s.metricsPath, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

// TailAlerts parses the last k complete alert batches, oldest first.
func (s *JSONL) TailAlerts(k int) ([]snapshot.AlertBatch, error) {
	lines, err := tailRecords(s.alertsPath, k)
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.AlertBatch, 0, len(lines))
	for i, line := range lines {
		var batch snapshot.AlertBatch
		if err := json.Unmarshal(line, &batch); err != nil {
			if i == len(lines)-1 {
				continue
			}
			return nil, fmt.Errorf("parse %s line: %w", s.alertsPath, err)
		}
		out = append(out, batch)
	}
	return out, nil
}

// tailRecords returns the raw last k non-empty lines of path, oldest first.
// The file may grow while scanning; anything appended after the open is
// simply picked up next read.
func tailRecords(path string, k int) ([][]byte, error) {
	if k <= 0 {
		k = 50
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ring := make([][]byte, 0, k)
	next := 0
	wrapped := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		if len(ring) < k {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % k
		wrapped = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if !wrapped {
		return ring, nil
	}
	ordered := make([][]byte, 0, k)
	ordered = append(ordered, ring[next:]...)
	ordered = append(ordered, ring[:next]...)
	return ordered, nil
}
