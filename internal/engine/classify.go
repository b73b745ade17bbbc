package engine

import (
	"fmt"

	"homesoc/internal/collector"
)

// Metric identifiers persisted in snapshot entries.
const (
	MetricCPULoad          = "cpu_load"
	MetricMemoryUsedPct    = "memory_used_pct"
	MetricProcessCPU       = "process_cpu"
	MetricListeningSockets = "listening_sockets"
	MetricEstablishedConns = "established_connections"
	MetricFailedLogins     = "failed_logins"
	MetricSuccessfulLogins = "successful_logins"
	MetricSudoCommands     = "sudo_commands"
	MetricAuthLog          = "auth_log"
)

// Evaluate classifies one cycle's facts against the threshold table. The
// returned events keep probe evaluation order: performance, processes,
// network, auth. An unavailable source yields a single info event marking the
// gap, so a cycle always produces a full event set.
func Evaluate(facts *collector.Facts, table Table) []Event {
	var events []Event

	// Performance
	if facts.Load != nil {
		l := facts.Load
		bp := Breakpoints{
			Warning: table.CPULoadPerCore.Warning * float64(l.Cores),
			Alert:   table.CPULoadPerCore.Alert * float64(l.Cores),
		}
		events = append(events, Event{
			Level:  bp.Classify(l.Load1),
			Metric: MetricCPULoad,
			Value:  l.Load1,
			Message: fmt.Sprintf("Load avg (1/5/15): %.2f, %.2f, %.2f | Cores: %d",
				l.Load1, l.Load5, l.Load15, l.Cores),
		})
	} else {
		events = append(events, gapEvent(facts, "load", MetricCPULoad))
	}

	if facts.Memory != nil {
		m := facts.Memory
		events = append(events, Event{
			Level:  table.MemoryUsedPct.Classify(m.UsedPct),
			Metric: MetricMemoryUsedPct,
			Value:  m.UsedPct,
			Message: fmt.Sprintf("Memory: %.0f/%.0f MB used (%.1f%%)",
				m.UsedMB, m.TotalMB, m.UsedPct),
		})
	} else {
		events = append(events, gapEvent(facts, "memory", MetricMemoryUsedPct))
	}

	// Processes: every top-N entry is classified independently.
	if facts.Process != nil {
		for _, p := range facts.Process.Processes {
			events = append(events, Event{
				Level:  table.ProcessCPU.Classify(p.CPU),
				Metric: MetricProcessCPU,
				Value:  p.CPU,
				Message: fmt.Sprintf("PID %6d | %-20s | CPU: %5.1f%% | MEM: %5.1f%%",
					p.PID, p.Name, p.CPU, p.Memory),
			})
		}
	} else {
		events = append(events, gapEvent(facts, "process", MetricProcessCPU))
	}

	// Network
	if facts.Network != nil {
		n := facts.Network
		events = append(events, Event{
			Level:   LevelInfo,
			Metric:  MetricListeningSockets,
			Value:   float64(n.ListeningSockets),
			Message: fmt.Sprintf("Listening sockets: %d", n.ListeningSockets),
		})
		events = append(events, Event{
			Level:   table.EstablishedConns.Classify(float64(n.Established)),
			Metric:  MetricEstablishedConns,
			Value:   float64(n.Established),
			Message: fmt.Sprintf("Established TCP/UDP connections: %d", n.Established),
		})
	} else {
		events = append(events, gapEvent(facts, "network", MetricEstablishedConns))
	}

	// Auth
	if facts.Auth != nil {
		a := facts.Auth
		if a.FailedLogins > 0 {
			events = append(events, Event{
				Level:  table.FailedLogins.Classify(float64(a.FailedLogins)),
				Metric: MetricFailedLogins,
				Value:  float64(a.FailedLogins),
				Message: fmt.Sprintf("Recent failed login attempts: %d (last %d lines)",
					a.FailedLogins, a.WindowLines),
			})
		}
		if a.AcceptedLogins > 0 {
			events = append(events, Event{
				Level:  LevelInfo,
				Metric: MetricSuccessfulLogins,
				Value:  float64(a.AcceptedLogins),
				Message: fmt.Sprintf("Recent successful logins: %d (last %d lines)",
					a.AcceptedLogins, a.WindowLines),
			})
		}
		if a.SudoCommands > 0 {
			events = append(events, Event{
				Level:  LevelInfo,
				Metric: MetricSudoCommands,
				Value:  float64(a.SudoCommands),
				Message: fmt.Sprintf("Recent sudo commands: %d (last %d lines)",
					a.SudoCommands, a.WindowLines),
			})
		}
	} else {
		events = append(events, gapEvent(facts, "auth_log", MetricAuthLog))
	}

	return events
}

// gapEvent renders an unavailable source as an info event carrying the gap
// reason. It contributes zero score penalty.
func gapEvent(facts *collector.Facts, source, metric string) Event {
	reason := "unavailable"
	for _, g := range facts.Gaps {
		if g.Source == source {
			reason = g.Reason
			break
		}
	}
	return Event{
		Level:   LevelInfo,
		Metric:  metric,
		Value:   "unavailable",
		Message: fmt.Sprintf("%s unavailable: %s", source, reason),
	}
}
