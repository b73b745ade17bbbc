// Package console renders one monitoring cycle as a colored ANSI report.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"homesoc/internal/collector"
	"homesoc/internal/engine"
	"homesoc/internal/snapshot"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

const barWidth = 30

// View bundles everything one render needs: the classified snapshot plus the
// raw facts for the gauges and the display-only login records.
type View struct {
	Snapshot snapshot.Snapshot
	Facts    *collector.Facts
	MinLevel engine.Level
	Interval time.Duration
}

// Print renders the full dashboard to the writer. Entries below the minimum
// level are hidden from display only; the persisted snapshot keeps them all.
func Print(w io.Writer, v View) {
	fmt.Fprintf(w, "%sHome-SOC Monitor%s\n", colorBold, colorReset)
	fmt.Fprintf(w, "Time: %s | Min level: %s | Interval: %ds | Security Score: %d/100\n",
		v.Snapshot.Timestamp, v.MinLevel, int(v.Interval.Seconds()), v.Snapshot.SecurityScore)
	fmt.Fprintln(w, strings.Repeat("-", 80))

	printSection(w, "Performance")
	printGauges(w, v)
	printEntries(w, v, func(metric string) bool {
		return metric == engine.MetricCPULoad || metric == engine.MetricMemoryUsedPct
	})

	printSection(w, "Top CPU Processes")
	printEntries(w, v, func(metric string) bool {
		return metric == engine.MetricProcessCPU
	})

	printSection(w, "Network Summary")
	printEntries(w, v, func(metric string) bool {
		return metric == engine.MetricListeningSockets || metric == engine.MetricEstablishedConns
	})

	printSection(w, "Auth & Security Events")
	printEntries(w, v, func(metric string) bool {
		switch metric {
		case engine.MetricFailedLogins, engine.MetricSuccessfulLogins,
			engine.MetricSudoCommands, engine.MetricAuthLog:
			return true
		}
		return false
	})

	if v.MinLevel <= engine.LevelInfo {
		printLogins(w, v.Facts)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "(Press Ctrl+C to exit)")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s== %s ==%s\n", colorCyan, title, colorReset)
}

func printEntries(w io.Writer, v View, match func(metric string) bool) {
	shown := 0
	for _, e := range engine.Filter(v.Snapshot.Entries, v.MinLevel) {
		if !match(e.Metric) {
			continue
		}
		tag := fmt.Sprintf("[%s] ", strings.ToUpper(e.Level.String()))
		fmt.Fprintf(w, "  %s%s%s%s\n", colorFor(e.Level), tag, colorReset, e.Message)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "  (no entries at this level)")
	}
}

// printGauges draws the CPU and memory bars from the raw facts. An
// unavailable probe simply skips its bar; the gap entry below explains it.
func printGauges(w io.Writer, v View) {
	if v.Facts == nil {
		return
	}
	if l := v.Facts.Load; l != nil {
		maxLoad := float64(l.Cores) * 2
		if maxLoad < 1 {
			maxLoad = 1
		}
		level := levelOf(v.Snapshot, engine.MetricCPULoad)
		drawBar(w, "CPU load", l.Load1, maxLoad, level)
	}
	if m := v.Facts.Memory; m != nil {
		level := levelOf(v.Snapshot, engine.MetricMemoryUsedPct)
		drawBar(w, "Memory %", m.UsedPct, 100.0, level)
	}
}

func printLogins(w io.Writer, facts *collector.Facts) {
	if facts == nil {
		return
	}
	printSection(w, "Recent Logins")
	if facts.Logins == nil || len(facts.Logins.Records) == 0 {
		fmt.Fprintln(w, "  (no data)")
		return
	}
	for _, rec := range facts.Logins.Records {
		fmt.Fprintf(w, "  %s\n", rec)
	}
}

func drawBar(w io.Writer, label string, value, maxValue float64, level engine.Level) {
	frac := 0.0
	if maxValue > 0 {
		frac = value / maxValue
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * barWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	fmt.Fprintf(w, "  %-12s [%s%s%s] %.1f/%.1f\n",
		label, colorFor(level), bar, colorReset, value, maxValue)
}

func levelOf(s snapshot.Snapshot, metric string) engine.Level {
	for _, e := range s.Entries {
		if e.Metric == metric {
			return e.Level
		}
	}
	return engine.LevelInfo
}

func colorFor(level engine.Level) string {
	switch level {
	case engine.LevelAlert:
		return colorRed
	case engine.LevelWarning:
		return colorYellow
	default:
		return colorGreen
	}
}
