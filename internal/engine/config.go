package engine

import "fmt"

// Breakpoints defines the warning and alert levels for a metric. A value
// exactly equal to a breakpoint classifies at that breakpoint's severity.
type Breakpoints struct {
	Warning float64
	Alert   float64
}

// Classify maps a value to a level. Ties resolve to the higher severity so
// the policy stays monotonic at exact boundaries.
func (b Breakpoints) Classify(value float64) Level {
	switch {
	case value >= b.Alert:
		return LevelAlert
	case value >= b.Warning:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// Weights are the score subtractions per event at each severity.
type Weights struct {
	Warning int
	Alert   int
}

// Table is the process-wide threshold configuration. It is loaded once at
// startup and read-only afterwards.
type Table struct {
	// CPULoadPerCore breakpoints are multiplied by the logical core count
	// before comparing against the 1-minute load average.
	CPULoadPerCore   Breakpoints
	MemoryUsedPct    Breakpoints
	ProcessCPU       Breakpoints
	EstablishedConns Breakpoints
	FailedLogins     Breakpoints

	Weights Weights
}

func DefaultTable() Table {
	return Table{
		CPULoadPerCore:   Breakpoints{Warning: 1.0, Alert: 1.5},
		MemoryUsedPct:    Breakpoints{Warning: 80.0, Alert: 90.0},
		ProcessCPU:       Breakpoints{Warning: 40.0, Alert: 80.0},
		EstablishedConns: Breakpoints{Warning: 50.0, Alert: 200.0},
		FailedLogins:     Breakpoints{Warning: 5.0, Alert: 20.0},
		Weights:          Weights{Warning: 5, Alert: 15},
	}
}

// Validate rejects contradictory tables before sampling starts.
func (t Table) Validate() error {
	checks := []struct {
		name string
		bp   Breakpoints
	}{
		{"cpu_load", t.CPULoadPerCore},
		{"memory_used_pct", t.MemoryUsedPct},
		{"process_cpu", t.ProcessCPU},
		{"established_connections", t.EstablishedConns},
		{"failed_logins", t.FailedLogins},
	}
	for _, c := range checks {
		if c.bp.Warning >= c.bp.Alert {
			return fmt.Errorf("threshold table: %s warning breakpoint %.2f must be below alert breakpoint %.2f",
				c.name, c.bp.Warning, c.bp.Alert)
		}
	}
	if t.Weights.Warning <= 0 || t.Weights.Alert <= 0 {
		return fmt.Errorf("threshold table: score weights must be positive")
	}
	return nil
}
