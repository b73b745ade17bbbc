package probe

import (
	"context"
	"os"
	"sort"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo is one entry of the CPU-ranked process list.
type ProcessInfo struct {
	PID    int32   `json:"pid"`
	Name   string  `json:"name,omitempty"`
	CPU    float64 `json:"cpu_percent"`
	Memory float32 `json:"memory_percent"`
}

// ProcessFacts holds the top-N processes ranked by CPU percentage.
type ProcessFacts struct {
	Processes []ProcessInfo `json:"processes"`
}

// ProcessProbe ranks running processes by CPU usage. The monitor's own PID is
// excluded below SelfIgnoreCPU so the tool does not flag itself.
type ProcessProbe struct {
	TopN          int
	SelfIgnoreCPU float64
}

func NewProcessProbe(topN int, selfIgnoreCPU float64) *ProcessProbe {
	if topN <= 0 {
		topN = 5
	}
	return &ProcessProbe{TopN: topN, SelfIgnoreCPU: selfIgnoreCPU}
}

func (p *ProcessProbe) Name() string {
	return "process"
}

func (p *ProcessProbe) Collect(ctx context.Context) (any, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	selfPID := int32(os.Getpid())

	candidates := make([]ProcessInfo, 0, len(pids))
	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			return nil, Unavailable(p.Name(), err)
		}
		proc, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			continue // process exited between listing and inspection
		}
		name, _ := proc.NameWithContext(ctx)
		cpuPct, _ := proc.CPUPercentWithContext(ctx)
		memPct, _ := proc.MemoryPercentWithContext(ctx)

		if pid == selfPID && cpuPct < p.SelfIgnoreCPU {
			continue
		}

		candidates = append(candidates, ProcessInfo{
			PID:    pid,
			Name:   name,
			CPU:    cpuPct,
			Memory: memPct,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CPU > candidates[j].CPU
	})
	if len(candidates) > p.TopN {
		candidates = candidates[:p.TopN]
	}

	return ProcessFacts{Processes: candidates}, nil
}
