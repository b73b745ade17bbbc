package probe

import (
	"context"

	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryFacts reports virtual memory usage in MB plus the used percentage.
type MemoryFacts struct {
	UsedPct float64 `json:"used_pct"`
	TotalMB float64 `json:"total_mb"`
	UsedMB  float64 `json:"used_mb"`
}

type MemoryProbe struct{}

func NewMemoryProbe() *MemoryProbe {
	return &MemoryProbe{}
}

func (p *MemoryProbe) Name() string {
	return "memory"
}

func (p *MemoryProbe) Collect(ctx context.Context) (any, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	return MemoryFacts{
		UsedPct: vm.UsedPercent,
		TotalMB: float64(vm.Total) / (1024 * 1024),
		UsedMB:  float64(vm.Used) / (1024 * 1024),
	}, nil
}
