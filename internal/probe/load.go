package probe

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
)

// LoadFacts holds the load averages together with the logical core count the
// classifier scales its breakpoints by.
type LoadFacts struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
	Cores  int     `json:"cores"`
}

type LoadProbe struct{}

func NewLoadProbe() *LoadProbe {
	return &LoadProbe{}
}

func (p *LoadProbe) Name() string {
	return "load"
}

func (p *LoadProbe) Collect(ctx context.Context) (any, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores < 1 {
		cores = 1
	}

	return LoadFacts{
		Load1:  avg.Load1,
		Load5:  avg.Load5,
		Load15: avg.Load15,
		Cores:  cores,
	}, nil
}
