// Package collector fans the probe set out concurrently and merges the
// results into one ordered Facts value per sampling cycle.
package collector

import (
	"context"
	"sync"
	"time"

	"homesoc/internal/probe"
)

// Gap records a data source that could not be read this cycle. The classifier
// turns gaps into info-level events so the cycle still produces a snapshot.
type Gap struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Facts is the raw, unclassified output of one sampling cycle. A nil section
// means the corresponding probe was unavailable and has a matching Gap entry.
type Facts struct {
	Load    *probe.LoadFacts
	Memory  *probe.MemoryFacts
	Process *probe.ProcessFacts
	Network *probe.NetworkFacts
	Auth    *probe.AuthFacts
	Logins  *probe.LoginFacts

	Gaps []Gap
}

// FactsProvider defines the contract for anything that can produce a cycle's
// raw facts.
type FactsProvider interface {
	Collect(ctx context.Context) *Facts
}

// Collector holds one probe per data source and a per-cycle deadline.
type Collector struct {
	loadProbe    probe.Probe
	memoryProbe  probe.Probe
	processProbe probe.Probe
	networkProbe probe.Probe
	authProbe    probe.Probe
	loginProbe   probe.Probe

	timeout time.Duration
}

// Config carries the probe parameters the collector is built from.
type Config struct {
	TopProcesses  int
	SelfIgnoreCPU float64
	AuthLogPaths  []string
	AuthTailLines int
	RecentLogins  int
	CycleTimeout  time.Duration
}

func New(cfg Config) *Collector {
	timeout := cfg.CycleTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Collector{
		loadProbe:    probe.NewLoadProbe(),
		memoryProbe:  probe.NewMemoryProbe(),
		processProbe: probe.NewProcessProbe(cfg.TopProcesses, cfg.SelfIgnoreCPU),
		networkProbe: probe.NewNetworkProbe(),
		authProbe:    probe.NewAuthLogProbe(cfg.AuthLogPaths, cfg.AuthTailLines),
		loginProbe:   probe.NewLastLoginProbe(cfg.RecentLogins),
		timeout:      timeout,
	}
}

type probeResult struct {
	source string
	value  any
	err    error
}

// Collect runs every probe under the cycle deadline and merges the results.
// It never fails as a whole: a probe that errors or exceeds the deadline is
// recorded as a Gap and the remaining sections are still populated.
func (c *Collector) Collect(ctx context.Context) *Facts {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	probes := []probe.Probe{
		c.loadProbe,
		c.memoryProbe,
		c.processProbe,
		c.networkProbe,
		c.authProbe,
		c.loginProbe,
	}

	results := make(chan probeResult, len(probes))
	var wg sync.WaitGroup
	wg.Add(len(probes))

	for _, p := range probes {
		go func(p probe.Probe) {
			defer wg.Done()
			value, err := p.Collect(ctx)
			results <- probeResult{source: p.Name(), value: value, err: err}
		}(p)
	}

	wg.Wait()
	close(results)

	bySource := make(map[string]probeResult, len(probes))
	for res := range results {
		bySource[res.source] = res
	}

	facts := &Facts{}
	for _, p := range probes {
		res := bySource[p.Name()]
		if res.err != nil {
			facts.Gaps = append(facts.Gaps, Gap{Source: res.source, Reason: res.err.Error()})
			continue
		}
		switch v := res.value.(type) {
		case probe.LoadFacts:
			facts.Load = &v
		case probe.MemoryFacts:
			facts.Memory = &v
		case probe.ProcessFacts:
			facts.Process = &v
		case probe.NetworkFacts:
			facts.Network = &v
		case probe.AuthFacts:
			facts.Auth = &v
		case probe.LoginFacts:
			facts.Logins = &v
		}
	}
	return facts
}
