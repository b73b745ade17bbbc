package probe

import (
	"context"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// NetworkFacts counts listening sockets and established connections over
// TCP and UDP.
type NetworkFacts struct {
	ListeningSockets int `json:"listening_sockets"`
	Established      int `json:"established"`
}

type NetworkProbe struct{}

func NewNetworkProbe() *NetworkProbe {
	return &NetworkProbe{}
}

func (p *NetworkProbe) Name() string {
	return "network"
}

func (p *NetworkProbe) Collect(ctx context.Context) (any, error) {
	conns, err := gnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	facts := NetworkFacts{}
	for _, c := range conns {
		switch c.Status {
		case "LISTEN":
			facts.ListeningSockets++
		case "ESTABLISHED":
			facts.Established++
		}
	}
	return facts, nil
}
