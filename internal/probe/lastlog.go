package probe

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// LoginFacts holds the most recent login records as reported by last(1).
type LoginFacts struct {
	Records []string `json:"records"`
}

// LastLoginProbe shells out to last(1); there is no native API for wtmp.
type LastLoginProbe struct {
	Limit int
}

func NewLastLoginProbe(limit int) *LastLoginProbe {
	if limit <= 0 {
		limit = 5
	}
	return &LastLoginProbe{Limit: limit}
}

func (p *LastLoginProbe) Name() string {
	return "recent_logins"
}

func (p *LastLoginProbe) Collect(ctx context.Context) (any, error) {
	if _, err := exec.LookPath("last"); err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	out, err := exec.CommandContext(ctx, "last", "-n", strconv.Itoa(p.Limit)).Output()
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	records := make([]string, 0, p.Limit)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" || strings.Contains(line, "wtmp begins") {
			continue
		}
		records = append(records, line)
		if len(records) == p.Limit {
			break
		}
	}
	return LoginFacts{Records: records}, nil
}
