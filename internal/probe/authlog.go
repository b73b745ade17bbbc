package probe

import (
	"bufio"
	"context"
	"os"
	"strings"
)

// DefaultAuthLogPaths lists the authentication logs checked in order.
// Debian/Ubuntu use auth.log, RHEL/CentOS use secure.
var DefaultAuthLogPaths = []string{
	"/var/log/auth.log",
	"/var/log/secure",
}

// AuthFacts counts security-relevant lines inside the tail window of the
// authentication log.
type AuthFacts struct {
	LogPath        string `json:"log_path"`
	WindowLines    int    `json:"window_lines"`
	FailedLogins   int    `json:"failed_logins"`
	AcceptedLogins int    `json:"accepted_logins"`
	SudoCommands   int    `json:"sudo_commands"`
}

// AuthLogProbe tails the last WindowLines lines of the first readable
// authentication log.
type AuthLogProbe struct {
	Paths       []string
	WindowLines int
}

func NewAuthLogProbe(paths []string, windowLines int) *AuthLogProbe {
	if len(paths) == 0 {
		paths = DefaultAuthLogPaths
	}
	if windowLines <= 0 {
		windowLines = 300
	}
	return &AuthLogProbe{Paths: paths, WindowLines: windowLines}
}

func (p *AuthLogProbe) Name() string {
	return "auth_log"
}

func (p *AuthLogProbe) Collect(ctx context.Context) (any, error) {
	path := ""
	for _, candidate := range p.Paths {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, Unavailable(p.Name(), os.ErrNotExist)
	}

	lines, err := tailLines(ctx, path, p.WindowLines)
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	facts := AuthFacts{LogPath: path, WindowLines: p.WindowLines}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Failed password") || strings.Contains(line, "authentication failure"):
			facts.FailedLogins++
		case strings.Contains(line, "Accepted password") || strings.Contains(line, "session opened for user"):
			facts.AcceptedLogins++
		}
		if strings.Contains(line, "sudo:") {
			facts.SudoCommands++
		}
	}
	return facts, nil
}

// tailLines returns up to n trailing lines of the file at path. The file is
// scanned once with a ring buffer so memory stays bounded by n.
func tailLines(ctx context.Context, path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	next := 0
	wrapped := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % n
		wrapped = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !wrapped {
		return ring, nil
	}
	ordered := make([]string, 0, n)
	ordered = append(ordered, ring[next:]...)
	ordered = append(ordered, ring[:next]...)
	return ordered, nil
}
