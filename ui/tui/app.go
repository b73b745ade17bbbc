// Package tui is the full-screen terminal dashboard. It drives the same
// monitoring cycle as the headless loop, so every rendered frame is also
// persisted and deduplicated like any other cycle.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"homesoc/internal/collector"
	"homesoc/internal/engine"
	"homesoc/internal/snapshot"
	"homesoc/internal/worker"
)

const scoreHistoryCap = 61

// FactsSink captures each cycle's raw facts from the worker's snapshot hook
// so the dashboard can show display-only data like recent logins.
type FactsSink struct {
	mu    sync.Mutex
	facts *collector.Facts
}

func (s *FactsSink) Observe(_ snapshot.Snapshot, facts *collector.Facts) {
	s.mu.Lock()
	s.facts = facts
	s.mu.Unlock()
}

func (s *FactsSink) Latest() *collector.Facts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facts
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	worker   *worker.Worker
	sink     *FactsSink
	interval time.Duration
	minLevel engine.Level

	spinner    spinner.Model
	scoreChart linechart.Model

	snap         snapshot.Snapshot
	facts        *collector.Facts
	scoreHistory []float64
	err          error
	collecting   bool
	quitting     bool
	width        int
	height       int
}

type tickMsg time.Time

type cycleDoneMsg struct {
	snap  snapshot.Snapshot
	facts *collector.Facts
	err   error
}

// NewModel builds the dashboard model. The worker must be constructed with
// sink.Observe as its snapshot hook so raw facts reach the dashboard.
func NewModel(w *worker.Worker, sink *FactsSink, interval time.Duration, minLevel engine.Level) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	lc := linechart.New(60, 10, 0, scoreHistoryCap-1, 0, 100)

	return Model{
		worker:       w,
		sink:         sink,
		interval:     interval,
		minLevel:     minLevel,
		spinner:      s,
		scoreChart:   lc,
		scoreHistory: make([]float64, 0, scoreHistoryCap),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCycleCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) runCycleCmd() tea.Cmd {
	w, sink := m.worker, m.sink
	return func() tea.Msg {
		var msg cycleDoneMsg
		msg.snap, msg.err = w.RunOnce(context.Background())
		if sink != nil {
			msg.facts = sink.Latest()
		}
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 8; w > 20 {
			m.scoreChart.Resize(w, 10)
		}
		return m, nil

	case tickMsg:
		m.collecting = true
		return m, m.runCycleCmd()

	case cycleDoneMsg:
		m.collecting = false
		if msg.err != nil {
			m.err = msg.err
			return m, m.tickCmd()
		}
		m.err = nil
		m.snap = msg.snap
		if msg.facts != nil {
			m.facts = msg.facts
		}
		m.pushScore(float64(msg.snap.SecurityScore))
		m.redrawChart()
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) pushScore(score float64) {
	m.scoreHistory = append(m.scoreHistory, score)
	if len(m.scoreHistory) > scoreHistoryCap {
		m.scoreHistory = m.scoreHistory[1:]
	}
}

func (m *Model) redrawChart() {
	m.scoreChart.Clear()
	for i := 0; i < len(m.scoreHistory)-1; i++ {
		m.scoreChart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: m.scoreHistory[i]},
			canvas.Float64Point{X: float64(i + 1), Y: m.scoreHistory[i+1]},
		)
	}
	m.scoreChart.DrawXYAxisAndLabel()
}

func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder

	header := titleStyle.Render("Home-SOC Monitor")
	if m.collecting {
		header += " " + m.spinner.View()
	}
	b.WriteString(header)
	b.WriteString("\n")

	if m.snap.Timestamp != "" {
		b.WriteString(fmt.Sprintf(" %s | Security Score: %s/100\n",
			m.snap.Timestamp, scoreStyle(m.snap.SecurityScore).Render(fmt.Sprintf("%d", m.snap.SecurityScore))))
	} else {
		b.WriteString(" waiting for first cycle " + m.spinner.View() + "\n")
	}

	if m.err != nil {
		b.WriteString(alertStyle.Render(fmt.Sprintf(" cycle error: %v", m.err)))
		b.WriteString("\n")
	}

	if len(m.scoreHistory) > 1 {
		b.WriteString(cardStyle.Render("Security Score Over Time\n" + m.scoreChart.View()))
		b.WriteString("\n")
	}

	if len(m.snap.Entries) > 0 {
		b.WriteString(cardStyle.Render(m.renderEntries()))
		b.WriteString("\n")
	}

	if m.facts != nil && m.facts.Logins != nil && len(m.facts.Logins.Records) > 0 && m.minLevel <= engine.LevelInfo {
		b.WriteString(cardStyle.Render("Recent Logins\n" + " " + strings.Join(m.facts.Logins.Records, "\n ")))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(" q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderEntries() string {
	var b strings.Builder
	b.WriteString("Events\n")
	shown := 0
	for _, e := range engine.Filter(m.snap.Entries, m.minLevel) {
		style := styleFor(e.Level)
		tag := fmt.Sprintf("[%s]", strings.ToUpper(e.Level.String()))
		b.WriteString(fmt.Sprintf(" %s %s\n", style.Render(tag), e.Message))
		shown++
	}
	if shown == 0 {
		b.WriteString(" (no entries at this level)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score < 50:
		return scoreBadStyle
	case score < 80:
		return scoreWarnStyle
	default:
		return scoreGoodStyle
	}
}

func styleFor(level engine.Level) lipgloss.Style {
	switch level {
	case engine.LevelAlert:
		return alertStyle
	case engine.LevelWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

// Start runs the dashboard until the user quits.
func Start(w *worker.Worker, sink *FactsSink, interval time.Duration, minLevel engine.Level) error {
	m := NewModel(w, sink, interval, minLevel)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
