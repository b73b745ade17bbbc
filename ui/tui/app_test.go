package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"homesoc/internal/collector"
	"homesoc/internal/engine"
	"homesoc/internal/probe"
	"homesoc/internal/snapshot"
)

func testSnapshot(score int) snapshot.Snapshot {
	return snapshot.Assemble(time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local), score, []engine.Event{
		{Level: engine.LevelWarning, Metric: engine.MetricCPULoad, Value: 2.5, Message: "Load avg (1/5/15): 2.50, 1.20, 0.80 | Cores: 2"},
		{Level: engine.LevelAlert, Metric: engine.MetricFailedLogins, Value: 25.0, Message: "Recent failed login attempts: 25 (last 300 lines)"},
	})
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(nil, nil, time.Minute, engine.LevelInfo)

	for _, key := range []string{"q", "ctrl+c"} {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		if key == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		updated, cmd := m.Update(msg)
		if !updated.(Model).quitting {
			t.Errorf("key %q did not set quitting", key)
		}
		if cmd == nil {
			t.Errorf("key %q did not return quit command", key)
		}
	}
}

func TestCycleDoneUpdatesScoreHistory(t *testing.T) {
	m := NewModel(nil, nil, time.Minute, engine.LevelInfo)

	for i, score := range []int{100, 85, 70} {
		updated, _ := m.Update(cycleDoneMsg{snap: testSnapshot(score)})
		m = updated.(Model)
		if len(m.scoreHistory) != i+1 {
			t.Fatalf("history length = %d after %d cycles", len(m.scoreHistory), i+1)
		}
	}
	if m.scoreHistory[2] != 70 {
		t.Errorf("latest history point = %v, want 70", m.scoreHistory[2])
	}
	if m.snap.SecurityScore != 70 {
		t.Errorf("model snapshot score = %d, want 70", m.snap.SecurityScore)
	}
}

func TestScoreHistoryBounded(t *testing.T) {
	m := NewModel(nil, nil, time.Minute, engine.LevelInfo)
	for i := 0; i < scoreHistoryCap+10; i++ {
		m.pushScore(float64(i))
	}
	if len(m.scoreHistory) != scoreHistoryCap {
		t.Errorf("history length = %d, want %d", len(m.scoreHistory), scoreHistoryCap)
	}
}

func TestViewShowsEntriesAndLogins(t *testing.T) {
	m := NewModel(nil, nil, time.Minute, engine.LevelInfo)
	updated, _ := m.Update(cycleDoneMsg{
		snap: testSnapshot(75),
		facts: &collector.Facts{
			Logins: &probe.LoginFacts{Records: []string{"alice pts/0 192.168.1.10"}},
		},
	})
	m = updated.(Model)

	out := m.View()
	for _, want := range []string{
		"Home-SOC Monitor",
		"75",
		"Recent failed login attempts: 25",
		"alice pts/0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewHidesBelowMinLevel(t *testing.T) {
	m := NewModel(nil, nil, time.Minute, engine.LevelAlert)
	updated, _ := m.Update(cycleDoneMsg{snap: testSnapshot(75)})
	m = updated.(Model)

	out := m.View()
	if strings.Contains(out, "Load avg") {
		t.Error("warning entry rendered despite alert min level")
	}
	if !strings.Contains(out, "Recent failed login attempts") {
		t.Error("alert entry missing")
	}
}

func TestFactsSink(t *testing.T) {
	var sink FactsSink
	if sink.Latest() != nil {
		t.Fatal("empty sink must return nil")
	}
	facts := &collector.Facts{}
	sink.Observe(snapshot.Snapshot{}, facts)
	if sink.Latest() != facts {
		t.Error("sink did not capture latest facts")
	}
}
