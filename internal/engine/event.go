// Package engine classifies raw facts against the threshold table and folds
// the classified events into the composite security score.
package engine

import (
	"encoding/json"
	"fmt"
)

// Level is the severity of a classified event, ordered info < warning < alert.
type Level int

const (
	LevelInfo Level = iota + 1
	LevelWarning
	LevelAlert
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// ParseLevel converts the wire/CLI form back into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "info":
		return LevelInfo, nil
	case "warning":
		return LevelWarning, nil
	case "alert":
		return LevelAlert, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Event is one classified observation. Level is a pure function of
// (metric, value, threshold table).
type Event struct {
	Level   Level  `json:"level"`
	Metric  string `json:"metric"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Filter returns the events at or above min, preserving order.
func Filter(events []Event, min Level) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Level >= min {
			out = append(out, e)
		}
	}
	return out
}
