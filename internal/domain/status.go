package domain

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a live room. Transitions only move
// forward: waiting -> in-progress -> finished.
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in-progress"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "waiting":
		*s = StatusWaiting
	case "in-progress":
		*s = StatusInProgress
	case "finished":
		*s = StatusFinished
	default:
		return fmt.Errorf("unknown status %q", raw)
	}
	return nil
}

// Mode controls how a room advances between questions once started.
type Mode int

const (
	ModeManual Mode = iota
	ModeAuto
)

func (m Mode) String() string {
	if m == ModeAuto {
		return "auto"
	}
	return "manual"
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseMode(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode maps the wire representation to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case "manual":
		return ModeManual, nil
	case "auto":
		return ModeAuto, nil
	}
	return ModeManual, fmt.Errorf("unknown mode %q", raw)
}
