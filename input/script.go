package input

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a replay script.
type scriptStep struct {
	Action  string  `json:"action"`
	Element string  `json:"element,omitempty"`
	Value   float32 `json:"value,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script replays scripted input onto a device one frame at a time.
//
// Supported actions: "press" and "release" (action elements), "axis"
// (axis element to value) and "wait" (idle for frames).
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON replay script.
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "press", "release", "axis":
			if st.Element == "" {
				return nil, fmt.Errorf("parse input script: step %d: %q needs an element", i, st.Action)
			}
		case "wait":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

// Step advances the script by one frame, queueing at most one step's events
// on d. Unknown element names are an error.
func (s *Script) Step(d *Device, now time.Duration) error {
	if s.done {
		return nil
	}
	if s.waitCount > 0 {
		s.waitCount--
		return nil
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return nil
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "press", "release":
		e := d.Action(st.Element)
		if e == nil {
			return fmt.Errorf("input script: no action element %q on %s", st.Element, d.Name())
		}
		d.QueueAction(e, st.Action == "press", now)
	case "axis":
		e := d.Axis(st.Element)
		if e == nil {
			return fmt.Errorf("input script: no axis element %q on %s", st.Element, d.Name())
		}
		d.QueueAxis(e, st.Value, now)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 {
		s.done = true
	}
	return nil
}
