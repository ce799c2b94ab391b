package hook

import (
	"fmt"
	"strings"
)

// StepMode is the stepping granularity requested by the front end.
type StepMode uint8

const (
	// StepNone disables stepping; only breakpoints suspend execution.
	StepNone StepMode = iota

	// StepInside breaks on the next line, entering called functions.
	StepInside

	// StepOver breaks on the next line at or above the current call.
	StepOver

	// StepOutside breaks once the current call has returned.
	StepOutside
)

func (m StepMode) String() string {
	switch m {
	case StepNone:
		return "none"
	case StepInside:
		return "into"
	case StepOver:
		return "over"
	case StepOutside:
		return "out"
	default:
		return fmt.Sprintf("stepmode(%d)", uint8(m))
	}
}

// ParseStepMode parses the names returned by StepMode.String, plus the
// aliases "continue", "inside" and "outside".
func ParseStepMode(s string) (StepMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "continue", "":
		return StepNone, nil
	case "into", "inside", "in":
		return StepInside, nil
	case "over":
		return StepOver, nil
	case "out", "outside":
		return StepOutside, nil
	}
	return StepNone, fmt.Errorf("unknown step mode %q", s)
}

// targetDead reports whether the thread stepping is bound to can no
// longer run. A yielded thread is alive; so is a thread with frames or
// pending values.
func (s *Session) targetDead() bool {
	target, ok := s.rt.Lookup(s.stepTarget)
	if !ok {
		return true
	}
	switch target.Status() {
	case StatusSuspended:
		return false
	case StatusOK:
		_, hasFrame := target.Frame(0)
		return !hasFrame && target.StackTop() == 0
	default:
		return true
	}
}

// stepBreak decides whether a line class event on t ends the current
// step. rec.Line is -1 for emulated line events.
func (s *Session) stepBreak(t Thread, rec Record) (bool, BreakReason) {
	if s.stepMode == StepNone {
		return false, BreakNone
	}

	checkThread := s.stepMode != StepInside
	dead := false
	if checkThread && s.stepTarget != 0 && s.stepTarget != t.ID() &&
		s.stepTarget != s.rt.MainThread().ID() {
		dead = s.targetDead()
	}
	if checkThread && !dead && s.stepTarget != 0 && s.stepTarget != t.ID() {
		return false, BreakNone
	}

	stepDepth := -1
	if !dead {
		s.updateDepth(t)
		stepDepth = s.depth - s.initialDepth
	}
	reason := BreakStep
	if dead {
		reason = BreakDeadTarget
	}

	switch s.stepMode {
	case StepInside:
		// An emulated line at the depth stepping started from adds nothing.
		if rec.Line >= 0 || stepDepth != 0 {
			return true, reason
		}
	case StepOver:
		if stepDepth > 0 || rec.Event != EventLine {
			return false, BreakNone
		}
		f, _ := t.Frame(0)
		if rec.Line == s.lastBreak.Line && f.Source == s.lastBreak.Source {
			return false, BreakNone
		}
		if rec.Line >= 0 || stepDepth < 0 {
			return true, reason
		}
	case StepOutside:
		if stepDepth < 0 {
			return true, reason
		}
	}
	return false, BreakNone
}
