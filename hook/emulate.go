package hook

// Some VMs, after a function returns, only report a line event for the
// next line the caller executes, never for the line holding the call.
// Someone stepping through code then loses sight of where the call was
// made. When a step is active and a function returns, the emulator arms
// a count hook that fires after one instruction and presents that event
// as a line event with line -1. The next event disarms it again.

// relabel turns a count event into the emulated line event it stands for.
func (s *Session) relabel(rec Record) Record {
	if rec.Event == EventCount {
		return Record{Event: EventLine, Line: -1}
	}
	return rec
}

// rearm updates the hook of t after rec has been dispatched.
func (s *Session) rearm(t Thread, rec Record) {
	returned := rec.Event == EventReturn || rec.Event == EventTailReturn
	if s.stepMode != StepNone && !s.emulating && returned {
		s.emulating = true
		s.stats.Emulated++
		t.SetHook(s.hook, DefaultMask|MaskCount, 1)
	} else if s.emulating {
		s.emulating = false
		t.SetHook(s.hook, DefaultMask, 0)
	}
}
