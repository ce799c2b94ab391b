package hook

// updateDepth moves s.depth to the level of the outermost frame of t, or
// to 0 when t has no frames.
//
// It probes one frame past the last known depth and walks from there, so
// the cost is proportional to how much the stack changed since the
// previous call rather than to its height.
func (s *Session) updateDepth(t Thread) {
	for {
		if _, ok := t.Frame(s.depth); !ok {
			break
		}
		s.depth++
	}
	for s.depth > 0 {
		if _, ok := t.Frame(s.depth); ok {
			break
		}
		s.depth--
	}
	assertf(s.depth >= 0, "callstack depth %d is negative", s.depth)
}
