package hook

import (
	"github.com/deepnoodle-ai/grld/errz"
)

// BreakReason tells why the dispatcher suspended execution.
type BreakReason uint8

const (
	BreakNone BreakReason = iota
	// BreakStep ends a step requested by the front end.
	BreakStep
	// BreakpointHit is a line holding a breakpoint.
	BreakpointHit
	// BreakDeadTarget is forced because the thread a step was bound to
	// can no longer run.
	BreakDeadTarget
)

func (r BreakReason) String() string {
	switch r {
	case BreakStep:
		return "step"
	case BreakpointHit:
		return "breakpoint"
	case BreakDeadTarget:
		return "dead-target"
	default:
		return "none"
	}
}

// Break is the location where execution was last suspended.
type Break struct {
	Location
	Reason BreakReason
	Thread ThreadID
}

// Stats counts what the dispatcher did since the session was opened.
type Stats struct {
	Events        uint64
	Suppressed    uint64 // events dropped while debugger code was running
	Polls         uint64
	Breaks        uint64
	StepBreaks    uint64
	Breakpoints   uint64
	DeadTargets   uint64
	Emulated      uint64 // synthetic line events armed
	Registrations uint64
	CacheHits     uint64
	CacheMisses   uint64
	Failures      uint64
}

// OnEvent is the hook the session installs on VM threads. It is invoked
// by the VM on every call, return, line and count event and decides
// whether execution must be suspended.
//
// OnEvent never panics and never returns an error: collaborator failures
// are reported on the diagnostic stream and the VM carries on.
func (s *Session) OnEvent(t Thread, rec Record) {
	if !s.cfg.EmulateLineEvents {
		s.dispatch(t, rec)
		return
	}
	rec = s.relabel(rec)
	s.dispatch(t, rec)
	s.rearm(t, rec)
}

func (s *Session) dispatch(t Thread, rec Record) {
	if !s.hookActive {
		return
	}
	s.stats.Events++

	if s.reentrant {
		s.probeReentrancy(t)
		if s.reentrant {
			s.stats.Suppressed++
			return
		}
	}

	now := s.now().UnixMilli()
	if now > s.lastPoll+s.cfg.PollInterval.Milliseconds() {
		s.lastPoll = now
		s.poll()
	}

	if rec.Event != EventLine {
		return
	}

	brk, reason := s.stepBreak(t, rec)
	if !brk {
		f, _ := t.Frame(0)
		if s.isBreakpointSet(f.Source, rec.Line) {
			brk, reason = true, BreakpointHit
		}
	}
	if brk {
		s.breakNow(t, reason)
	}
}

// probeReentrancy clears the reentrant flag once the collaborator reports
// that no debugger code is running on t. A failed probe keeps it set.
func (s *Session) probeReentrancy(t Thread) {
	_, inside, err := s.debuggerDepth(t)
	if err != nil {
		s.report(wrap(errz.CallbackDepthProbe, err))
		return
	}
	if !inside {
		s.reentrant = false
	}
}

func (s *Session) debuggerDepth(t Thread) (depth int, inside bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errz.FromPanic(errz.CallbackDepthProbe, r)
		}
	}()
	return s.collab.DebuggerDepth(t, 0)
}

func (s *Session) poll() {
	s.stats.Polls++
	if err := s.callPoll(); err != nil {
		s.report(wrap(errz.CallbackPoll, err))
	}
}

func (s *Session) callPoll() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errz.FromPanic(errz.CallbackPoll, r)
		}
	}()
	return s.collab.PollRemoteCommands()
}

// breakNow records the exact location of t and hands control to the
// front end until it resumes t.
func (s *Session) breakNow(t Thread, reason BreakReason) {
	s.updateDepth(t)
	f, _ := t.Frame(0)
	s.lastBreak = Break{
		Location: Location{Source: f.Source, Line: f.Line},
		Reason:   reason,
		Thread:   t.ID(),
	}
	s.stats.Breaks++
	switch reason {
	case BreakStep:
		s.stats.StepBreaks++
	case BreakpointHit:
		s.stats.Breakpoints++
	case BreakDeadTarget:
		s.stats.DeadTargets++
	}
	s.logger.Debug().
		Str("source", f.Source).
		Int("line", f.Line).
		Stringer("reason", reason).
		Uint64("thread", uint64(t.ID())).
		Msg("break")
	if err := s.notifyBreak(t); err != nil {
		s.report(wrap(errz.CallbackNotifyBreak, err).At(f.Source, f.Line))
	}
}

func (s *Session) notifyBreak(t Thread) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errz.FromPanic(errz.CallbackNotifyBreak, r)
		}
	}()
	return s.collab.NotifyBreak(t)
}
