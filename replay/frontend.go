package replay

import (
	"path"
	"strings"

	"github.com/deepnoodle-ai/grld/hook"
)

// Response is the command the simulated front end issues when execution
// breaks.
type Response struct {
	Mode  hook.StepMode
	Depth int
}

// BreakRecord is one break observed by the front end.
type BreakRecord struct {
	Thread string          `json:"thread"`
	Source string          `json:"source"`
	Line   int             `json:"line"`
	Reason string          `json:"reason"`
	Depth  int             `json:"depth"`
	Step   string          `json:"step"`
	Frames []hook.Location `json:"-"`
}

// Frontend is a hook.Collaborator standing in for the remote debugger.
// At each break it records the location and answers with the next
// scripted response; once they run out it continues.
type Frontend struct {
	rt        *Runtime
	table     *hook.Breakpoints
	responses []Response
	session   *hook.Session

	breaks     []BreakRecord
	polls      int
	registered []string

	// Canonicalize maps a raw source id to the key used in the
	// breakpoint table. The default cleans the path after the "@".
	Canonicalize func(source string) string

	// PollErr, RegisterErr and BreakErr, when set, are returned by the
	// corresponding callbacks.
	PollErr     error
	RegisterErr error
	BreakErr    error
}

// NewFrontend creates a front end answering breaks with responses.
func NewFrontend(rt *Runtime, table *hook.Breakpoints, responses []Response) *Frontend {
	return &Frontend{
		rt:           rt,
		table:        table,
		responses:    responses,
		Canonicalize: CleanSource,
	}
}

// CleanSource cleans the path of a file backed source id.
func CleanSource(source string) string {
	if !strings.HasPrefix(source, "@") {
		return source
	}
	return "@" + path.Clean(source[1:])
}

// Bind gives the front end the session it issues step commands to.
func (f *Frontend) Bind(s *hook.Session) {
	f.session = s
}

// Breaks returns the breaks recorded so far.
func (f *Frontend) Breaks() []BreakRecord {
	return f.breaks
}

// Polls returns how many times the engine polled for commands.
func (f *Frontend) Polls() int {
	return f.polls
}

// Registered returns the sources registered lazily, in order.
func (f *Frontend) Registered() []string {
	return f.registered
}

// DebuggerDepth implements hook.Collaborator.
func (f *Frontend) DebuggerDepth(t hook.Thread, base int) (int, bool, error) {
	if !f.rt.InDebugger() {
		return 0, false, nil
	}
	return base, true, nil
}

// PollRemoteCommands implements hook.Collaborator.
func (f *Frontend) PollRemoteCommands() error {
	f.polls++
	return f.PollErr
}

// RegisterSource implements hook.Collaborator.
func (f *Frontend) RegisterSource(source string) (hook.LineSet, error) {
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	f.registered = append(f.registered, source)
	canonical := f.Canonicalize(source)
	f.table.Register(canonical)
	if canonical != source {
		f.table.Alias(source, canonical)
	}
	return f.table.Lines(canonical), nil
}

// NotifyBreak implements hook.Collaborator.
func (f *Frontend) NotifyBreak(t hook.Thread) error {
	rec := BreakRecord{Thread: threadName(f.rt, t), Step: hook.StepNone.String()}
	if f.session != nil {
		last := f.session.LastBreak()
		rec.Source, rec.Line, rec.Reason = last.Source, last.Line, last.Reason.String()
		rec.Depth, _ = f.session.Depth()
		mode, _ := f.session.StepMode()
		rec.Step = mode.String()
	}
	for level := 0; ; level++ {
		fr, ok := t.Frame(level)
		if !ok {
			break
		}
		rec.Frames = append(rec.Frames, hook.Location{Source: fr.Source, Line: fr.Line})
	}
	f.breaks = append(f.breaks, rec)
	if f.BreakErr != nil {
		return f.BreakErr
	}

	next := Response{Mode: hook.StepNone}
	if len(f.responses) > 0 {
		next, f.responses = f.responses[0], f.responses[1:]
	}
	if f.session != nil {
		f.session.SetStepMode(next.Mode, t.ID())
		f.session.SetStepDepth(next.Depth)
	}
	return nil
}

func threadName(rt *Runtime, t hook.Thread) string {
	if th, ok := t.(*Thread); ok {
		return th.Name()
	}
	if t.ID() == rt.MainThread().ID() {
		return MainThread
	}
	return ""
}

var _ hook.Collaborator = (*Frontend)(nil)
