package replay

import (
	"fmt"
	"sort"
	"time"

	"github.com/deepnoodle-ai/grld/hook"
)

// Result is the outcome of replaying a trace.
type Result struct {
	Breaks     []BreakRecord `json:"breaks"`
	Polls      int           `json:"polls"`
	Registered []string      `json:"registered,omitempty"`
	Stats      hook.Stats    `json:"stats"`
}

// Player replays a trace against a debug session on a simulated runtime.
type Player struct {
	Runtime  *Runtime
	Table    *hook.Breakpoints
	Frontend *Frontend
	Session  *hook.Session
	trace    *Trace
}

// NewPlayer builds the runtime, breakpoint table, front end and session
// for a trace. Options are applied after the ones derived from the
// trace config.
func NewPlayer(tr *Trace, opts ...hook.Option) (*Player, error) {
	rt := NewRuntime()
	rt.SetNativeReturnLine(tr.Config.NativeReturnLine)

	table := hook.NewBreakpoints()
	sources := make([]string, 0, len(tr.Breakpoints))
	for source := range tr.Breakpoints {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		table.Register(source)
		for _, line := range tr.Breakpoints[source] {
			table.Set(source, line)
		}
	}
	for raw, canonical := range tr.Aliases {
		table.Alias(raw, canonical)
	}

	fe := NewFrontend(rt, table, tr.responses())
	base := []hook.Option{
		hook.WithClock(rt.Now),
		hook.WithLineEmulation(tr.Config.emulate()),
	}
	if tr.Config.PollIntervalMillis != nil {
		base = append(base, hook.WithPollInterval(time.Duration(*tr.Config.PollIntervalMillis)*time.Millisecond))
	}
	s, err := hook.Attach(rt, fe, table, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	fe.Bind(s)
	return &Player{Runtime: rt, Table: table, Frontend: fe, Session: s, trace: tr}, nil
}

// Run replays every op of the trace.
func (p *Player) Run() (*Result, error) {
	for i, op := range p.trace.Ops {
		if err := p.Apply(op); err != nil {
			return nil, fmt.Errorf("ops[%d] (%s): %w", i, op.Op, err)
		}
		p.Runtime.Advance(p.trace.Config.tick())
	}
	return &Result{
		Breaks:     p.Frontend.Breaks(),
		Polls:      p.Frontend.Polls(),
		Registered: p.Frontend.Registered(),
		Stats:      p.Session.Stats(),
	}, nil
}

// Apply executes a single op.
func (p *Player) Apply(op Op) error {
	switch op.Op {
	case OpSpawn:
		if _, ok := p.Runtime.Thread(op.Thread); ok {
			return fmt.Errorf("thread %q already exists", op.Thread)
		}
		t := p.Runtime.NewThread(op.Thread)
		p.Session.SetHook(t)
		return nil
	case OpEnterDebugger:
		p.Runtime.SetInDebugger(true)
		return nil
	case OpLeaveDebugger:
		p.Runtime.SetInDebugger(false)
		return nil
	case OpSetBreak:
		p.Table.Set(op.Source, op.Line)
		return nil
	case OpClearBreak:
		p.Table.Clear(op.Source, op.Line)
		return nil
	case OpCollect:
		p.Runtime.Collect(op.Thread)
		return nil
	}

	name := op.Thread
	if name == "" {
		name = MainThread
	}
	t, ok := p.Runtime.Thread(name)
	if !ok {
		return fmt.Errorf("unknown thread %q", name)
	}
	switch op.Op {
	case OpCall:
		t.Call(op.Source, op.Line)
	case OpLine:
		t.Line(op.Line)
	case OpReturn:
		t.Return()
	case OpTailReturn:
		t.TailReturn()
	case OpPush:
		t.Push(op.Values)
	case OpYield:
		t.Yield()
	case OpResume:
		t.Resume()
	case OpError:
		t.Fail()
	case OpFinish:
		t.Finish()
	case OpKill:
		t.Kill()
	case OpStep:
		mode, err := hook.ParseStepMode(op.Mode)
		if err != nil {
			return err
		}
		p.Session.SetStepMode(mode, t.ID())
		p.Session.SetStepDepth(op.Depth)
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	return nil
}

// Run replays tr on a fresh runtime.
func Run(tr *Trace, opts ...hook.Option) (*Result, error) {
	p, err := NewPlayer(tr, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run()
}
