package hook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeThread is a minimal Thread whose stack is driven by the test.
type fakeThread struct {
	id     ThreadID
	frames []Frame // outermost first
	values int
	status Status
	probes int

	fn    HookFunc
	mask  Mask
	count int
}

func (t *fakeThread) ID() ThreadID { return t.id }

func (t *fakeThread) Frame(level int) (Frame, bool) {
	t.probes++
	if level < 0 || level >= len(t.frames) {
		return Frame{}, false
	}
	return t.frames[len(t.frames)-1-level], true
}

func (t *fakeThread) StackTop() int  { return t.values }
func (t *fakeThread) Status() Status { return t.status }

func (t *fakeThread) SetHook(fn HookFunc, mask Mask, count int) {
	t.fn, t.mask, t.count = fn, mask, count
}

func (t *fakeThread) push(source string, line int) {
	t.frames = append(t.frames, Frame{Source: source, Line: line})
}

func (t *fakeThread) pop() {
	t.frames = t.frames[:len(t.frames)-1]
}

func (t *fakeThread) at(line int) {
	t.frames[len(t.frames)-1].Line = line
}

type fakeRuntime struct {
	main    *fakeThread
	threads map[ThreadID]*fakeThread
	values  map[any]any
	nextID  ThreadID
}

func newFakeRuntime() *fakeRuntime {
	rt := &fakeRuntime{threads: map[ThreadID]*fakeThread{}, values: map[any]any{}}
	rt.main = rt.spawn()
	return rt
}

func (rt *fakeRuntime) spawn() *fakeThread {
	rt.nextID++
	t := &fakeThread{id: rt.nextID}
	rt.threads[t.id] = t
	return t
}

func (rt *fakeRuntime) MainThread() Thread { return rt.main }

func (rt *fakeRuntime) Lookup(id ThreadID) (Thread, bool) {
	t, ok := rt.threads[id]
	if !ok {
		return nil, false
	}
	return t, true
}

func (rt *fakeRuntime) Value(key any) any        { return rt.values[key] }
func (rt *fakeRuntime) SetValue(key, value any) { rt.values[key] = value }

// recorder is a Collaborator that records calls and can be told to fail.
type recorder struct {
	table *Breakpoints

	inside    bool
	depthErr  error
	pollErr   error
	regErr    error
	breakErr  error
	panicWith any

	probes     int
	polls      int
	registered []string
	breaks     []Break
	session    *Session
	onBreak    func(t Thread)
}

func (r *recorder) DebuggerDepth(t Thread, base int) (int, bool, error) {
	r.probes++
	if r.depthErr != nil {
		return 0, false, r.depthErr
	}
	return base, r.inside, nil
}

func (r *recorder) PollRemoteCommands() error {
	r.polls++
	return r.pollErr
}

func (r *recorder) RegisterSource(source string) (LineSet, error) {
	r.registered = append(r.registered, source)
	if r.regErr != nil {
		return nil, r.regErr
	}
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	return r.table.Register(source), nil
}

func (r *recorder) NotifyBreak(t Thread) error {
	if r.session != nil {
		r.breaks = append(r.breaks, r.session.LastBreak())
	}
	if r.onBreak != nil {
		r.onBreak(t)
	}
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	return r.breakErr
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	s     *Session
	rt    *fakeRuntime
	col   *recorder
	table *Breakpoints
	clock *fakeClock
}

// newFixture opens an active session on a fresh runtime whose main thread
// runs one function of "@a.lua". Reentrancy is already cleared.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	rt := newFakeRuntime()
	rt.main.status = StatusOK
	rt.main.push("@a.lua", 1)
	table := NewBreakpoints()
	col := &recorder{table: table}
	clock := &fakeClock{now: time.UnixMilli(0)}

	opts = append([]Option{WithClock(clock.Now), WithLineEmulation(false)}, opts...)
	s, err := Attach(rt, col, table, opts...)
	require.NoError(t, err)
	col.session = s
	s.reentrant = false
	return &fixture{s: s, rt: rt, col: col, table: table, clock: clock}
}

func (f *fixture) line(th *fakeThread, line int) {
	th.at(line)
	f.s.OnEvent(th, Record{Event: EventLine, Line: line})
}

func (f *fixture) call(th *fakeThread, source string, line int) {
	th.push(source, line)
	f.s.OnEvent(th, Record{Event: EventCall, Line: -1})
}

func (f *fixture) ret(th *fakeThread) {
	f.s.OnEvent(th, Record{Event: EventReturn, Line: -1})
	th.pop()
}

// arm sets a step bound to th from its current depth.
func (f *fixture) arm(th *fakeThread, mode StepMode) {
	f.s.updateDepth(th)
	f.s.SetStepMode(mode, th.id)
	f.s.SetStepDepth(0)
}
