package replay

import (
	"github.com/deepnoodle-ai/grld/hook"
)

// Thread is a simulated execution context. Frames are kept outermost
// first; hook.Thread level 0 is the last element.
type Thread struct {
	id     hook.ThreadID
	name   string
	rt     *Runtime
	frames []hook.Frame
	values int
	status hook.Status

	hook      hook.HookFunc
	mask      hook.Mask
	count     int
	countdown int
}

// Name returns the name the thread was created with.
func (t *Thread) Name() string {
	return t.name
}

// Depth returns the number of frames on the thread.
func (t *Thread) Depth() int {
	return len(t.frames)
}

// ID implements hook.Thread.
func (t *Thread) ID() hook.ThreadID {
	return t.id
}

// Frame implements hook.Thread.
func (t *Thread) Frame(level int) (hook.Frame, bool) {
	if level < 0 || level >= len(t.frames) {
		return hook.Frame{}, false
	}
	return t.frames[len(t.frames)-1-level], true
}

// StackTop implements hook.Thread.
func (t *Thread) StackTop() int {
	return t.values
}

// Status implements hook.Thread.
func (t *Thread) Status() hook.Status {
	return t.status
}

// SetHook implements hook.Thread.
func (t *Thread) SetHook(fn hook.HookFunc, mask hook.Mask, count int) {
	if fn == nil || mask == 0 {
		t.hook, t.mask, t.count, t.countdown = nil, 0, 0, 0
		return
	}
	t.hook, t.mask, t.count = fn, mask, count
	t.countdown = count
}

// Mask returns the installed hook mask and instruction count.
func (t *Thread) Mask() (hook.Mask, int) {
	return t.mask, t.count
}

// Call enters a function of source starting at line.
func (t *Thread) Call(source string, line int) {
	t.tick()
	t.frames = append(t.frames, hook.Frame{Source: source, Line: line})
	t.fire(hook.Record{Event: hook.EventCall, Line: -1})
}

// Line moves the running function to line.
func (t *Thread) Line(line int) {
	t.tick()
	if n := len(t.frames); n > 0 {
		t.frames[n-1].Line = line
	}
	t.fire(hook.Record{Event: hook.EventLine, Line: line})
}

// Return leaves the running function.
func (t *Thread) Return() {
	t.leave(hook.EventReturn)
}

// TailReturn leaves a function whose frame was reused by a tail call.
func (t *Thread) TailReturn() {
	t.leave(hook.EventTailReturn)
}

func (t *Thread) leave(ev hook.Event) {
	t.tick()
	t.fire(hook.Record{Event: ev, Line: -1})
	if n := len(t.frames); n > 0 {
		t.frames = t.frames[:n-1]
	}
	if t.rt.nativeReturnLine {
		if f, ok := t.Frame(0); ok {
			t.fire(hook.Record{Event: hook.EventLine, Line: f.Line})
		}
	}
}

// Push sets the number of values on the value stack.
func (t *Thread) Push(values int) {
	t.values = values
}

// Yield suspends the thread.
func (t *Thread) Yield() {
	t.status = hook.StatusSuspended
}

// Resume makes the thread runnable again.
func (t *Thread) Resume() {
	t.status = hook.StatusOK
}

// Fail stops the thread on an error. Its frames are kept.
func (t *Thread) Fail() {
	t.status = hook.StatusErrored
}

// Finish unwinds the thread after its body returned. A finished thread
// reports StatusOK with no frames and an empty value stack.
func (t *Thread) Finish() {
	t.frames = t.frames[:0]
	t.values = 0
	t.status = hook.StatusOK
}

// Kill makes the thread report StatusDead.
func (t *Thread) Kill() {
	t.status = hook.StatusDead
}

// tick counts one executed instruction and fires the count hook when its
// period elapses.
func (t *Thread) tick() {
	if t.hook == nil || !t.mask.Has(hook.MaskCount) || t.count <= 0 {
		return
	}
	t.countdown--
	if t.countdown > 0 {
		return
	}
	t.countdown = t.count
	t.fire(hook.Record{Event: hook.EventCount, Line: -1})
}

func (t *Thread) fire(rec hook.Record) {
	if t.hook == nil || !t.mask.Wants(rec.Event) {
		return
	}
	t.hook(t, rec)
}

var _ hook.Thread = (*Thread)(nil)
