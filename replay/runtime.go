package replay

import (
	"time"

	"github.com/deepnoodle-ai/grld/hook"
)

// MainThread is the name of the root thread of every Runtime.
const MainThread = "main"

// Runtime is a simulated VM instance. It keeps the call stack and status
// of each thread, delivers hook events according to each thread's mask
// and runs on a simulated clock.
type Runtime struct {
	threads          map[hook.ThreadID]*Thread
	names            map[string]*Thread
	main             *Thread
	nextID           hook.ThreadID
	values           map[any]any
	now              time.Time
	inDebugger       bool
	nativeReturnLine bool
}

// NewRuntime creates a runtime with a main thread and no frames.
func NewRuntime() *Runtime {
	rt := &Runtime{
		threads: map[hook.ThreadID]*Thread{},
		names:   map[string]*Thread{},
		values:  map[any]any{},
		now:     time.UnixMilli(0),
	}
	rt.main = rt.NewThread(MainThread)
	rt.main.status = hook.StatusOK
	return rt
}

// SetNativeReturnLine makes the runtime report a line event for the
// caller's current line right after a function returns, like VMs that
// need no line event emulation.
func (rt *Runtime) SetNativeReturnLine(enabled bool) {
	rt.nativeReturnLine = enabled
}

// NewThread creates a suspended thread with the given name.
func (rt *Runtime) NewThread(name string) *Thread {
	rt.nextID++
	t := &Thread{id: rt.nextID, name: name, rt: rt, status: hook.StatusSuspended}
	rt.threads[t.id] = t
	rt.names[name] = t
	return t
}

// Thread returns the thread with the given name.
func (rt *Runtime) Thread(name string) (*Thread, bool) {
	t, ok := rt.names[name]
	return t, ok
}

// Collect drops the runtime's reference to a thread, as a garbage
// collector would once nothing else refers to it.
func (rt *Runtime) Collect(name string) {
	if t, ok := rt.names[name]; ok && t != rt.main {
		delete(rt.names, name)
		delete(rt.threads, t.id)
	}
}

// SetInDebugger marks whether debugger code is running on the VM.
func (rt *Runtime) SetInDebugger(inside bool) {
	rt.inDebugger = inside
}

// InDebugger reports whether debugger code is running on the VM.
func (rt *Runtime) InDebugger() bool {
	return rt.inDebugger
}

// Advance moves the simulated clock forward.
func (rt *Runtime) Advance(d time.Duration) {
	rt.now = rt.now.Add(d)
}

// Now returns the simulated time.
func (rt *Runtime) Now() time.Time {
	return rt.now
}

// MainThread implements hook.Runtime.
func (rt *Runtime) MainThread() hook.Thread {
	return rt.main
}

// Lookup implements hook.Runtime.
func (rt *Runtime) Lookup(id hook.ThreadID) (hook.Thread, bool) {
	t, ok := rt.threads[id]
	if !ok {
		return nil, false
	}
	return t, true
}

// Value implements hook.Runtime.
func (rt *Runtime) Value(key any) any {
	return rt.values[key]
}

// SetValue implements hook.Runtime.
func (rt *Runtime) SetValue(key, value any) {
	rt.values[key] = value
}

var _ hook.Runtime = (*Runtime)(nil)
