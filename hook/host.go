package hook

import "fmt"

// Event identifies the VM boundary a hook invocation was fired for.
type Event uint8

const (
	// EventCall fires when a function is entered.
	EventCall Event = iota

	// EventReturn fires when a function is about to return.
	EventReturn

	// EventTailReturn fires for a return that was elided by a tail call.
	// Only some VMs report it.
	EventTailReturn

	// EventLine fires when execution reaches a new source line.
	EventLine

	// EventCount fires after a configured number of instructions.
	EventCount
)

func (e Event) String() string {
	switch e {
	case EventCall:
		return "call"
	case EventReturn:
		return "return"
	case EventTailReturn:
		return "tailreturn"
	case EventLine:
		return "line"
	case EventCount:
		return "count"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// Mask selects which events a VM delivers to an installed hook.
type Mask uint8

const (
	MaskCall Mask = 1 << iota
	MaskReturn
	MaskLine
	MaskCount
)

// DefaultMask is the mask installed by Session.SetHook.
const DefaultMask = MaskCall | MaskReturn | MaskLine

// Has reports whether every bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other == other
}

// Wants reports whether an event of the given kind passes the mask.
// A tail return is delivered under MaskReturn.
func (m Mask) Wants(e Event) bool {
	switch e {
	case EventCall:
		return m.Has(MaskCall)
	case EventReturn, EventTailReturn:
		return m.Has(MaskReturn)
	case EventLine:
		return m.Has(MaskLine)
	case EventCount:
		return m.Has(MaskCount)
	}
	return false
}

// Record is what the VM hands to a hook on each event.
type Record struct {
	// Event is the kind of boundary reached.
	Event Event

	// Line is the source line for EventLine and -1 for every other event.
	Line int
}

// Status is the run state of an execution context.
type Status uint8

const (
	// StatusOK means the thread is running, or is resumable but not
	// yielded (a "normal" coroutine, or one that has run to completion).
	StatusOK Status = iota

	// StatusSuspended means the thread yielded and waits to be resumed.
	StatusSuspended

	// StatusDead means the VM reports the thread as finished.
	StatusDead

	// StatusErrored means the thread stopped on an unhandled error.
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuspended:
		return "suspended"
	case StatusDead:
		return "dead"
	case StatusErrored:
		return "errored"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Frame describes one activation record of a thread.
type Frame struct {
	// Source identifies the chunk the function was loaded from. File
	// backed chunks are conventionally prefixed with "@".
	Source string

	// Line is the line currently executing in this frame, or -1 if the
	// VM has no line information for it.
	Line int
}

// ThreadID is a stable handle for an execution context. The zero value
// means "no thread".
type ThreadID uint64

// Thread is an execution context (coroutine) of the host VM.
//
// Implementations are only ever called from the goroutine that is
// executing the VM.
type Thread interface {
	// ID returns the handle of this thread. It must be non-zero.
	ID() ThreadID

	// Frame returns the activation record at the given level, where
	// level 0 is the running function. The boolean is false when the
	// stack has no frame at that level.
	Frame(level int) (Frame, bool)

	// StackTop returns the number of values on the thread's value stack.
	StackTop() int

	// Status returns the run state of the thread.
	Status() Status

	// SetHook installs fn for the events selected by mask. When mask
	// includes MaskCount, fn also fires every count instructions.
	// A nil fn or a zero mask removes the hook.
	SetHook(fn HookFunc, mask Mask, count int)
}

// Runtime is the VM instance being debugged.
type Runtime interface {
	// MainThread returns the root execution context of the VM.
	MainThread() Thread

	// Lookup resolves a thread handle. It returns false once the thread
	// has been collected by the VM.
	Lookup(id ThreadID) (Thread, bool)

	// Value returns the entry stored under key in the VM's keyed store.
	Value(key any) any

	// SetValue stores value under key in the VM's keyed store.
	SetValue(key, value any)
}

// HookFunc is the signature of a function the VM invokes on hook events.
type HookFunc func(t Thread, rec Record)
