package hook

// Collaborator is the debugger logic surrounding the hook engine: the code
// that talks to the remote front end, edits breakpoints and registers
// sources. The engine calls it synchronously from the VM thread.
//
// Errors returned by a Collaborator are reported on the session's
// diagnostic stream and never propagate into the VM. Panics are recovered
// and treated the same way.
type Collaborator interface {
	// DebuggerDepth reports whether debugger code is currently executing
	// on t, and if so at which stack level relative to base. inside is
	// false when t is running application code only.
	DebuggerDepth(t Thread, base int) (depth int, inside bool, err error)

	// PollRemoteCommands checks for commands sent by the front end. It is
	// called at most once per poll interval.
	PollRemoteCommands() error

	// RegisterSource is called the first time a file backed source with
	// no known breakpoint table is executed. It may return the lines with
	// breakpoints for that source, or nil.
	RegisterSource(source string) (LineSet, error)

	// NotifyBreak suspends t until the front end resumes it.
	NotifyBreak(t Thread) error
}

// NopCollaborator is a Collaborator that does nothing. Embed it to
// implement only the callbacks you need.
//
// DebuggerDepth reports that no debugger code is running.
type NopCollaborator struct{}

func (NopCollaborator) DebuggerDepth(Thread, int) (int, bool, error) { return 0, false, nil }
func (NopCollaborator) PollRemoteCommands() error                    { return nil }
func (NopCollaborator) RegisterSource(string) (LineSet, error)       { return nil, nil }
func (NopCollaborator) NotifyBreak(Thread) error                     { return nil }

var _ Collaborator = NopCollaborator{}
