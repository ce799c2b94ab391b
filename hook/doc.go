// Package hook turns a scripting VM into a steppable, breakpointable
// debuggee.
//
// The VM calls Session.OnEvent on every call, return, line and
// instruction count event. On each event the session decides whether
// execution must be suspended and, if so, hands control to the debugger
// front end through the Collaborator.
//
// # Session
//
// One Session exists per VM instance. It is stored in the runtime's keyed
// store and can be found again with SessionOf:
//
//	table := hook.NewBreakpoints()
//	table.Set("@main.lua", 10)
//
//	s, err := hook.Attach(rt, collab, table,
//	    hook.WithLogger(logger),
//	    hook.WithPollInterval(250*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//
// Attach is shorthand for Open, Init, SetHook on the main thread and
// SetHookActive(true). Coroutines created later are hooked with SetHook.
//
// # Stepping
//
// After a break the front end arms a step with SetStepMode and, when the
// user selected a frame other than the innermost one, SetStepDepth:
//
//	s.SetStepMode(hook.StepOver, t.ID())
//	s.SetStepDepth(0)
//
// Depths are compared relative to the depth at which the step was armed,
// so stepping works the same at any stack height and through recursion.
// A step bound to a coroutine that has died forces a break on whichever
// thread runs next.
//
// # Reentrancy
//
// While debugger code runs on the VM (serializing variables, polling the
// network), the session ignores events. Enabling the hook marks the
// session reentrant; the Collaborator's DebuggerDepth probe clears the
// flag as soon as it reports that only application code is running.
//
// # Line event emulation
//
// On VMs that report no line event for the caller's line after a return,
// the session briefly installs a one-instruction count hook and treats
// its event as a line event. Disable this with WithLineEmulation(false)
// when the VM reports that event itself.
//
// # Concurrency
//
// Nothing in this package takes a lock. A Session and the threads it is
// installed on must only be used from the goroutine running the VM.
package hook
