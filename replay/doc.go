// Package replay is a simulated host VM for the hook engine.
//
// A Runtime keeps threads with call stacks and statuses and delivers hook
// events according to each thread's installed mask, including the
// instruction count hook the engine arms for line event emulation. A
// Frontend plays the remote debugger: it records every break and answers
// with scripted step commands.
//
// Traces describe an execution as a list of ops in YAML:
//
//	breakpoints:
//	  "@main.lua": [12]
//	responses:
//	  - mode: over
//	ops:
//	  - {op: call, source: "@main.lua", line: 1}
//	  - {op: line, line: 12}
//	  - {op: line, line: 13}
//
// Replaying a trace yields the breaks the engine took, which makes the
// package useful both for tests and for reproducing a debugging session
// offline with the grld command.
package replay
