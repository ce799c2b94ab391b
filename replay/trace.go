package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/deepnoodle-ai/grld/hook"
)

// Op kinds understood by the player.
const (
	OpSpawn         = "spawn"
	OpCall          = "call"
	OpLine          = "line"
	OpReturn        = "return"
	OpTailReturn    = "tailreturn"
	OpPush          = "push"
	OpYield         = "yield"
	OpResume        = "resume"
	OpError         = "error"
	OpFinish        = "finish"
	OpKill          = "kill"
	OpCollect       = "collect"
	OpEnterDebugger = "enter-debugger"
	OpLeaveDebugger = "leave-debugger"
	OpSetBreak      = "set-break"
	OpClearBreak    = "clear-break"
	OpStep          = "step"
)

var knownOps = map[string]bool{
	OpSpawn: true, OpCall: true, OpLine: true, OpReturn: true,
	OpTailReturn: true, OpPush: true, OpYield: true, OpResume: true,
	OpError: true, OpFinish: true, OpKill: true, OpCollect: true,
	OpEnterDebugger: true, OpLeaveDebugger: true, OpSetBreak: true,
	OpClearBreak: true, OpStep: true,
}

// TraceConfig controls how a trace is replayed.
type TraceConfig struct {
	// Emulate enables post-return line event emulation. Defaults to the
	// opposite of NativeReturnLine.
	Emulate *bool `yaml:"emulate"`

	// NativeReturnLine makes the simulated VM report the caller's line
	// after a return on its own.
	NativeReturnLine bool `yaml:"native_return_line"`

	// TickMillis is how far the simulated clock advances per op.
	TickMillis int `yaml:"tick_ms"`

	// PollIntervalMillis overrides the session poll interval.
	PollIntervalMillis *int `yaml:"poll_interval_ms"`
}

// Op is one step of a recorded execution.
type Op struct {
	Op     string `yaml:"op"`
	Thread string `yaml:"thread,omitempty"`
	Source string `yaml:"source,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Values int    `yaml:"values,omitempty"`
	Mode   string `yaml:"mode,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
}

// ResponseSpec is the YAML form of a Response.
type ResponseSpec struct {
	Mode  string `yaml:"mode"`
	Depth int    `yaml:"depth,omitempty"`
}

// Expectation is a break a trace is expected to produce. An empty Thread
// matches any thread.
type Expectation struct {
	Thread string `yaml:"thread,omitempty"`
	Source string `yaml:"source"`
	Line   int    `yaml:"line"`
	Reason string `yaml:"reason"`
}

func (e Expectation) String() string {
	s := fmt.Sprintf("%s:%d %s", e.Source, e.Line, e.Reason)
	if e.Thread != "" {
		s = e.Thread + " " + s
	}
	return s
}

// Trace is a recorded execution together with the breakpoints and front
// end responses to replay it with. Expect, when present, lists the breaks
// the replay must produce, in order.
type Trace struct {
	Config      TraceConfig       `yaml:"config"`
	Breakpoints map[string][]int  `yaml:"breakpoints"`
	Aliases     map[string]string `yaml:"aliases"`
	Responses   []ResponseSpec    `yaml:"responses"`
	Ops         []Op              `yaml:"ops"`
	Expect      []Expectation     `yaml:"expect"`
}

// LoadTrace reads and validates a YAML trace file.
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tr, err := ParseTrace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// ParseTrace decodes and validates a YAML trace.
func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, err
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate reports every malformed op and response of the trace.
func (tr *Trace) Validate() error {
	var result *multierror.Error
	if tr.Config.TickMillis < 0 {
		result = multierror.Append(result, fmt.Errorf("config: tick_ms must not be negative"))
	}
	for i, r := range tr.Responses {
		if _, err := hook.ParseStepMode(r.Mode); err != nil {
			result = multierror.Append(result, fmt.Errorf("responses[%d]: %w", i, err))
		}
	}
	for i, op := range tr.Ops {
		if !knownOps[op.Op] {
			result = multierror.Append(result, fmt.Errorf("ops[%d]: unknown op %q", i, op.Op))
			continue
		}
		switch op.Op {
		case OpCall, OpSetBreak, OpClearBreak:
			if op.Source == "" {
				result = multierror.Append(result, fmt.Errorf("ops[%d]: %s requires a source", i, op.Op))
			}
		case OpSpawn, OpCollect:
			if op.Thread == "" || op.Thread == MainThread {
				result = multierror.Append(result, fmt.Errorf("ops[%d]: %s requires a coroutine name", i, op.Op))
			}
		case OpStep:
			if _, err := hook.ParseStepMode(op.Mode); err != nil {
				result = multierror.Append(result, fmt.Errorf("ops[%d]: %w", i, err))
			}
		}
	}
	for i, e := range tr.Expect {
		if !knownReasons[e.Reason] {
			result = multierror.Append(result, fmt.Errorf("expect[%d]: unknown reason %q", i, e.Reason))
		}
	}
	return result.ErrorOrNil()
}

var knownReasons = map[string]bool{
	hook.BreakStep.String():       true,
	hook.BreakpointHit.String():   true,
	hook.BreakDeadTarget.String(): true,
}

// Compare lists the differences between the breaks of result and the
// expected ones.
func (tr *Trace) Compare(result *Result) []string {
	var diffs []string
	n := len(tr.Expect)
	if len(result.Breaks) > n {
		n = len(result.Breaks)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(result.Breaks):
			diffs = append(diffs, fmt.Sprintf("break #%d: missing, want %s", i+1, tr.Expect[i]))
		case i >= len(tr.Expect):
			diffs = append(diffs, fmt.Sprintf("break #%d: unexpected %s", i+1, observed(result.Breaks[i])))
		default:
			want, got := tr.Expect[i], result.Breaks[i]
			if want.Source != got.Source || want.Line != got.Line || want.Reason != got.Reason ||
				(want.Thread != "" && want.Thread != got.Thread) {
				diffs = append(diffs, fmt.Sprintf("break #%d: got %s, want %s", i+1, observed(got), want))
			}
		}
	}
	return diffs
}

func observed(b BreakRecord) string {
	return Expectation{Thread: b.Thread, Source: b.Source, Line: b.Line, Reason: b.Reason}.String()
}

// emulate reports whether line event emulation is on for this trace.
func (c TraceConfig) emulate() bool {
	if c.Emulate != nil {
		return *c.Emulate
	}
	return !c.NativeReturnLine
}

func (c TraceConfig) tick() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

func (tr *Trace) responses() []Response {
	out := make([]Response, 0, len(tr.Responses))
	for _, r := range tr.Responses {
		mode, _ := hook.ParseStepMode(r.Mode)
		out = append(out, Response{Mode: mode, Depth: r.Depth})
	}
	return out
}
