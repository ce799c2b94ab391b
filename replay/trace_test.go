package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/grld/hook"
)

func TestParseTrace(t *testing.T) {
	tr, err := ParseTrace([]byte(`
config:
  emulate: false
  tick_ms: 5
  poll_interval_ms: 20
breakpoints:
  "@a.lua": [1, 2]
responses:
  - {mode: over, depth: 1}
  - mode: continue
ops:
  - {op: spawn, thread: co}
  - {op: push, thread: co, values: 3}
  - {op: step, mode: out, depth: 2}
`))
	require.NoError(t, err)
	require.False(t, tr.Config.emulate())
	require.Equal(t, 5*time.Millisecond, tr.Config.tick())
	require.Equal(t, 20, *tr.Config.PollIntervalMillis)
	require.Equal(t, []int{1, 2}, tr.Breakpoints["@a.lua"])
	require.Equal(t, []Response{
		{Mode: hook.StepOver, Depth: 1},
		{Mode: hook.StepNone},
	}, tr.responses())
	require.Equal(t, Op{Op: OpPush, Thread: "co", Values: 3}, tr.Ops[1])
	require.Equal(t, Op{Op: OpStep, Mode: "out", Depth: 2}, tr.Ops[2])
}

func TestTraceEmulateDefault(t *testing.T) {
	require.True(t, TraceConfig{}.emulate())
	require.False(t, TraceConfig{NativeReturnLine: true}.emulate())
	on := true
	require.True(t, TraceConfig{NativeReturnLine: true, Emulate: &on}.emulate())
}

func TestTraceValidate(t *testing.T) {
	_, err := ParseTrace([]byte(`
config:
  tick_ms: -1
responses:
  - mode: sideways
ops:
  - {op: jump}
  - {op: call, line: 1}
  - {op: spawn, thread: main}
  - {op: collect}
  - {op: step, mode: up}
  - {op: line, line: 1}
`))
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 7)
	require.ErrorContains(t, err, `ops[0]: unknown op "jump"`)
	require.ErrorContains(t, err, "ops[1]: call requires a source")
	require.ErrorContains(t, err, "ops[2]: spawn requires a coroutine name")
	require.ErrorContains(t, err, "responses[0]")
}

func TestParseTraceSyntaxError(t *testing.T) {
	_, err := ParseTrace([]byte("ops: [{op: line"))
	require.Error(t, err)
}

func TestLoadTrace(t *testing.T) {
	_, err := LoadTrace(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ops:\n  - {op: nope}\n"), 0o644))
	_, err = LoadTrace(path)
	require.ErrorContains(t, err, path)

	tr, err := LoadTrace("testdata/coroutine.trace.yaml")
	require.NoError(t, err)
	require.Len(t, tr.Ops, 9)
	require.Equal(t, 10, tr.Config.TickMillis)
}

func TestCleanSource(t *testing.T) {
	require.Equal(t, "@src/a.lua", CleanSource("@./src/a.lua"))
	require.Equal(t, "@a.lua", CleanSource("@lib/../a.lua"))
	require.Equal(t, "=stdin", CleanSource("=stdin"))
}
