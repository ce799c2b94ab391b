package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/grld/hook"
)

func writeTrace(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const passingTrace = `
breakpoints:
  "@a.lua": [2]
ops:
  - {op: call, source: "@a.lua", line: 1}
  - {op: line, line: 2}
expect:
  - {source: "@a.lua", line: 2, reason: breakpoint}
`

const failingTrace = `
breakpoints:
  "@a.lua": [3]
ops:
  - {op: call, source: "@a.lua", line: 1}
  - {op: line, line: 2}
expect:
  - {source: "@a.lua", line: 2, reason: breakpoint}
`

func TestDiscoverTraces(t *testing.T) {
	dir := t.TempDir()
	a := writeTrace(t, dir, "a.trace.yaml", passingTrace)
	b := writeTrace(t, dir, "nested/b.trace.yml", passingTrace)
	writeTrace(t, dir, "notes.yaml", "ops: []")

	files, err := DiscoverTraces([]string{dir})
	require.NoError(t, err)
	require.Equal(t, []string{a}, files)

	files, err = DiscoverTraces([]string{dir + "/..."})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{a, b}, files)

	files, err = DiscoverTraces([]string{filepath.Join(dir, "*.yaml"), a})
	require.NoError(t, err)
	require.Equal(t, []string{a}, files)

	_, err = DiscoverTraces([]string{filepath.Join(dir, "missing")})
	require.ErrorContains(t, err, "path not found")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeTrace(t, dir, "pass.trace.yaml", passingTrace)
	writeTrace(t, dir, "fail.trace.yaml", failingTrace)
	writeTrace(t, dir, "broken.trace.yaml", "ops:\n  - {op: fly}\n")

	summary, err := Check(CheckConfig{Patterns: []string{dir}})
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)
	require.Equal(t, 1, summary.Passed)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Errors)
	require.False(t, summary.Success())

	for _, r := range summary.Results {
		switch filepath.Base(r.Path) {
		case "fail.trace.yaml":
			require.Equal(t, CheckFailed, r.Status)
			require.Equal(t, []string{"break #1: missing, want @a.lua:2 breakpoint"}, r.Diffs)
		case "broken.trace.yaml":
			require.Equal(t, CheckError, r.Status)
			require.Error(t, r.Err)
		}
	}

	summary, err = Check(CheckConfig{Patterns: []string{dir}, RunPattern: "pass"})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	require.True(t, summary.Success())

	_, err = Check(CheckConfig{Patterns: []string{dir}, RunPattern: "("})
	require.ErrorContains(t, err, "invalid run pattern")
}

func TestCheckTestdata(t *testing.T) {
	summary, err := Check(CheckConfig{Patterns: []string{"testdata"}})
	require.NoError(t, err)
	require.NotEmpty(t, summary.Results)
	for _, r := range summary.Results {
		require.Equal(t, CheckPassed, r.Status, "%s: %v %v", r.Path, r.Err, r.Diffs)
	}
}

func TestCheckOptions(t *testing.T) {
	summary, err := Check(CheckConfig{
		Patterns: []string{"testdata/step_over_return.trace.yaml"},
		Options:  []hook.Option{hook.WithLineEmulation(false)},
	})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	r := summary.Results[0]
	require.Equal(t, CheckFailed, r.Status)
	require.Equal(t, []string{
		"break #2: got main @a.lua:4 step, want @a.lua:3 step",
		"break #3: got main @a.lua:5 step, want @a.lua:4 step",
	}, r.Diffs)
}

func TestCompareUnexpectedBreak(t *testing.T) {
	tr := &Trace{Expect: []Expectation{{Thread: "co", Source: "@a.lua", Line: 1, Reason: "step"}}}
	diffs := tr.Compare(&Result{Breaks: []BreakRecord{
		{Thread: "main", Source: "@a.lua", Line: 1, Reason: "step"},
		{Thread: "main", Source: "@a.lua", Line: 2, Reason: "step"},
	}})
	require.Equal(t, []string{
		"break #1: got main @a.lua:1 step, want co @a.lua:1 step",
		"break #2: unexpected main @a.lua:2 step",
	}, diffs)
}

func TestCheckStatusString(t *testing.T) {
	require.Equal(t, "PASS", CheckPassed.String())
	require.Equal(t, "FAIL", CheckFailed.String())
	require.Equal(t, "ERROR", CheckError.String())
}
