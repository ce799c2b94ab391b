package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/deepnoodle-ai/grld/hook"
)

// CheckConfig selects the traces verified by Check.
type CheckConfig struct {
	// Patterns lists files, directories, globs or "dir/..." trees to
	// search for traces. Default is the current directory.
	Patterns []string

	// RunPattern filters traces by path regex.
	RunPattern string

	// Options are applied to the session of every trace.
	Options []hook.Option
}

// CheckStatus is the outcome of verifying one trace.
type CheckStatus int

const (
	CheckPassed CheckStatus = iota
	CheckFailed
	CheckError
)

func (s CheckStatus) String() string {
	switch s {
	case CheckPassed:
		return "PASS"
	case CheckFailed:
		return "FAIL"
	case CheckError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CheckResult is the outcome of replaying one trace against its
// expectations.
type CheckResult struct {
	Path     string
	Status   CheckStatus
	Err      error
	Diffs    []string
	Duration time.Duration
	Result   *Result
}

// CheckSummary aggregates the results of a Check run.
type CheckSummary struct {
	Results  []*CheckResult
	Passed   int
	Failed   int
	Errors   int
	Duration time.Duration
}

// Success reports whether every trace passed.
func (s *CheckSummary) Success() bool {
	return s.Failed == 0 && s.Errors == 0
}

func (s *CheckSummary) computeTotals() {
	s.Passed, s.Failed, s.Errors = 0, 0, 0
	for _, r := range s.Results {
		switch r.Status {
		case CheckPassed:
			s.Passed++
		case CheckFailed:
			s.Failed++
		case CheckError:
			s.Errors++
		}
	}
}

// DiscoverTraces finds all *.trace.yaml files matching the given patterns.
func DiscoverTraces(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	var files []string
	seen := map[string]bool{}
	add := func(path string) {
		if isTraceFile(path) && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}

	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		recursive := false
		dir := pattern
		if strings.HasSuffix(pattern, "...") {
			recursive = true
			dir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if dir == "" {
				dir = "."
			}
		}
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", dir)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}
		if recursive {
			err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(dir, e.Name()))
			}
		}
	}
	return files, nil
}

func isTraceFile(path string) bool {
	return strings.HasSuffix(path, ".trace.yaml") || strings.HasSuffix(path, ".trace.yml")
}

// Check replays every discovered trace and compares its breaks with the
// trace's expectations. Traces without expectations pass when they
// replay without error.
func Check(cfg CheckConfig) (*CheckSummary, error) {
	files, err := DiscoverTraces(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	var runRe *regexp.Regexp
	if cfg.RunPattern != "" {
		if runRe, err = regexp.Compile(cfg.RunPattern); err != nil {
			return nil, fmt.Errorf("invalid run pattern: %w", err)
		}
	}

	summary := &CheckSummary{}
	start := time.Now()
	for _, file := range files {
		if runRe != nil && !runRe.MatchString(file) {
			continue
		}
		summary.Results = append(summary.Results, CheckTrace(file, cfg.Options...))
	}
	summary.Duration = time.Since(start)
	summary.computeTotals()
	return summary, nil
}

// CheckTrace replays a single trace file against its expectations.
func CheckTrace(path string, opts ...hook.Option) *CheckResult {
	res := &CheckResult{Path: path}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	tr, err := LoadTrace(path)
	if err != nil {
		res.Status, res.Err = CheckError, err
		return res
	}
	result, err := Run(tr, opts...)
	if err != nil {
		res.Status, res.Err = CheckError, err
		return res
	}
	res.Result = result
	if len(tr.Expect) > 0 {
		res.Diffs = tr.Compare(result)
	}
	if len(res.Diffs) > 0 {
		res.Status = CheckFailed
	}
	return res
}
