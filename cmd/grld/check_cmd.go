package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/grld/hook"
	"github.com/deepnoodle-ai/grld/replay"
)

var errCheckFailed = errors.New("trace check failed")

var green = color.New(color.FgGreen).SprintFunc()

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Replay traces and compare their breaks with the expected ones",
	Long: `Check replays every *.trace.yaml file found in the given paths and
compares the breaks taken with the trace's "expect" list.

Paths may be files, directories, globs, or "dir/..." to search recursively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sessionConfig()
		if err != nil {
			return err
		}
		var opts []hook.Option
		if cfg != nil {
			opts = append(opts, hook.WithConfig(*cfg))
		}
		summary, err := replay.Check(replay.CheckConfig{
			Patterns:   args,
			RunPattern: viper.GetString("run"),
			Options:    opts,
		})
		if err != nil {
			return err
		}
		printCheck(cmd.OutOrStdout(), summary, viper.GetBool("verbose"))
		if !summary.Success() {
			return errCheckFailed
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("run", "", "Only check traces whose path matches this regex")
	checkCmd.Flags().BoolP("verbose", "v", false, "Print every break of passing traces")
	viper.BindPFlag("run", checkCmd.Flags().Lookup("run"))
	viper.BindPFlag("verbose", checkCmd.Flags().Lookup("verbose"))
}

// printCheck prints results in the style of go test.
func printCheck(w io.Writer, summary *replay.CheckSummary, verbose bool) {
	for _, r := range summary.Results {
		fmt.Fprintf(w, "=== RUN   %s\n", r.Path)
		var status string
		switch r.Status {
		case replay.CheckPassed:
			status = green("--- PASS:")
		case replay.CheckFailed:
			status = red("--- FAIL:")
		default:
			status = red("--- ERROR:")
		}
		fmt.Fprintf(w, "%s %s (%.3fs)\n", status, r.Path, r.Duration.Seconds())
		if r.Err != nil {
			fmt.Fprintf(w, "    %s\n", r.Err)
		}
		for _, diff := range r.Diffs {
			fmt.Fprintf(w, "    %s\n", diff)
		}
		if verbose && r.Result != nil {
			for i, b := range r.Result.Breaks {
				fmt.Fprintf(w, "    %s\n", faint(fmt.Sprintf("#%d %s %s:%d %s", i+1, b.Thread, b.Source, b.Line, b.Reason)))
			}
		}
	}

	fmt.Fprintln(w)
	if summary.Success() {
		fmt.Fprintln(w, green("PASS"))
	} else {
		fmt.Fprintln(w, red("FAIL"))
	}
	var parts []string
	if summary.Passed > 0 {
		parts = append(parts, green(fmt.Sprintf("%d passed", summary.Passed)))
	}
	if summary.Failed > 0 {
		parts = append(parts, red(fmt.Sprintf("%d failed", summary.Failed)))
	}
	if summary.Errors > 0 {
		parts = append(parts, red(fmt.Sprintf("%d errors", summary.Errors)))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, ", "))
	}
}
