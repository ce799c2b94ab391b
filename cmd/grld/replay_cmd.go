package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/grld/hook"
	"github.com/deepnoodle-ai/grld/internal/logging"
	"github.com/deepnoodle-ai/grld/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace.yaml>",
	Short: "Replay a recorded execution trace through the hook engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := replay.LoadTrace(args[0])
		if err != nil {
			return err
		}
		breaks, err := cmd.Flags().GetStringSlice("break")
		if err != nil {
			return err
		}
		if err := addBreakpoints(tr, breaks); err != nil {
			return err
		}
		cfg, err := sessionConfig()
		if err != nil {
			return err
		}
		logger := logging.NewWithComponent(logging.Config{
			Level:   viper.GetString("log-level"),
			Pretty:  true,
			NoColor: viper.GetBool("no-color"),
		}, "replay")

		opts := []hook.Option{hook.WithLogger(logger)}
		if cfg != nil {
			// Trace settings apply first; explicit config wins.
			opts = append(opts, hook.WithConfig(*cfg))
		}
		if cmd.Flags().Changed("no-emulate") {
			opts = append(opts, hook.WithLineEmulation(!viper.GetBool("no-emulate")))
		}
		result, err := replay.Run(tr, opts...)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), result, viper.GetString("output"))
	},
}

func init() {
	replayCmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	replayCmd.Flags().StringSliceP("break", "b", nil, "Add a breakpoint as source:line")
	replayCmd.Flags().Bool("no-emulate", false, "Disable post-return line event emulation")
	viper.BindPFlag("output", replayCmd.Flags().Lookup("output"))
	viper.BindPFlag("no-emulate", replayCmd.Flags().Lookup("no-emulate"))
}

// sessionConfig returns the session config from the "session" key of the
// config file or environment, or nil when none is set.
func sessionConfig() (*hook.Config, error) {
	if !viper.IsSet("session") {
		return nil, nil
	}
	cfg := hook.DefaultConfig()
	if err := viper.UnmarshalKey("session", &cfg); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	return &cfg, nil
}

// parseBreak splits a "source:line" breakpoint spec. The line is taken
// after the last colon so sources may contain colons.
func parseBreak(spec string) (string, int, error) {
	i := strings.LastIndex(spec, ":")
	if i <= 0 || i == len(spec)-1 {
		return "", 0, fmt.Errorf("invalid breakpoint %q (want source:line)", spec)
	}
	line, err := strconv.Atoi(spec[i+1:])
	if err != nil || line < 0 {
		return "", 0, fmt.Errorf("invalid breakpoint line in %q", spec)
	}
	return spec[:i], line, nil
}

func addBreakpoints(tr *replay.Trace, specs []string) error {
	for _, spec := range specs {
		source, line, err := parseBreak(spec)
		if err != nil {
			return err
		}
		if tr.Breakpoints == nil {
			tr.Breakpoints = map[string][]int{}
		}
		tr.Breakpoints[source] = append(tr.Breakpoints[source], line)
	}
	return nil
}

func writeResult(w io.Writer, result *replay.Result, format string) error {
	switch strings.ToLower(format) {
	case "json":
		out, err := marshalJSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "", "text":
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeText(w io.Writer, result *replay.Result) error {
	for i, b := range result.Breaks {
		reason := b.Reason
		if reason == hook.BreakpointHit.String() {
			reason = yellow(reason)
		} else {
			reason = cyan(reason)
		}
		if _, err := fmt.Fprintf(w, "#%d %s %s:%d %s %s\n",
			i+1, b.Thread, b.Source, b.Line, reason,
			faint(fmt.Sprintf("depth=%d step=%s", b.Depth, b.Step))); err != nil {
			return err
		}
	}
	st := result.Stats
	_, err := fmt.Fprintf(w, "%s\n", faint(fmt.Sprintf(
		"%d breaks, %d events, %d suppressed, %d polls, %d failures",
		st.Breaks, st.Events, st.Suppressed, st.Polls, st.Failures)))
	return err
}
