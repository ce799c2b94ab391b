package hook

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	// DefaultPollInterval is the minimum time between two remote command
	// polls.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultLogSampleBurst is the number of diagnostics a session writes
	// per second before sampling kicks in.
	DefaultLogSampleBurst = 10
)

// Config holds the tunables of a debug session.
type Config struct {
	// PollInterval is the minimum wall-clock time between calls to
	// Collaborator.PollRemoteCommands.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// EmulateLineEvents synthesizes a line event for the caller's line
	// after a function returns while stepping. Disable it on VMs whose
	// hook facility already reports that event.
	EmulateLineEvents bool `mapstructure:"emulate_line_events" yaml:"emulate_line_events"`

	// LogSampleBurst bounds the diagnostics written per second. Zero
	// disables sampling.
	LogSampleBurst uint32 `mapstructure:"log_sample_burst" yaml:"log_sample_burst"`
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		PollInterval:      DefaultPollInterval,
		EmulateLineEvents: true,
		LogSampleBurst:    DefaultLogSampleBurst,
	}
}

// Validate reports every invalid field of the config.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.PollInterval < 0 {
		result = multierror.Append(result, errors.New("poll_interval must not be negative"))
	}
	if c.PollInterval > time.Hour {
		result = multierror.Append(result, errors.New("poll_interval must be at most 1h"))
	}
	return result.ErrorOrNil()
}
