package hook

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Session.
type Option func(*Session)

// WithConfig replaces the session configuration.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithPollInterval sets how often the collaborator is polled for remote
// commands. Zero polls whenever the clock has advanced since the last
// poll.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		s.cfg.PollInterval = d
	}
}

// WithLineEmulation enables or disables the post-return line event
// emulation. Disable it for VMs that natively report the caller's line
// after a return.
func WithLineEmulation(enabled bool) Option {
	return func(s *Session) {
		s.cfg.EmulateLineEvents = enabled
	}
}

// WithLogger sets the diagnostic stream for collaborator failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock used for poll scheduling.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithFileSource overrides how the engine decides whether a source id
// names a file that can be registered lazily. The default accepts ids
// starting with "@".
func WithFileSource(fn func(source string) bool) Option {
	return func(s *Session) {
		s.isFileSource = fn
	}
}

func isAtSource(source string) bool {
	return strings.HasPrefix(source, "@")
}
