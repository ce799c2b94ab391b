package hook

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrSessionExists is returned by Open when the runtime already has a
	// debug session.
	ErrSessionExists = errors.New("debug session already open for this runtime")

	// ErrNilRuntime is returned by Open when no runtime is given.
	ErrNilRuntime = errors.New("runtime is nil")

	// ErrNilCollaborator is returned by Open when no collaborator is given.
	ErrNilCollaborator = errors.New("collaborator is nil")
)

const (
	// initialDepth is the depth assumed before the first probe; the
	// session is opened from inside a running function.
	initialDepth = 1

	// noLine marks lastBreak as "never broke".
	noLine = -100
)

// sessionKey is the key of the session in the runtime's keyed store.
type sessionKey struct{}

// Location is a source position.
type Location struct {
	Source string
	Line   int
}

// Session is the debug state of one VM instance. It is created once by
// Open and lives as long as the runtime that stores it.
//
// A Session is not safe for concurrent use. Every method, and the hook it
// installs, must be called from the goroutine executing the VM.
type Session struct {
	id           uuid.UUID
	rt           Runtime
	collab       Collaborator
	cfg          Config
	logger       zerolog.Logger
	now          func() time.Time
	isFileSource func(string) bool
	hook         HookFunc

	hookActive bool
	reentrant  bool
	lastPoll   int64 // unix milliseconds

	stepMode     StepMode
	stepTarget   ThreadID
	initialDepth int
	depth        int

	lastBreak Break
	aliases   AliasTable
	cache     fileCache
	emulating bool

	stats Stats
}

// Open creates the debug session of rt and stores it in the runtime's
// keyed store. The session starts inactive with no breakpoint table.
func Open(rt Runtime, collab Collaborator, opts ...Option) (*Session, error) {
	if rt == nil {
		return nil, ErrNilRuntime
	}
	if collab == nil {
		return nil, ErrNilCollaborator
	}
	if _, ok := SessionOf(rt); ok {
		return nil, ErrSessionExists
	}
	s := &Session{
		id:           uuid.Must(uuid.NewV4()),
		rt:           rt,
		collab:       collab,
		cfg:          DefaultConfig(),
		logger:       zerolog.Nop(),
		now:          time.Now,
		isFileSource: isAtSource,
		reentrant:    true,
		initialDepth: initialDepth,
		depth:        initialDepth,
		lastBreak:    Break{Location: Location{Line: noLine}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.LogSampleBurst > 0 {
		s.logger = s.logger.Sample(&zerolog.BurstSampler{
			Burst:  s.cfg.LogSampleBurst,
			Period: time.Second,
		})
	}
	s.logger = s.logger.With().Str("session", s.id.String()).Logger()
	s.hook = s.OnEvent
	rt.SetValue(sessionKey{}, s)
	return s, nil
}

// SessionOf returns the session previously opened for rt.
func SessionOf(rt Runtime) (*Session, bool) {
	if rt == nil {
		return nil, false
	}
	s, ok := rt.Value(sessionKey{}).(*Session)
	return s, ok
}

// Attach opens a session for rt, installs the breakpoint table, hooks the
// main thread and activates the hook.
func Attach(rt Runtime, collab Collaborator, aliases AliasTable, opts ...Option) (*Session, error) {
	s, err := Open(rt, collab, opts...)
	if err != nil {
		return nil, err
	}
	s.Init(aliases)
	s.SetHook(rt.MainThread())
	s.SetHookActive(true)
	return s, nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Runtime returns the runtime the session debugs.
func (s *Session) Runtime() Runtime {
	return s.rt
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Init installs the breakpoint alias table.
func (s *Session) Init(aliases AliasTable) {
	s.aliases = aliases
	s.cache.reset()
}

// SetHookActive enables or disables the dispatcher. Enabling assumes the
// call is made from debugger code, so the session stays quiet until the
// reentrancy probe reports that application code is running again.
func (s *Session) SetHookActive(active bool) {
	s.hookActive = active
	if active {
		s.reentrant = true
	}
}

// Active reports whether the dispatcher is enabled.
func (s *Session) Active() bool {
	return s.hookActive
}

// Reentrant reports whether the session currently considers debugger
// code to be running.
func (s *Session) Reentrant() bool {
	return s.reentrant
}

// SetHook installs the dispatcher on t for call, return and line events.
func (s *Session) SetHook(t Thread) {
	t.SetHook(s.hook, DefaultMask, 0)
}

// SetStepMode sets the stepping intent. target selects the thread the
// step applies to; zero applies it to whichever thread runs.
func (s *Session) SetStepMode(mode StepMode, target ThreadID) {
	s.stepMode = mode
	s.stepTarget = target
}

// StepMode returns the current stepping intent and its target thread.
func (s *Session) StepMode() (StepMode, ThreadID) {
	return s.stepMode, s.stepTarget
}

// SetStepDepth rebases the step reference depth relDepth frames above the
// last known call stack depth.
func (s *Session) SetStepDepth(relDepth int) {
	s.initialDepth = s.depth - relDepth
	assertf(s.initialDepth >= 0, "initial callstack depth %d is negative", s.initialDepth)
}

// Depth returns the last known call stack depth and the step reference
// depth.
func (s *Session) Depth() (current, initial int) {
	return s.depth, s.initialDepth
}

// LastBreak returns where and why the session last suspended execution.
func (s *Session) LastBreak() Break {
	return s.lastBreak
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// Emulating reports whether a synthetic line event is pending.
func (s *Session) Emulating() bool {
	return s.emulating
}
