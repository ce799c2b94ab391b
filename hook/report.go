package hook

import (
	"github.com/deepnoodle-ai/grld/errz"
)

// wrap attaches the callback kind to err unless err already carries one,
// as recovered panics do.
func wrap(cb errz.Callback, err error) *errz.CallbackError {
	if cbErr, ok := errz.AsCallbackError(err); ok {
		return cbErr
	}
	return errz.NewCallbackError(cb, err)
}

// report writes a collaborator failure to the diagnostic stream. Builds
// with assertions enabled also trap into an attached debugger.
func (s *Session) report(err *errz.CallbackError) {
	s.stats.Failures++
	ev := s.logger.Error().
		Err(err.Cause).
		Stringer("callback", err.Callback).
		Bool("panic", err.Panic)
	if err.Source != "" {
		ev = ev.Str("source", err.Source).Int("line", err.Line)
	}
	ev.Msg("debugger callback failed")
	trap(err)
}
