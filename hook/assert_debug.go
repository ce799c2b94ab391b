//go:build grld_debug

// Internal invariant checks, compiled in with:
//
//	go build -tags grld_debug ./...
//	go test -tags grld_debug ./...

package hook

import (
	"os"
	"runtime"

	"github.com/deepnoodle-ai/grld/errz"
)

// AssertionsEnabled reports whether the package was built with the
// grld_debug tag.
const AssertionsEnabled = true

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(errz.Assertionf(format, args...))
	}
}

// trapEnabled is read once; set GRLD_TRAP=1 when running under a native
// debugger.
var trapEnabled = os.Getenv("GRLD_TRAP") != ""

// trap stops in an attached native debugger so a collaborator failure
// can be inspected where it happened.
func trap(error) {
	if trapEnabled {
		runtime.Breakpoint()
	}
}
