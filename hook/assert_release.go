//go:build !grld_debug

package hook

// AssertionsEnabled reports whether the package was built with the
// grld_debug tag.
const AssertionsEnabled = false

func assertf(bool, string, ...any) {}

func trap(error) {}
