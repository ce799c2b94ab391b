//go:build grld_debug

package hook

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/grld/errz"
)

func TestNegativeStepDepthPanics(t *testing.T) {
	require.True(t, AssertionsEnabled)
	f := newFixture(t)
	f.s.updateDepth(f.rt.main)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		require.IsType(t, &errz.AssertionError{}, r)
	}()
	f.s.SetStepDepth(5)
}
