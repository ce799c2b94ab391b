package hook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmulatedLineShowsCallSite(t *testing.T) {
	f := newFixture(t, WithLineEmulation(true))
	th := f.rt.main
	f.line(th, 5)
	f.call(th, "@b.lua", 1)
	f.line(th, 21)
	f.arm(th, StepOver)

	f.ret(th)
	require.True(t, f.s.Emulating())
	require.Equal(t, DefaultMask|MaskCount, th.mask)
	require.Equal(t, 1, th.count)

	f.s.OnEvent(th, Record{Event: EventCount, Line: -1})
	require.Len(t, f.col.breaks, 1)
	require.Equal(t, Location{Source: "@a.lua", Line: 5}, f.s.LastBreak().Location)

	require.False(t, f.s.Emulating())
	require.Equal(t, DefaultMask, th.mask)
	require.Zero(t, th.count)
	require.Equal(t, uint64(1), f.s.Stats().Emulated)
}

func TestTailReturnArmsEmulation(t *testing.T) {
	f := newFixture(t, WithLineEmulation(true))
	th := f.rt.main
	f.call(th, "@b.lua", 1)
	f.arm(th, StepInside)

	f.s.OnEvent(th, Record{Event: EventTailReturn, Line: -1})
	require.True(t, f.s.Emulating())
}

func TestEmulationNeedsActiveStep(t *testing.T) {
	f := newFixture(t, WithLineEmulation(true))
	th := f.rt.main
	f.call(th, "@b.lua", 1)
	f.ret(th)
	require.False(t, f.s.Emulating())
	require.Equal(t, DefaultMask, th.mask)
}

func TestNextEventDisarmsEmulation(t *testing.T) {
	f := newFixture(t, WithLineEmulation(true))
	th := f.rt.main
	f.call(th, "@b.lua", 1)
	f.arm(th, StepOutside)
	f.ret(th)
	require.True(t, f.s.Emulating())

	// A genuine line event arrives before the count event.
	f.s.SetStepMode(StepNone, 0)
	f.line(th, 2)
	require.False(t, f.s.Emulating())
	require.Equal(t, DefaultMask, th.mask)
}

func TestEmulationDisabled(t *testing.T) {
	f := newFixture(t)
	th := f.rt.main
	f.call(th, "@b.lua", 1)
	f.arm(th, StepInside)
	f.ret(th)
	require.False(t, f.s.Emulating())

	// Count events are not presented as lines.
	f.s.OnEvent(th, Record{Event: EventCount, Line: -1})
	require.Empty(t, f.col.breaks)
}

func TestEmulationWhileInactive(t *testing.T) {
	f := newFixture(t, WithLineEmulation(true))
	th := f.rt.main
	f.call(th, "@b.lua", 1)
	f.arm(th, StepOver)
	f.s.SetHookActive(false)

	f.ret(th)
	f.s.OnEvent(th, Record{Event: EventCount, Line: -1})
	require.Empty(t, f.col.breaks)
	require.False(t, f.s.Emulating())
}
