package errz

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallbackError(t *testing.T) {
	err := NewCallbackError(CallbackPoll, io.ErrUnexpectedEOF)
	require.Equal(t, "poll failed: unexpected EOF", err.Error())
	require.Equal(t, -1, err.Line)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = NewCallbackError(CallbackNotifyBreak, errors.New("closed")).At("@a.lua", 10)
	require.Equal(t, "notify break failed at @a.lua:10: closed", err.Error())
}

func TestFromPanic(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{"boom", "register source panicked: boom"},
		{io.EOF, "register source panicked: EOF"},
		{42, "register source panicked: 42"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			err := FromPanic(CallbackRegisterSource, tt.value)
			require.True(t, err.Panic)
			require.Equal(t, tt.want, err.Error())
		})
	}
	require.ErrorIs(t, FromPanic(CallbackPoll, io.EOF), io.EOF)
}

func TestAsCallbackError(t *testing.T) {
	inner := FromPanic(CallbackDepthProbe, "x")
	wrapped := fmt.Errorf("probe: %w", inner)

	got, ok := AsCallbackError(wrapped)
	require.True(t, ok)
	require.Same(t, inner, got)

	_, ok = AsCallbackError(errors.New("plain"))
	require.False(t, ok)
}

func TestCallbackString(t *testing.T) {
	require.Equal(t, "depth probe", CallbackDepthProbe.String())
	require.Equal(t, "callback", Callback(99).String())
}

func TestAssertionf(t *testing.T) {
	err := Assertionf("depth %d is negative", -2)
	require.Equal(t, "assertion failed: depth -2 is negative", err.Error())
}
