package autosave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestDefaults(t *testing.T) {
	s := New(0, -1)
	require.Equal(t, DefaultDelay, s.Delay())
	require.Equal(t, DefaultQuiet, s.quiet)
}

func TestOnlyLatestTouchSaves(t *testing.T) {
	s := New(500*time.Millisecond, time.Second)

	first := s.Touch()
	second := s.Touch()
	third := s.Touch()

	write, wait := s.Due(first, t0)
	require.False(t, write)
	require.Zero(t, wait)
	write, _ = s.Due(second, t0)
	require.False(t, write)

	write, wait = s.Due(third, t0)
	require.True(t, write)
	require.Zero(t, wait)
	require.False(t, s.Pending())

	write, _ = s.Due(third, t0)
	require.False(t, write, "a save is handed out once")
}

func TestExternalReloadDefersSave(t *testing.T) {
	s := New(500*time.Millisecond, time.Second)
	s.External(t0)
	seq := s.Touch()

	write, wait := s.Due(seq, t0.Add(300*time.Millisecond))
	require.False(t, write)
	require.Equal(t, 700*time.Millisecond, wait)
	require.True(t, s.Pending())

	write, wait = s.Due(seq, t0.Add(time.Second))
	require.True(t, write)
	require.Zero(t, wait)
}

func TestFlush(t *testing.T) {
	s := New(0, 0)
	require.False(t, s.Flush())
	s.Touch()
	require.True(t, s.Flush())
	require.False(t, s.Pending())
}
