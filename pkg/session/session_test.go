package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_InitialState(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Empty(t, snap.BuildID)
	require.Empty(t, snap.Lines)
}

func TestSession_RunAssignsIDOnce(t *testing.T) {
	s := New()
	require.NoError(t, s.Run("b1"))
	require.Equal(t, StatusRunning, s.Status())
	require.Equal(t, "b1", s.Snapshot().BuildID)

	require.Error(t, s.Run("b2"))
	require.Equal(t, "b1", s.Snapshot().BuildID)
}

func TestSession_RunRejectsEmptyID(t *testing.T) {
	s := New()
	require.Error(t, s.Run(""))
	require.Equal(t, StatusIdle, s.Status())
}

func TestSession_AppendOnlyWhileRunning(t *testing.T) {
	s := New()
	require.Error(t, s.Append("too early"))

	require.NoError(t, s.Run("b1"))
	require.NoError(t, s.Append("compiling"))
	require.NoError(t, s.Append("linking"))
	require.Equal(t, []string{"compiling", "linking"}, s.Snapshot().Lines)

	require.NoError(t, s.Finish())
	require.Error(t, s.Append("too late"))
	require.Equal(t, []string{"compiling", "linking"}, s.Snapshot().Lines)
}

func TestSession_FinishOnlyFromRunning(t *testing.T) {
	s := New()
	require.Error(t, s.Finish())

	require.NoError(t, s.Run("b1"))
	require.NoError(t, s.Finish())
	require.Equal(t, StatusDone, s.Status())

	require.Error(t, s.Finish())
}

func TestSession_InterruptRetainsPartialState(t *testing.T) {
	s := New()
	require.NoError(t, s.Run("b2"))
	require.NoError(t, s.Append("step1"))
	require.NoError(t, s.Interrupt())

	snap := s.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Equal(t, "b2", snap.BuildID)
	require.Equal(t, []string{"step1"}, snap.Lines)
}

func TestSession_ResetClearsFromAnyState(t *testing.T) {
	for _, setup := range []func(*Session){
		func(s *Session) {},
		func(s *Session) { require.NoError(t, s.Run("b1")); require.NoError(t, s.Append("x")) },
		func(s *Session) { require.NoError(t, s.Run("b1")); require.NoError(t, s.Finish()) },
		func(s *Session) { require.NoError(t, s.Run("b1")); require.NoError(t, s.Interrupt()) },
	} {
		s := New()
		setup(s)
		s.Reset()
		snap := s.Snapshot()
		require.Equal(t, StatusIdle, snap.Status)
		require.Empty(t, snap.BuildID)
		require.Empty(t, snap.Lines)

		// a fresh run is always possible after a reset
		require.NoError(t, s.Run("b9"))
	}
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Run("b1"))
	require.NoError(t, s.Append("one"))

	snap := s.Snapshot()
	snap.Lines[0] = "mutated"
	require.Equal(t, []string{"one"}, s.Snapshot().Lines)
}
