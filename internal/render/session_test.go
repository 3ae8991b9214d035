package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StatePending, s.State())

	require.NoError(t, s.Transition(StateStreamingRSC))
	require.NoError(t, s.Transition(StateResolvingHTML))
	require.NoError(t, s.Transition(StateComplete))
	assert.Equal(t, StateComplete, s.State())
}

func TestSessionPayloadOnlyLifecycle(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Transition(StateStreamingRSC))
	require.NoError(t, s.Transition(StateComplete))
}

func TestSessionReplayLifecycle(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Transition(StateResolvingHTML))
	require.NoError(t, s.Transition(StateComplete))
}

func TestSessionRejectsIllegalTransitions(t *testing.T) {
	s := NewSession()
	err := s.Transition(StateComplete)
	require.Error(t, err)

	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, StatePending, ite.From)
	assert.Equal(t, StateComplete, ite.To)
	assert.Equal(t, StatePending, s.State(), "failed transition must not change state")
}

func TestSessionTerminalStatesAreFinal(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Transition(StateStreamingRSC))
	require.NoError(t, s.Transition(StateComplete))

	assert.Error(t, s.Transition(StateStreamingRSC))
	assert.Error(t, s.Transition(StateAborted))
}

func TestSessionAbort(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Transition(StateStreamingRSC))
	s.Abort()
	assert.Equal(t, StateAborted, s.State())

	// Aborting an already terminal session changes nothing.
	s2 := NewSession()
	require.NoError(t, s2.Transition(StateStreamingRSC))
	require.NoError(t, s2.Transition(StateComplete))
	s2.Abort()
	assert.Equal(t, StateComplete, s2.State())
}

func TestSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewSession()
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}
