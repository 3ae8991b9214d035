// Package render implements the two-phase hybrid renderer: a component
// stream (RSC) phase producing the serialized tree, and an HTML phase
// consuming that stream into a progressively delivered document.
package render

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seamui/seam/internal/assets"
)

// State is one stage of a render session's lifecycle.
type State int

const (
	StatePending State = iota
	StateStreamingRSC
	StateResolvingHTML
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStreamingRSC:
		return "streaming-rsc"
	case StateResolvingHTML:
		return "resolving-html"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions enumerates the legal state edges. Payload-only responses skip
// the HTML phase, so StreamingRSC may complete directly; replaying a stored
// payload skips the RSC phase, so Pending may enter ResolvingHTML directly.
var transitions = map[State][]State{
	StatePending:       {StateStreamingRSC, StateResolvingHTML, StateAborted},
	StateStreamingRSC:  {StateResolvingHTML, StateComplete, StateAborted},
	StateResolvingHTML: {StateComplete, StateAborted},
}

// InvalidTransitionError reports an illegal session state change.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("render: invalid session transition %s -> %s", e.From, e.To)
}

// StreamAbortError reports a render cut short before its done row, usually
// because the client went away.
type StreamAbortError struct {
	SessionID string
	Err       error
}

func (e *StreamAbortError) Error() string {
	return fmt.Sprintf("render: session %s aborted: %v", e.SessionID, e.Err)
}

func (e *StreamAbortError) Unwrap() error {
	return e.Err
}

// IsStreamAbort reports whether err is a StreamAbortError.
func IsStreamAbort(err error) bool {
	var sa *StreamAbortError
	return errors.As(err, &sa)
}

// Session is the per-request render state: an id, the lifecycle state, and
// the asset extractor. Sessions are never shared between requests; all
// per-render accumulation lives here rather than in process globals.
type Session struct {
	ID        string
	Extractor *assets.Extractor

	mu      sync.Mutex
	state   State
	started time.Time
}

// NewSession creates a fresh session in StatePending.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Extractor: assets.NewExtractor(),
		started:   time.Now(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to the given state, rejecting edges the
// lifecycle does not define.
func (s *Session) Transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return &InvalidTransitionError{From: s.state, To: to}
}

// Abort moves the session to StateAborted. Aborting a session that already
// reached a terminal state is a no-op.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete || s.state == StateAborted {
		return
	}
	s.state = StateAborted
}

// Age returns how long the session has existed.
func (s *Session) Age() time.Duration {
	return time.Since(s.started)
}

// Close releases the session's per-render accumulators.
func (s *Session) Close() {
	s.Extractor.Cleanup()
}
