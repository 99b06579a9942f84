package dispatch

import "sync/atomic"

// State is shared by the poller and the coordinator. Each flag is read and
// written on its own; no invariant spans both.
type State struct {
	generating      atomic.Bool
	cancelRequested atomic.Bool

	// requests sent by the poller and not yet finished by the coordinator
	pending atomic.Int32
}

// NewState creates an idle state
func NewState() *State {
	return &State{}
}

// Generating reports whether a generation is in flight
func (s *State) Generating() bool {
	return s.generating.Load()
}

// RequestCancel asks the running generation to stop at its next token
func (s *State) RequestCancel() {
	s.cancelRequested.Store(true)
}

// CancelRequested reports whether a cancel is pending
func (s *State) CancelRequested() bool {
	return s.cancelRequested.Load()
}

// Busy reports whether a generation is running or waiting in the request slot
func (s *State) Busy() bool {
	return s.generating.Load() || s.pending.Load() > 0
}

func (s *State) markDispatched() {
	s.pending.Add(1)
}

func (s *State) markDone() {
	if s.pending.Add(-1) < 0 {
		s.pending.Store(0)
	}
}

func (s *State) setGenerating(v bool) {
	s.generating.Store(v)
}

func (s *State) clearCancel() {
	s.cancelRequested.Store(false)
}
