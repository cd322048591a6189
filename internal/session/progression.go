// SPDX-License-Identifier: MIT

package session

import (
	"time"

	"github.com/chainforge/optionsim/internal/cherr"
)

// Advance moves the session one step forward. Completed and Error
// sessions cannot advance; reaching the final step completes the run.
func (s *Session) Advance() error {
	switch s.State {
	case StateCompleted:
		return cherr.InvalidState("session %s is completed", s.ID)
	case StateError:
		return cherr.InvalidState("session %s is in error state", s.ID)
	}
	if s.CurrentStep >= s.TotalSteps {
		return cherr.InvalidState("session %s already at step %d of %d",
			s.ID, s.CurrentStep, s.TotalSteps)
	}
	s.CurrentStep++
	if s.CurrentStep == s.TotalSteps {
		s.State = StateCompleted
	} else {
		s.State = StateInProgress
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Modify replaces the parameters, keeping the current step. The walk
// is deliberately not invalidated; clients wanting the edit to take
// effect path-wise must reinitialize instead.
func (s *Session) Modify(p Parameters) error {
	if s.State == StateError {
		return cherr.InvalidState("session %s is in error state", s.ID)
	}
	s.Parameters = p
	s.State = StateModified
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Reinitialize restarts the session with new parameters at step zero.
// Legal from every state, including Error.
func (s *Session) Reinitialize(p Parameters) {
	s.Parameters = p
	s.CurrentStep = 0
	s.TotalSteps = p.Steps
	s.State = StateReinitialized
	s.UpdatedAt = time.Now().UTC()
}

// Fail marks the session terminal after an unrecoverable simulation
// failure. Only reinitialization leaves this state.
func (s *Session) Fail() {
	s.State = StateError
	s.UpdatedAt = time.Now().UTC()
}
