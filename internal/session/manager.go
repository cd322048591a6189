// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chainforge/optionsim/internal/archive"
	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/log"
	"github.com/chainforge/optionsim/internal/metrics"
	"github.com/chainforge/optionsim/internal/sim"
)

// Manager orchestrates the store, the state machine, and the walk
// cache. It is the only entry point the HTTP surface talks to.
//
// Mutating operations on one session form a read-mutate-write critical
// section, serialized by a striped lock keyed on the session id. Across
// replicas sharing Redis there is no coordination; updates are
// last-write-wins and clients must serialize per id themselves.
type Manager struct {
	store   Store
	sim     *sim.Simulator
	archive *archive.Archive
	logger  zerolog.Logger
	locks   [64]sync.Mutex
}

func (m *Manager) lock(id uuid.UUID) *sync.Mutex {
	return &m.locks[id[0]&63]
}

// NewManager wires the manager. archive may be nil.
func NewManager(store Store, simulator *sim.Simulator, arch *archive.Archive) *Manager {
	return &Manager{
		store:   store,
		sim:     simulator,
		archive: arch,
		logger:  log.WithComponent("manager"),
	}
}

// CreateSession stores a fresh Initialized session.
func (m *Manager) CreateSession(ctx context.Context, p Parameters) (*Session, error) {
	if err := p.Validate(); err != nil {
		metrics.RecordSessionOp("create", err)
		return nil, err
	}
	s := New(p)
	if err := m.store.Save(ctx, s); err != nil {
		metrics.RecordSessionOp("create", err)
		return nil, err
	}
	metrics.RecordSessionOp("create", nil)
	metrics.ActiveSessions.Inc()
	m.archive.SaveSessionEvent(ctx, s.ID, "create", string(s.State), s.CurrentStep)
	m.logger.Info().Str("session_id", s.ID.String()).
		Str("symbol", p.Symbol).Int("total_steps", s.TotalSteps).
		Str("method", p.Method.Name()).Msg("session created")
	return s, nil
}

// GetSession returns the stored snapshot without advancing it.
func (m *Manager) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.store.Get(ctx, id)
}

// GetNextStep advances the session one step and returns the chain at
// the new step. The walk rebuild decision is taken from the state
// BEFORE progression: a fresh or reinitialized session (step zero)
// rebuilds, everything else reuses the cached walk.
func (m *Manager) GetNextStep(ctx context.Context, id uuid.UUID) (*Session, sim.Chain, error) {
	start := time.Now()
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		metrics.RecordSessionOp("advance", err)
		return nil, sim.Chain{}, err
	}

	rebuild := s.CurrentStep == 0 || s.State == StateReinitialized
	if err := s.Advance(); err != nil {
		metrics.RecordSessionOp("advance", err)
		return nil, sim.Chain{}, err
	}

	chain, err := m.sim.NextChain(ctx, id, s.CurrentStep, rebuild, s.Parameters.SimParams())
	if err != nil {
		metrics.RecordSessionOp("advance", err)
		m.fail(ctx, s, err)
		return nil, sim.Chain{}, err
	}

	if err := m.store.Save(ctx, s); err != nil {
		// The store stays source of truth; the advance is discarded.
		metrics.RecordSessionOp("advance", err)
		return nil, sim.Chain{}, err
	}

	metrics.RecordSessionOp("advance", nil)
	metrics.SimulationStepsTotal.WithLabelValues(s.Parameters.Method.Name()).Inc()
	metrics.SimulationStepDuration.Observe(time.Since(start).Seconds())
	metrics.WalkCacheSize.Set(float64(m.sim.Cached()))
	m.archive.SaveChainStep(ctx, s.ID, s.CurrentStep, s.Parameters.Method.Name(),
		chain.UnderlyingPrice, chain.Len())
	return s, chain, nil
}

// fail persists the Error state after an unrecoverable simulation
// failure so retries stop burning walk builds. Best effort.
func (m *Manager) fail(ctx context.Context, s *Session, cause error) {
	kind := cherr.KindOf(cause)
	if kind != cherr.KindSimulator && kind != cherr.KindNotEnoughData {
		return
	}
	s.Fail()
	if err := m.store.Save(ctx, s); err != nil {
		m.logger.Warn().Err(err).Str("session_id", s.ID.String()).
			Msg("could not persist error state")
		return
	}
	m.archive.SaveSessionEvent(ctx, s.ID, "fail", string(s.State), s.CurrentStep)
	m.logger.Warn().Err(cause).Str("session_id", s.ID.String()).
		Msg("session moved to error state")
}

// UpdateSession replaces the parameters in place, keeping the step.
// The cached walk keeps serving; only reinitialization rebuilds it.
func (m *Manager) UpdateSession(ctx context.Context, id uuid.UUID, p Parameters) (*Session, error) {
	if err := p.Validate(); err != nil {
		metrics.RecordSessionOp("update", err)
		return nil, err
	}
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		metrics.RecordSessionOp("update", err)
		return nil, err
	}
	if err := s.Modify(p); err != nil {
		metrics.RecordSessionOp("update", err)
		return nil, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		metrics.RecordSessionOp("update", err)
		return nil, err
	}
	metrics.RecordSessionOp("update", nil)
	m.archive.SaveSessionEvent(ctx, s.ID, "update", string(s.State), s.CurrentStep)
	return s, nil
}

// ReplaceSession reinitializes the session with new parameters. The
// cached walk is dropped; the next advance builds a fresh one.
func (m *Manager) ReplaceSession(ctx context.Context, id uuid.UUID, p Parameters) (*Session, error) {
	if err := p.Validate(); err != nil {
		metrics.RecordSessionOp("replace", err)
		return nil, err
	}
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		metrics.RecordSessionOp("replace", err)
		return nil, err
	}
	s.Reinitialize(p)
	if err := m.store.Save(ctx, s); err != nil {
		metrics.RecordSessionOp("replace", err)
		return nil, err
	}
	m.sim.Drop(id)
	metrics.RecordSessionOp("replace", nil)
	m.archive.SaveSessionEvent(ctx, s.ID, "replace", string(s.State), s.CurrentStep)
	m.logger.Info().Str("session_id", id.String()).
		Int("total_steps", s.TotalSteps).Msg("session reinitialized")
	return s, nil
}

// DeleteSession removes the session and its cached walk.
func (m *Manager) DeleteSession(ctx context.Context, id uuid.UUID) (bool, error) {
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	existed, err := m.store.Delete(ctx, id)
	m.sim.Drop(id)
	if err != nil {
		metrics.RecordSessionOp("delete", err)
		return false, err
	}
	metrics.RecordSessionOp("delete", nil)
	if existed {
		metrics.ActiveSessions.Dec()
		m.archive.SaveSessionEvent(ctx, id, "delete", "", 0)
	}
	return existed, nil
}

// CleanupSessions sweeps expired sessions, evicts orphaned walks, and
// resyncs the active-session gauge from the stores that can enumerate
// live sessions. TTL-backed stores report 0 removed.
func (m *Manager) CleanupSessions(ctx context.Context) (int, error) {
	removed, err := m.store.Cleanup(ctx)
	if err != nil {
		metrics.RecordSessionOp("cleanup", err)
		return 0, err
	}
	if removed > 0 {
		metrics.SessionsCleanedTotal.Add(float64(removed))
	}
	if enum, ok := m.store.(Enumerator); ok {
		ids, err := enum.ActiveIDs(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Msg("could not enumerate sessions for cache eviction")
		} else {
			m.sim.Evict(ids)
			metrics.WalkCacheSize.Set(float64(m.sim.Cached()))
			// Enumeration is the ground truth for the gauge; TTL expiry
			// never reports through Cleanup, so Inc/Dec alone would drift.
			metrics.ActiveSessions.Set(float64(len(ids)))
		}
	} else if removed > 0 {
		metrics.ActiveSessions.Sub(float64(removed))
	}
	metrics.RecordSessionOp("cleanup", nil)
	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("expired sessions cleaned")
	}
	return removed, nil
}
