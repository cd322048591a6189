// SPDX-License-Identifier: MIT

// Package session holds the simulation session entity, its state
// machine, the store back-ends, and the manager orchestrating them.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/sim"
)

// State is the lifecycle state of a session.
type State string

const (
	StateInitialized   State = "Initialized"
	StateInProgress    State = "InProgress"
	StateModified      State = "Modified"
	StateReinitialized State = "Reinitialized"
	StateCompleted     State = "Completed"
	StateError         State = "Error"
)

// Valid reports whether s names a known state.
func (s State) Valid() bool {
	switch s {
	case StateInitialized, StateInProgress, StateModified,
		StateReinitialized, StateCompleted, StateError:
		return true
	}
	return false
}

// Parameters is the client-supplied simulation configuration, embedded
// by value in the session. Optional fields use their zero value to mean
// "apply the default".
type Parameters struct {
	Symbol           string        `json:"symbol"`
	InitialPrice     float64       `json:"initial_price"`
	Volatility       float64       `json:"volatility"`
	RiskFreeRate     float64       `json:"risk_free_rate"`
	DividendYield    float64       `json:"dividend_yield"`
	DaysToExpiration float64       `json:"days_to_expiration"`
	Steps            int           `json:"steps"`
	TimeFrame        sim.TimeFrame `json:"time_frame"`
	Method           sim.Method    `json:"method"`
	ChainSize        *int          `json:"chain_size,omitempty"`
	StrikeInterval   *float64      `json:"strike_interval,omitempty"`
	SkewSlope        *float64      `json:"skew_slope,omitempty"`
	SmileCurve       *float64      `json:"smile_curve,omitempty"`
	Spread           *float64      `json:"spread,omitempty"`
}

// SimParams resolves defaults and returns the walk-builder parameters.
func (p Parameters) SimParams() sim.Params {
	sp := sim.Params{
		Symbol:           p.Symbol,
		Steps:            p.Steps,
		InitialPrice:     p.InitialPrice,
		DaysToExpiration: p.DaysToExpiration,
		Volatility:       p.Volatility,
		RiskFreeRate:     p.RiskFreeRate,
		DividendYield:    p.DividendYield,
		TimeFrame:        p.TimeFrame,
		Method:           p.Method,
		ChainSize:        sim.DefaultChainSize,
		StrikeInterval:   sim.DefaultStrikeInterval,
		SkewSlope:        sim.DefaultSkewSlope,
		Spread:           sim.DefaultSpread,
	}
	if p.ChainSize != nil {
		sp.ChainSize = *p.ChainSize
	}
	if p.StrikeInterval != nil {
		sp.StrikeInterval = *p.StrikeInterval
	}
	if p.SkewSlope != nil {
		sp.SkewSlope = *p.SkewSlope
	}
	if p.SmileCurve != nil {
		sp.SmileCurve = *p.SmileCurve
	}
	if p.Spread != nil {
		sp.Spread = *p.Spread
	}
	return sp
}

// Validate checks the boundary invariants so downstream code can
// assume them. The initial price may be absent only for Historical
// methods with an empty path, where the loader supplies it.
func (p Parameters) Validate() error {
	if err := p.Method.Validate(); err != nil {
		return cherr.Wrap(cherr.KindInvalidState, err, "invalid method")
	}
	loaderPriced := p.Method.Historical != nil && len(p.Method.Historical.Prices) == 0
	if p.InitialPrice <= 0 && !loaderPriced {
		return cherr.InvalidState("initial_price must be positive")
	}
	if p.Volatility <= 0 {
		return cherr.InvalidState("volatility must be positive")
	}
	if p.DaysToExpiration <= 0 {
		return cherr.InvalidState("days_to_expiration must be positive")
	}
	if p.Steps <= 0 {
		return cherr.InvalidState("steps must be positive")
	}
	if !p.TimeFrame.Valid() {
		return cherr.InvalidState("unknown time_frame %q", p.TimeFrame.Unit)
	}
	if p.ChainSize != nil && *p.ChainSize < 0 {
		return cherr.InvalidState("chain_size must not be negative")
	}
	if p.StrikeInterval != nil && *p.StrikeInterval <= 0 {
		return cherr.InvalidState("strike_interval must be positive")
	}
	if p.Spread != nil && (*p.Spread < 0 || *p.Spread >= 1) {
		return cherr.InvalidState("spread must be in [0, 1)")
	}
	return nil
}

// Session is the persisted simulation entity. Walks are cache-only and
// never stored here.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	Parameters  Parameters `json:"parameters"`
	CurrentStep int        `json:"current_step"`
	TotalSteps  int        `json:"total_steps"`
	State       State      `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// New builds an Initialized session with a fresh id at step zero.
func New(p Parameters) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          uuid.New(),
		Parameters:  p,
		CurrentStep: 0,
		TotalSteps:  p.Steps,
		State:       StateInitialized,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
