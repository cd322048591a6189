// SPDX-License-Identifier: MIT

package session

import (
	"testing"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/sim"
)

func testParams(steps int) Parameters {
	return Parameters{
		Symbol:           "CL",
		InitialPrice:     1000,
		Volatility:       0.2,
		DaysToExpiration: 30,
		Steps:            steps,
		TimeFrame:        sim.Frame(sim.UnitMinute),
		Method: sim.Method{
			GeometricBrownian: &sim.GeometricBrownian{
				Dt:         1.0 / 1440,
				Drift:      0,
				Volatility: 0.2,
				Seed:       42,
			},
		},
	}
}

func TestNewSession(t *testing.T) {
	s := New(testParams(30))
	if s.State != StateInitialized {
		t.Errorf("state = %s, want Initialized", s.State)
	}
	if s.CurrentStep != 0 {
		t.Errorf("current_step = %d, want 0", s.CurrentStep)
	}
	if s.TotalSteps != 30 {
		t.Errorf("total_steps = %d, want 30", s.TotalSteps)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
}

func TestAdvanceTransitions(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(*Session)
		wantState State
		wantStep  int
		wantErr   bool
	}{
		{
			name:      "initialized advances to in progress",
			prepare:   func(*Session) {},
			wantState: StateInProgress,
			wantStep:  1,
		},
		{
			name: "modified advances to in progress",
			prepare: func(s *Session) {
				s.CurrentStep = 2
				s.State = StateModified
			},
			wantState: StateInProgress,
			wantStep:  3,
		},
		{
			name: "reinitialized advances to in progress",
			prepare: func(s *Session) {
				s.State = StateReinitialized
			},
			wantState: StateInProgress,
			wantStep:  1,
		},
		{
			name: "final step completes",
			prepare: func(s *Session) {
				s.CurrentStep = 2
				s.State = StateInProgress
			},
			wantState: StateCompleted,
			wantStep:  3,
		},
		{
			name: "completed cannot advance",
			prepare: func(s *Session) {
				s.CurrentStep = 3
				s.State = StateCompleted
			},
			wantErr: true,
		},
		{
			name: "error cannot advance",
			prepare: func(s *Session) {
				s.State = StateError
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testParams(3))
			tt.prepare(s)
			err := s.Advance()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !cherr.IsInvalidState(err) {
					t.Errorf("kind = %v, want invalid state", cherr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("advance: %v", err)
			}
			if s.State != tt.wantState {
				t.Errorf("state = %s, want %s", s.State, tt.wantState)
			}
			if s.CurrentStep != tt.wantStep {
				t.Errorf("step = %d, want %d", s.CurrentStep, tt.wantStep)
			}
		})
	}
}

func TestModifyKeepsStep(t *testing.T) {
	s := New(testParams(10))
	for i := 0; i < 5; i++ {
		if err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	p := testParams(10)
	p.Volatility = 0.3
	if err := s.Modify(p); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if s.State != StateModified {
		t.Errorf("state = %s, want Modified", s.State)
	}
	if s.CurrentStep != 5 {
		t.Errorf("step = %d, want 5", s.CurrentStep)
	}
	if s.Parameters.Volatility != 0.3 {
		t.Errorf("volatility = %v, want 0.3", s.Parameters.Volatility)
	}
}

func TestModifyErrorStateRejected(t *testing.T) {
	s := New(testParams(10))
	s.Fail()
	if err := s.Modify(testParams(10)); !cherr.IsInvalidState(err) {
		t.Errorf("expected invalid state, got %v", err)
	}
}

func TestReinitializeResets(t *testing.T) {
	s := New(testParams(10))
	for i := 0; i < 4; i++ {
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	s.Fail()

	p := testParams(20)
	s.Reinitialize(p)
	if s.State != StateReinitialized {
		t.Errorf("state = %s, want Reinitialized", s.State)
	}
	if s.CurrentStep != 0 {
		t.Errorf("step = %d, want 0", s.CurrentStep)
	}
	if s.TotalSteps != 20 {
		t.Errorf("total_steps = %d, want 20", s.TotalSteps)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance after reinitialize: %v", err)
	}
	if s.State != StateInProgress {
		t.Errorf("state = %s, want InProgress", s.State)
	}
}

func TestParametersValidate(t *testing.T) {
	chainSize := -1
	spread := 1.5
	tests := []struct {
		name   string
		mutate func(*Parameters)
		ok     bool
	}{
		{"valid", func(*Parameters) {}, true},
		{"zero price", func(p *Parameters) { p.InitialPrice = 0 }, false},
		{"zero volatility", func(p *Parameters) { p.Volatility = 0 }, false},
		{"zero steps", func(p *Parameters) { p.Steps = 0 }, false},
		{"zero expiration", func(p *Parameters) { p.DaysToExpiration = 0 }, false},
		{"bad timeframe", func(p *Parameters) { p.TimeFrame = sim.Frame("Fortnight") }, false},
		{"negative chain size", func(p *Parameters) { p.ChainSize = &chainSize }, false},
		{"spread out of range", func(p *Parameters) { p.Spread = &spread }, false},
		{"no method", func(p *Parameters) { p.Method = sim.Method{} }, false},
		{
			"historical empty path needs no price",
			func(p *Parameters) {
				p.InitialPrice = 0
				p.Method = sim.Method{Historical: &sim.Historical{
					TimeFrame: sim.Frame(sim.UnitDay),
				}}
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(5)
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSimParamsDefaults(t *testing.T) {
	p := testParams(5)
	sp := p.SimParams()
	if sp.ChainSize != sim.DefaultChainSize {
		t.Errorf("chain size = %d, want %d", sp.ChainSize, sim.DefaultChainSize)
	}
	if sp.StrikeInterval != sim.DefaultStrikeInterval {
		t.Errorf("strike interval = %v, want %v", sp.StrikeInterval, sim.DefaultStrikeInterval)
	}
	if sp.Spread != sim.DefaultSpread {
		t.Errorf("spread = %v, want %v", sp.Spread, sim.DefaultSpread)
	}

	size := 10
	spread := 0.05
	p.ChainSize = &size
	p.Spread = &spread
	sp = p.SimParams()
	if sp.ChainSize != 10 || sp.Spread != 0.05 {
		t.Errorf("overrides not applied: size=%d spread=%v", sp.ChainSize, sp.Spread)
	}
}
