// SPDX-License-Identifier: MIT

package api

import (
	"time"

	"github.com/chainforge/optionsim/internal/session"
	"github.com/chainforge/optionsim/internal/sim"
)

// SessionResponse is the wire shape of a session snapshot.
type SessionResponse struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	Parameters  session.Parameters `json:"parameters"`
	CurrentStep int                `json:"current_step"`
	TotalSteps  int                `json:"total_steps"`
	State       session.State      `json:"state"`
}

func sessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID.String(),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
		Parameters:  s.Parameters,
		CurrentStep: s.CurrentStep,
		TotalSteps:  s.TotalSteps,
		State:       s.State,
	}
}

// ContractResponse is one strike row on the wire.
type ContractResponse struct {
	Strike            float64   `json:"strike"`
	Expiration        string    `json:"expiration"`
	Call              sim.Quote `json:"call"`
	Put               sim.Quote `json:"put"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	Gamma             float64   `json:"gamma"`
}

// SessionInfo points the chain back at its session.
type SessionInfo struct {
	ID          string `json:"id"`
	CurrentStep int    `json:"current_step"`
	TotalSteps  int    `json:"total_steps"`
}

// ChainResponse is one served simulation step.
type ChainResponse struct {
	Underlying  string             `json:"underlying"`
	Timestamp   string             `json:"timestamp"`
	Price       float64            `json:"price"`
	Contracts   []ContractResponse `json:"contracts"`
	SessionInfo SessionInfo        `json:"session_info"`
}

func chainResponse(s *session.Session, chain sim.Chain, now time.Time) ChainResponse {
	// Remaining lifetime projects the shared expiration date of every
	// contract in the chain.
	expiration := now.Add(time.Duration(chain.DaysToExpiration * 24 * float64(time.Hour))).
		Format("2006-01-02")
	contracts := make([]ContractResponse, 0, len(chain.Contracts))
	for _, c := range chain.Contracts {
		contracts = append(contracts, ContractResponse{
			Strike:            c.Strike,
			Expiration:        expiration,
			Call:              c.Call,
			Put:               c.Put,
			ImpliedVolatility: c.ImpliedVolatility,
			Gamma:             c.Gamma,
		})
	}
	return ChainResponse{
		Underlying:  chain.Underlying,
		Timestamp:   now.Format(time.RFC3339),
		Price:       chain.UnderlyingPrice,
		Contracts:   contracts,
		SessionInfo: SessionInfo{
			ID:          s.ID.String(),
			CurrentStep: s.CurrentStep,
			TotalSteps:  s.TotalSteps,
		},
	}
}

// DeleteResponse confirms a removal.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
