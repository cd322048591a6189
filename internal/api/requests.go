// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/session"
	"github.com/chainforge/optionsim/internal/sim"
)

var validate = validator.New()

// SessionRequest is the wire shape shared by create, replace, and
// update. Every field is a pointer so PATCH can distinguish "absent"
// from "zero". skew_factor is a legacy alias for skew_slope.
type SessionRequest struct {
	Symbol           *string        `json:"symbol" validate:"omitempty,min=1,max=32"`
	InitialPrice     *float64       `json:"initial_price" validate:"omitempty,gt=0"`
	Volatility       *float64       `json:"volatility" validate:"omitempty,gt=0"`
	RiskFreeRate     *float64       `json:"risk_free_rate"`
	DividendYield    *float64       `json:"dividend_yield" validate:"omitempty,gte=0"`
	DaysToExpiration *float64       `json:"days_to_expiration" validate:"omitempty,gt=0"`
	Steps            *int           `json:"steps" validate:"omitempty,gt=0,lte=100000"`
	TimeFrame        *sim.TimeFrame `json:"time_frame"`
	Method           *sim.Method    `json:"method"`
	ChainSize        *int           `json:"chain_size" validate:"omitempty,gte=0,lte=1000"`
	StrikeInterval   *float64       `json:"strike_interval" validate:"omitempty,gt=0"`
	SkewSlope        *float64       `json:"skew_slope"`
	SkewFactor       *float64       `json:"skew_factor"`
	SmileCurve       *float64       `json:"smile_curve"`
	Spread           *float64       `json:"spread" validate:"omitempty,gte=0,lt=1"`
}

// decodeRequest parses and field-validates the body.
func decodeRequest(r *http.Request) (*SessionRequest, error) {
	var req SessionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, cherr.Wrap(cherr.KindInvalidState, err, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return nil, cherr.Wrap(cherr.KindInvalidState, err, "invalid parameters")
	}
	if req.SkewFactor != nil && req.SkewSlope == nil {
		req.SkewSlope = req.SkewFactor
	}
	return &req, nil
}

// Parameters materializes a full parameter set; create and replace
// require the non-optional fields to be present.
func (r *SessionRequest) Parameters() (session.Parameters, error) {
	var p session.Parameters
	switch {
	case r.Symbol == nil:
		return p, cherr.InvalidState("symbol is required")
	case r.Volatility == nil:
		return p, cherr.InvalidState("volatility is required")
	case r.DaysToExpiration == nil:
		return p, cherr.InvalidState("days_to_expiration is required")
	case r.Steps == nil:
		return p, cherr.InvalidState("steps is required")
	case r.TimeFrame == nil:
		return p, cherr.InvalidState("time_frame is required")
	case r.Method == nil:
		return p, cherr.InvalidState("method is required")
	}
	p = session.Parameters{
		Symbol:           *r.Symbol,
		Volatility:       *r.Volatility,
		DaysToExpiration: *r.DaysToExpiration,
		Steps:            *r.Steps,
		TimeFrame:        *r.TimeFrame,
		Method:           *r.Method,
		ChainSize:        r.ChainSize,
		StrikeInterval:   r.StrikeInterval,
		SkewSlope:        r.SkewSlope,
		SmileCurve:       r.SmileCurve,
		Spread:           r.Spread,
	}
	if r.InitialPrice != nil {
		p.InitialPrice = *r.InitialPrice
	}
	if r.RiskFreeRate != nil {
		p.RiskFreeRate = *r.RiskFreeRate
	}
	if r.DividendYield != nil {
		p.DividendYield = *r.DividendYield
	}
	return p, nil
}

// Merge overlays the fields present in the request onto an existing
// parameter set, for PATCH semantics.
func (r *SessionRequest) Merge(base session.Parameters) session.Parameters {
	p := base
	if r.Symbol != nil {
		p.Symbol = *r.Symbol
	}
	if r.InitialPrice != nil {
		p.InitialPrice = *r.InitialPrice
	}
	if r.Volatility != nil {
		p.Volatility = *r.Volatility
	}
	if r.RiskFreeRate != nil {
		p.RiskFreeRate = *r.RiskFreeRate
	}
	if r.DividendYield != nil {
		p.DividendYield = *r.DividendYield
	}
	if r.DaysToExpiration != nil {
		p.DaysToExpiration = *r.DaysToExpiration
	}
	if r.Steps != nil {
		p.Steps = *r.Steps
	}
	if r.TimeFrame != nil {
		p.TimeFrame = *r.TimeFrame
	}
	if r.Method != nil {
		p.Method = *r.Method
	}
	if r.ChainSize != nil {
		p.ChainSize = r.ChainSize
	}
	if r.StrikeInterval != nil {
		p.StrikeInterval = r.StrikeInterval
	}
	if r.SkewSlope != nil {
		p.SkewSlope = r.SkewSlope
	}
	if r.SmileCurve != nil {
		p.SmileCurve = r.SmileCurve
	}
	if r.Spread != nil {
		p.Spread = r.Spread
	}
	return p
}
