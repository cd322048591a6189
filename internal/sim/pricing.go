// SPDX-License-Identifier: MIT

package sim

import (
	"math"
)

// PricingContext carries the market inputs for pricing one chain.
type PricingContext struct {
	UnderlyingPrice  float64
	DaysToExpiration float64
	Volatility       float64 // annualized at-the-money volatility
	RiskFreeRate     float64
	DividendYield    float64
	Symbol           string
}

// ChainParams describes the shape of the chain to build around the
// underlying price.
type ChainParams struct {
	Symbol         string
	ChainSize      int     // number of strikes; 0 yields an empty chain
	StrikeInterval float64 // spacing between strikes
	SkewSlope      float64 // linear volatility skew in moneyness
	SmileCurve     float64 // quadratic volatility smile in moneyness
	Spread         float64 // fractional bid-ask spread around mid
	DecimalPlaces  int
	Pricing        PricingContext
}

// Quote is one side of a contract.
type Quote struct {
	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
	Mid   float64 `json:"mid"`
	Delta float64 `json:"delta"`
}

// Contract is one strike row of an option chain.
type Contract struct {
	Strike            float64 `json:"strike"`
	Call              Quote   `json:"call"`
	Put               Quote   `json:"put"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	Gamma             float64 `json:"gamma"`
}

// Chain is a fully priced option chain at one underlying price.
type Chain struct {
	Underlying       string     `json:"underlying"`
	UnderlyingPrice  float64    `json:"underlying_price"`
	DaysToExpiration float64    `json:"days_to_expiration"`
	Contracts        []Contract `json:"contracts"`
}

// Len returns the number of contracts in the chain.
func (c *Chain) Len() int { return len(c.Contracts) }

const minVolatility = 0.01

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// surfaceVol returns the implied volatility at a strike from the skew
// slope and smile curve, expressed in moneyness (k/s - 1).
func surfaceVol(ctx PricingContext, skewSlope, smileCurve, strike float64) float64 {
	m := strike/ctx.UnderlyingPrice - 1
	iv := ctx.Volatility + skewSlope*m + smileCurve*m*m
	if iv < minVolatility {
		iv = minVolatility
	}
	return iv
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// blackScholes prices a European call and put with continuous dividend
// yield q. t is in years.
func blackScholes(s, k, t, sigma, r, q float64) (call, put, callDelta, putDelta, gamma float64) {
	if t <= 0 || sigma <= 0 {
		call = math.Max(s-k, 0)
		put = math.Max(k-s, 0)
		if s > k {
			callDelta, putDelta = 1, 0
		} else {
			callDelta, putDelta = 0, -1
		}
		return call, put, callDelta, putDelta, 0
	}
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discR := math.Exp(-r * t)
	discQ := math.Exp(-q * t)

	call = s*discQ*normCDF(d1) - k*discR*normCDF(d2)
	put = k*discR*normCDF(-d2) - s*discQ*normCDF(-d1)
	callDelta = discQ * normCDF(d1)
	putDelta = discQ * (normCDF(d1) - 1)
	gamma = discQ * normPDF(d1) / (s * sigma * sqrtT)
	return call, put, callDelta, putDelta, gamma
}

// strikes enumerates ChainSize strikes centered on the underlying price,
// snapped to the strike interval.
func strikes(p ChainParams) []float64 {
	if p.ChainSize <= 0 {
		return nil
	}
	interval := p.StrikeInterval
	if interval <= 0 {
		interval = 1
	}
	atm := math.Round(p.Pricing.UnderlyingPrice/interval) * interval
	first := atm - interval*float64(p.ChainSize/2)
	out := make([]float64, 0, p.ChainSize)
	for i := 0; i < p.ChainSize; i++ {
		k := roundTo(first+float64(i)*interval, p.DecimalPlaces)
		if k <= 0 {
			continue
		}
		out = append(out, k)
	}
	return out
}

// BuildChain prices one full option chain from the chain parameters.
// A ChainSize of zero yields a chain with no contracts.
func BuildChain(p ChainParams) Chain {
	ctx := p.Pricing
	t := ctx.DaysToExpiration / 365.0
	chain := Chain{
		Underlying:       p.Symbol,
		UnderlyingPrice:  roundTo(ctx.UnderlyingPrice, p.DecimalPlaces),
		DaysToExpiration: ctx.DaysToExpiration,
	}
	for _, k := range strikes(p) {
		iv := surfaceVol(ctx, p.SkewSlope, p.SmileCurve, k)
		call, put, cd, pd, gamma := blackScholes(
			ctx.UnderlyingPrice, k, t, iv, ctx.RiskFreeRate, ctx.DividendYield)
		chain.Contracts = append(chain.Contracts, Contract{
			Strike:            k,
			Call:              quote(call, p.Spread, cd, p.DecimalPlaces),
			Put:               quote(put, p.Spread, pd, p.DecimalPlaces),
			ImpliedVolatility: roundTo(iv, 4),
			Gamma:             gamma,
		})
	}
	return chain
}

// quote spreads a mid price into bid/ask.
func quote(mid, spread, delta float64, places int) Quote {
	return Quote{
		Bid:   roundTo(mid*(1-spread/2), places),
		Ask:   roundTo(mid*(1+spread/2), places),
		Mid:   roundTo(mid, places),
		Delta: delta,
	}
}
