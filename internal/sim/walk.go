// SPDX-License-Identifier: MIT

package sim

import (
	"math"
	"math/rand"

	"github.com/chainforge/optionsim/internal/cherr"
)

// Default chain shape, applied when the session parameters leave the
// optional fields unset.
const (
	DefaultChainSize      = 30
	DefaultStrikeInterval = 1.0
	DefaultSkewSlope      = 0.0005
	DefaultSpread         = 0.01
	defaultDecimalPlaces  = 2
	minPrice              = 0.01
)

// Params carries everything the walk builder needs for one session.
type Params struct {
	Symbol           string
	Steps            int
	InitialPrice     float64
	DaysToExpiration float64
	Volatility       float64
	RiskFreeRate     float64
	DividendYield    float64
	TimeFrame        TimeFrame
	Method           Method
	ChainSize        int
	StrikeInterval   float64
	SkewSlope        float64
	SmileCurve       float64
	Spread           float64
}

// WalkStep is one point of a prebuilt walk.
type WalkStep struct {
	ElapsedDays float64
	Price       float64
	Chain       Chain
}

// Walk is the prebuilt sequence of priced steps for one session. It is
// immutable after construction.
type Walk struct {
	steps []WalkStep
}

// Len returns the number of steps, Steps+1 including the initial point.
func (w *Walk) Len() int { return len(w.steps) }

// At returns the step at index i.
func (w *Walk) At(i int) WalkStep { return w.steps[i] }

func (p Params) chainParams(price, daysLeft float64) ChainParams {
	return ChainParams{
		Symbol:         p.Symbol,
		ChainSize:      p.ChainSize,
		StrikeInterval: p.StrikeInterval,
		SkewSlope:      p.SkewSlope,
		SmileCurve:     p.SmileCurve,
		Spread:         p.Spread,
		DecimalPlaces:  defaultDecimalPlaces,
		Pricing: PricingContext{
			UnderlyingPrice:  price,
			DaysToExpiration: daysLeft,
			Volatility:       p.Volatility,
			RiskFreeRate:     p.RiskFreeRate,
			DividendYield:    p.DividendYield,
			Symbol:           p.Symbol,
		},
	}
}

// BuildWalk produces Steps+1 priced steps. Seeded methods are fully
// deterministic; unseeded ones draw a random seed at build time, so a
// cached walk stays path-coherent across reads.
func BuildWalk(p Params) (*Walk, error) {
	if err := p.Method.Validate(); err != nil {
		return nil, cherr.Wrap(cherr.KindSimulator, err, "invalid simulation method")
	}
	if p.Steps <= 0 {
		return nil, cherr.Simulator("walk requires at least one step")
	}
	if h := p.Method.Historical; h != nil && len(h.Prices) < p.Steps {
		return nil, cherr.NotEnoughData(
			"historical method carries %d prices but %d steps are required",
			len(h.Prices), p.Steps)
	}

	seed := p.Method.Seed()
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	dayStep := p.TimeFrame.Days()
	steps := make([]WalkStep, 0, p.Steps+1)
	price := p.InitialPrice
	for i := 0; i <= p.Steps; i++ {
		if i > 0 {
			price = nextPrice(p.Method, price, i, rng)
		}
		elapsed := float64(i) * dayStep
		daysLeft := math.Max(p.DaysToExpiration-elapsed, minExpirationDays)
		steps = append(steps, WalkStep{
			ElapsedDays: elapsed,
			Price:       price,
			Chain:       BuildChain(p.chainParams(price, daysLeft)),
		})
	}
	return &Walk{steps: steps}, nil
}

// minExpirationDays keeps time value strictly positive up to the horizon.
const minExpirationDays = 1.0 / 1440

// nextPrice advances the underlying one step under the method's process.
// step is the 1-based index of the step being produced.
func nextPrice(m Method, price float64, step int, rng *rand.Rand) float64 {
	switch {
	case m.GeometricBrownian != nil:
		v := m.GeometricBrownian
		z := rng.NormFloat64()
		price *= math.Exp((v.Drift-0.5*v.Volatility*v.Volatility)*v.Dt +
			v.Volatility*math.Sqrt(v.Dt)*z)
	case m.Brownian != nil:
		v := m.Brownian
		price += v.Drift*v.Dt + v.Volatility*math.Sqrt(v.Dt)*rng.NormFloat64()
	case m.MeanReverting != nil:
		v := m.MeanReverting
		price += v.Speed*(v.Mean-price)*v.Dt +
			v.Volatility*math.Sqrt(v.Dt)*rng.NormFloat64()
	case m.JumpDiffusion != nil:
		v := m.JumpDiffusion
		z := rng.NormFloat64()
		price *= math.Exp((v.Drift-0.5*v.Volatility*v.Volatility)*v.Dt +
			v.Volatility*math.Sqrt(v.Dt)*z)
		for n := poisson(rng, v.Intensity*v.Dt); n > 0; n-- {
			price *= math.Exp(v.JumpMean + v.JumpVolatility*rng.NormFloat64())
		}
	case m.Historical != nil:
		prices := m.Historical.Prices
		idx := step
		if idx >= len(prices) {
			idx = len(prices) - 1
		}
		price = prices[idx]
	}
	if price < minPrice {
		price = minPrice
	}
	return price
}

// poisson samples a Poisson count by inversion; lambda is small here
// (intensity*dt per step), so the loop terminates quickly.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
