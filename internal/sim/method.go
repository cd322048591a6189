// SPDX-License-Identifier: MIT

package sim

import (
	"encoding/json"
	"fmt"
)

// Method is the tagged variant selecting the price process for a walk.
// Exactly one variant must be set; the wire format is an externally
// tagged object, e.g. {"GeometricBrownian": {"dt": 0.004, ...}}.
type Method struct {
	GeometricBrownian *GeometricBrownian `json:"GeometricBrownian,omitempty"`
	Brownian          *Brownian          `json:"Brownian,omitempty"`
	MeanReverting     *MeanReverting     `json:"MeanReverting,omitempty"`
	JumpDiffusion     *JumpDiffusion     `json:"JumpDiffusion,omitempty"`
	Historical        *Historical        `json:"Historical,omitempty"`
}

// GeometricBrownian is the standard log-normal diffusion.
type GeometricBrownian struct {
	Dt         float64 `json:"dt"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
	Seed       int64   `json:"seed,omitempty"`
}

// Brownian is an arithmetic diffusion in price units.
type Brownian struct {
	Dt         float64 `json:"dt"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
	Seed       int64   `json:"seed,omitempty"`
}

// MeanReverting is an Ornstein-Uhlenbeck process pulled towards Mean.
type MeanReverting struct {
	Dt         float64 `json:"dt"`
	Volatility float64 `json:"volatility"`
	Speed      float64 `json:"speed"`
	Mean       float64 `json:"mean"`
	Seed       int64   `json:"seed,omitempty"`
}

// JumpDiffusion is a geometric diffusion with Poisson log-normal jumps.
type JumpDiffusion struct {
	Dt             float64 `json:"dt"`
	Drift          float64 `json:"drift"`
	Volatility     float64 `json:"volatility"`
	Intensity      float64 `json:"intensity"`
	JumpMean       float64 `json:"jump_mean"`
	JumpVolatility float64 `json:"jump_volatility"`
	Seed           int64   `json:"seed,omitempty"`
}

// Historical replays a fixed price path. An empty Prices slice instructs
// the simulator to load the path from the historical repository, picking
// a random symbol when Symbol is nil. PriceType selects which candle
// price feeds the path; empty means close.
type Historical struct {
	TimeFrame TimeFrame `json:"timeframe"`
	Prices    []float64 `json:"prices"`
	Symbol    *string   `json:"symbol,omitempty"`
	PriceType string    `json:"price_type,omitempty"`
}

// Name returns the variant tag, or "" when no variant is set.
func (m Method) Name() string {
	switch {
	case m.GeometricBrownian != nil:
		return "GeometricBrownian"
	case m.Brownian != nil:
		return "Brownian"
	case m.MeanReverting != nil:
		return "MeanReverting"
	case m.JumpDiffusion != nil:
		return "JumpDiffusion"
	case m.Historical != nil:
		return "Historical"
	default:
		return ""
	}
}

// Validate checks that exactly one variant is set and its numbers are sane.
func (m Method) Validate() error {
	count := 0
	if m.GeometricBrownian != nil {
		count++
		if m.GeometricBrownian.Dt <= 0 || m.GeometricBrownian.Volatility < 0 {
			return fmt.Errorf("GeometricBrownian requires dt > 0 and volatility >= 0")
		}
	}
	if m.Brownian != nil {
		count++
		if m.Brownian.Dt <= 0 || m.Brownian.Volatility < 0 {
			return fmt.Errorf("Brownian requires dt > 0 and volatility >= 0")
		}
	}
	if m.MeanReverting != nil {
		count++
		if m.MeanReverting.Dt <= 0 || m.MeanReverting.Mean <= 0 {
			return fmt.Errorf("MeanReverting requires dt > 0 and mean > 0")
		}
	}
	if m.JumpDiffusion != nil {
		count++
		if m.JumpDiffusion.Dt <= 0 || m.JumpDiffusion.Intensity < 0 {
			return fmt.Errorf("JumpDiffusion requires dt > 0 and intensity >= 0")
		}
	}
	if m.Historical != nil {
		count++
		if !m.Historical.TimeFrame.Valid() {
			return fmt.Errorf("Historical requires a valid timeframe")
		}
		for _, p := range m.Historical.Prices {
			if p <= 0 {
				return fmt.Errorf("Historical prices must be positive")
			}
		}
		switch m.Historical.PriceType {
		case "", "open", "high", "low", "close", "typical":
		default:
			return fmt.Errorf("Historical price_type must be one of open, high, low, close, typical")
		}
	}
	if count != 1 {
		return fmt.Errorf("method must carry exactly one variant, got %d", count)
	}
	return nil
}

// Seed returns the deterministic seed of the variant, 0 when none.
func (m Method) Seed() int64 {
	switch {
	case m.GeometricBrownian != nil:
		return m.GeometricBrownian.Seed
	case m.Brownian != nil:
		return m.Brownian.Seed
	case m.MeanReverting != nil:
		return m.MeanReverting.Seed
	case m.JumpDiffusion != nil:
		return m.JumpDiffusion.Seed
	default:
		return 0
	}
}

func (m Method) String() string {
	if name := m.Name(); name != "" {
		return name
	}
	return "Unknown"
}

// UnmarshalJSON rejects payloads that do not carry exactly one variant.
func (m *Method) UnmarshalJSON(data []byte) error {
	type alias Method
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Method(a)
	return m.Validate()
}
