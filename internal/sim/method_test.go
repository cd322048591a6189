// SPDX-License-Identifier: MIT

package sim

import (
	"encoding/json"
	"testing"
)

func TestMethodUnmarshalTaggedVariant(t *testing.T) {
	raw := `{"GeometricBrownian":{"dt":0.000694,"drift":0.0,"volatility":0.2,"seed":42}}`
	var m Method
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.GeometricBrownian == nil {
		t.Fatal("variant not set")
	}
	if m.Name() != "GeometricBrownian" {
		t.Errorf("name = %q", m.Name())
	}
	if m.Seed() != 42 {
		t.Errorf("seed = %d, want 42", m.Seed())
	}
}

func TestMethodUnmarshalRejectsMultipleVariants(t *testing.T) {
	raw := `{"GeometricBrownian":{"dt":0.01,"volatility":0.2},"Brownian":{"dt":0.01,"volatility":0.2}}`
	var m Method
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		t.Fatal("expected rejection of two variants")
	}
}

func TestMethodUnmarshalRejectsEmpty(t *testing.T) {
	var m Method
	if err := json.Unmarshal([]byte(`{}`), &m); err == nil {
		t.Fatal("expected rejection of empty method")
	}
}

func TestMethodValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Method
		ok   bool
	}{
		{
			"gbm valid",
			Method{GeometricBrownian: &GeometricBrownian{Dt: 0.01, Volatility: 0.2}},
			true,
		},
		{
			"gbm zero dt",
			Method{GeometricBrownian: &GeometricBrownian{Dt: 0, Volatility: 0.2}},
			false,
		},
		{
			"mean reverting needs positive mean",
			Method{MeanReverting: &MeanReverting{Dt: 0.01, Mean: 0}},
			false,
		},
		{
			"jump diffusion negative intensity",
			Method{JumpDiffusion: &JumpDiffusion{Dt: 0.01, Intensity: -1}},
			false,
		},
		{
			"historical negative price",
			Method{Historical: &Historical{TimeFrame: Frame(UnitDay), Prices: []float64{100, -1}}},
			false,
		},
		{
			"historical empty path valid",
			Method{Historical: &Historical{TimeFrame: Frame(UnitDay)}},
			true,
		},
		{
			"historical typical price type",
			Method{Historical: &Historical{TimeFrame: Frame(UnitDay), PriceType: "typical"}},
			true,
		},
		{
			"historical unknown price type",
			Method{Historical: &Historical{TimeFrame: Frame(UnitDay), PriceType: "vwap"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTimeFrameJSON(t *testing.T) {
	var tf TimeFrame
	if err := json.Unmarshal([]byte(`"Day"`), &tf); err != nil {
		t.Fatalf("unmarshal named unit: %v", err)
	}
	if tf.Days() != 1 {
		t.Errorf("days = %v, want 1", tf.Days())
	}

	if err := json.Unmarshal([]byte(`{"Custom":2.5}`), &tf); err != nil {
		t.Fatalf("unmarshal custom: %v", err)
	}
	if tf.Days() != 2.5 {
		t.Errorf("custom days = %v, want 2.5", tf.Days())
	}
	out, err := json.Marshal(tf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"Custom":2.5}` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`"Fortnight"`), &tf); err == nil {
		t.Error("expected rejection of unknown unit")
	}
	if err := json.Unmarshal([]byte(`{"Custom":-1}`), &tf); err == nil {
		t.Error("expected rejection of non-positive custom frame")
	}
}
