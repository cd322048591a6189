// SPDX-License-Identifier: MIT

// Package history loads real OHLCV candles from ClickHouse and exposes
// them as price paths for historical walks.
package history

import (
	"fmt"
)

// PriceType selects which price a bucketed candle contributes to a path.
type PriceType string

const (
	PriceOpen    PriceType = "open"
	PriceHigh    PriceType = "high"
	PriceLow     PriceType = "low"
	PriceClose   PriceType = "close"
	PriceTypical PriceType = "typical"
)

// Valid reports whether the price type is a known selector.
func (p PriceType) Valid() bool {
	switch p {
	case PriceOpen, PriceHigh, PriceLow, PriceClose, PriceTypical:
		return true
	}
	return false
}

// expr returns the aggregate expression selecting this price from a
// bucket of minute candles.
func (p PriceType) expr() string {
	switch p {
	case PriceOpen:
		return "argMin(open, timestamp)"
	case PriceHigh:
		return "max(high)"
	case PriceLow:
		return "min(low)"
	case PriceTypical:
		return "(max(high) + min(low) + argMax(close, timestamp)) / 3"
	default:
		return "argMax(close, timestamp)"
	}
}

func (p PriceType) String() string { return string(p) }

// ParsePriceType maps a request string to a selector, defaulting to close.
func ParsePriceType(s string) (PriceType, error) {
	if s == "" {
		return PriceClose, nil
	}
	pt := PriceType(s)
	if !pt.Valid() {
		return "", fmt.Errorf("unknown price type %q", s)
	}
	return pt, nil
}
