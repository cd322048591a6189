// SPDX-License-Identifier: MIT

// Package sim builds and caches option-chain walks. A walk is priced
// once per session and then served step by step; the cache is keyed by
// session ID and survives until the session is deleted or evicted.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/log"
	"github.com/chainforge/optionsim/internal/metrics"
)

// HistoricalSource loads real price paths for Historical walks. The
// repository backing it decides storage and bucketing.
type HistoricalSource interface {
	// ListSymbols returns every symbol with stored candles.
	ListSymbols(ctx context.Context) ([]string, error)
	// DateRange returns the first and last candle timestamps for a symbol.
	DateRange(ctx context.Context, symbol string) (time.Time, time.Time, error)
	// Prices returns up to limit prices of the selected type (open,
	// high, low, close, typical; empty means close) at the given bucket
	// interval, starting at start.
	Prices(ctx context.Context, symbol, priceType string, interval time.Duration, start time.Time, limit int) ([]float64, error)
}

// walkEntry is one cache slot. ready is closed once walk or err is set,
// so concurrent readers of a building walk block instead of rebuilding.
type walkEntry struct {
	ready chan struct{}
	walk  *Walk
	err   error
}

// Simulator owns the per-session walk cache.
type Simulator struct {
	mu      sync.Mutex
	walks   map[uuid.UUID]*walkEntry
	history HistoricalSource
	logger  zerolog.Logger
}

// New builds a Simulator. history may be nil; Historical methods with
// empty price paths then fail with a not-enough-data error.
func New(history HistoricalSource) *Simulator {
	return &Simulator{
		walks:   make(map[uuid.UUID]*walkEntry),
		history: history,
		logger:  log.WithComponent("simulator"),
	}
}

// NextChain returns the chain at the given step of the session's walk.
// When rebuild is set, or no walk is cached yet, a fresh walk is built
// from the parameters first. Reading past the final step fails with a
// simulator error.
func (s *Simulator) NextChain(ctx context.Context, id uuid.UUID, step int, rebuild bool, p Params) (Chain, error) {
	entry, build := s.claim(id, rebuild)
	if build {
		start := time.Now()
		entry.walk, entry.err = s.build(ctx, p)
		close(entry.ready)
		if entry.err == nil {
			metrics.WalkBuildsTotal.WithLabelValues(p.Method.Name()).Inc()
			s.logger.Debug().
				Str("session_id", id.String()).
				Str("method", p.Method.Name()).
				Int("steps", entry.walk.Len()).
				Dur("duration", time.Since(start)).
				Msg("walk built")
		}
	} else {
		select {
		case <-entry.ready:
		case <-ctx.Done():
			return Chain{}, cherr.Wrap(cherr.KindInternal, ctx.Err(), "walk build interrupted")
		}
	}
	if entry.err != nil {
		// Drop the failed slot so a corrected session can rebuild.
		s.mu.Lock()
		if s.walks[id] == entry {
			delete(s.walks, id)
		}
		s.mu.Unlock()
		return Chain{}, entry.err
	}
	if step < 0 || step >= entry.walk.Len() {
		return Chain{}, cherr.Simulator("walker reached end of data")
	}
	return entry.walk.At(step).Chain, nil
}

// claim returns the cache slot for the session, inserting a fresh
// placeholder when missing or a rebuild is requested. The second return
// reports whether the caller owns the build.
func (s *Simulator) claim(id uuid.UUID, rebuild bool) (*walkEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.walks[id]; ok && !rebuild {
		return entry, false
	}
	entry := &walkEntry{ready: make(chan struct{})}
	s.walks[id] = entry
	return entry, true
}

// Drop removes the cached walk for one session.
func (s *Simulator) Drop(id uuid.UUID) {
	s.mu.Lock()
	delete(s.walks, id)
	s.mu.Unlock()
}

// Evict retains only the walks of the given sessions and returns the
// number of entries removed.
func (s *Simulator) Evict(active []uuid.UUID) int {
	keep := make(map[uuid.UUID]struct{}, len(active))
	for _, id := range active {
		keep[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.walks {
		if _, ok := keep[id]; !ok {
			delete(s.walks, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("kept", len(s.walks)).
			Msg("walk cache evicted")
	}
	return removed
}

// Cached returns the number of cached walks.
func (s *Simulator) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.walks)
}

// build resolves historical price paths and then prices the walk. It
// runs outside the cache lock.
func (s *Simulator) build(ctx context.Context, p Params) (*Walk, error) {
	if h := p.Method.Historical; h != nil && len(h.Prices) == 0 {
		prices, symbol, err := s.loadHistorical(ctx, h, p.Steps)
		if err != nil {
			return nil, err
		}
		// Copy the variant so the session's stored parameters keep the
		// empty path and reloading stays possible after a restart.
		filled := *h
		filled.Prices = prices
		filled.Symbol = &symbol
		p.Method.Historical = &filled
		p.Symbol = symbol
		p.InitialPrice = prices[0]
	}
	return BuildWalk(p)
}

// loadHistorical pulls a real price path from the repository, choosing
// a random symbol and start date when the method leaves them open.
func (s *Simulator) loadHistorical(ctx context.Context, h *Historical, steps int) ([]float64, string, error) {
	if s.history == nil {
		return nil, "", cherr.NotEnoughData("no historical data source configured")
	}
	symbol := ""
	if h.Symbol != nil {
		symbol = *h.Symbol
	} else {
		symbols, err := s.history.ListSymbols(ctx)
		if err != nil {
			return nil, "", err
		}
		if len(symbols) == 0 {
			return nil, "", cherr.NotEnoughData("historical repository holds no symbols")
		}
		symbol = symbols[rand.Intn(len(symbols))]
	}

	first, last, err := s.history.DateRange(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	need := time.Duration(steps+1) * h.TimeFrame.Interval()
	slack := last.Sub(first) - need
	if slack < 0 {
		return nil, "", cherr.NotEnoughData(
			"symbol %s spans %s but %d steps of %s need %s",
			symbol, last.Sub(first), steps, h.TimeFrame, need)
	}
	start := first
	if slack > 0 {
		start = first.Add(time.Duration(rand.Int63n(int64(slack))))
	}

	prices, err := s.history.Prices(ctx, symbol, h.PriceType, h.TimeFrame.Interval(), start, steps+1)
	if err != nil {
		return nil, "", err
	}
	if len(prices) < steps+1 {
		return nil, "", cherr.NotEnoughData(
			"symbol %s yielded %d prices from %s, need %d",
			symbol, len(prices), start.Format(time.RFC3339), steps+1)
	}
	s.logger.Debug().Str("symbol", symbol).Time("start", start).
		Int("prices", len(prices)).Msg("historical path loaded")
	return prices, symbol, nil
}
