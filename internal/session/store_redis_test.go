// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/metrics"
	"github.com/chainforge/optionsim/internal/sim"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "session:", 1800*time.Second)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, store := setupRedisStore(t)
	s := New(testParams(10))

	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != s.ID || got.State != s.State || got.TotalSteps != s.TotalSteps {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Parameters.Method.GeometricBrownian == nil {
		t.Error("method variant lost in serialization")
	}
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedisStore(t)
	s := New(testParams(10))
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	key := "session:" + s.ID.String()
	if !mr.Exists(key) {
		t.Fatalf("key %s not written", key)
	}
	ttl := mr.TTL(key)
	if ttl <= 0 || ttl > 1800*time.Second {
		t.Errorf("ttl = %v, want (0, 1800s]", ttl)
	}

	// Expiry removes the session entirely.
	mr.FastForward(1801 * time.Second)
	if _, err := store.Get(ctx, s.ID); !cherr.IsNotFound(err) {
		t.Errorf("expected not found after ttl, got %v", err)
	}
}

func TestRedisStoreSaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedisStore(t)
	s := New(testParams(10))
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(1700 * time.Second)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}
	mr.FastForward(1700 * time.Second)
	if _, err := store.Get(ctx, s.ID); err != nil {
		t.Errorf("session should survive a refreshed ttl, got %v", err)
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	_, store := setupRedisStore(t)
	_, err := store.Get(context.Background(), New(testParams(1)).ID)
	if !cherr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRedisStoreDecodeFailure(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedisStore(t)
	s := New(testParams(1))
	if err := mr.Set("session:"+s.ID.String(), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := store.Get(ctx, s.ID)
	if err == nil || cherr.KindOf(err) != cherr.KindSerialization {
		t.Errorf("expected serialization error, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	_, store := setupRedisStore(t)
	s := New(testParams(1))
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	existed, err := store.Delete(ctx, s.ID)
	if err != nil || !existed {
		t.Fatalf("delete = (%v, %v), want (true, nil)", existed, err)
	}
	existed, err = store.Delete(ctx, s.ID)
	if err != nil || existed {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestRedisStoreCleanupIsNoop(t *testing.T) {
	ctx := context.Background()
	_, store := setupRedisStore(t)
	s := New(testParams(1))
	s.UpdatedAt = time.Now().UTC().Add(-24 * time.Hour)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	removed, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 (ttl is authoritative)", removed)
	}
	if _, err := store.Get(ctx, s.ID); err != nil {
		t.Errorf("cleanup must not touch keys, got %v", err)
	}
}

func TestRedisStoreActiveIDs(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedisStore(t)
	a := New(testParams(1))
	b := New(testParams(1))
	for _, s := range []*Session{a, b} {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// A foreign key under the prefix is skipped, not an error.
	if err := mr.Set("session:lock", "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ids, err := store.ActiveIDs(ctx)
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id.String()] = true
	}
	if !seen[a.ID.String()] || !seen[b.ID.String()] {
		t.Errorf("ids %v missing a session", ids)
	}
}

func TestManagerCleanupSyncsGaugeAfterTTLExpiry(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedisStore(t)
	simulator := sim.New(nil)
	m := NewManager(store, simulator, nil)

	live, err := m.CreateSession(ctx, testParams(10))
	if err != nil {
		t.Fatalf("create live: %v", err)
	}
	stale, err := m.CreateSession(ctx, testParams(10))
	if err != nil {
		t.Fatalf("create stale: %v", err)
	}
	for _, s := range []*Session{live, stale} {
		if _, _, err := m.GetNextStep(ctx, s.ID); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	// TTL expiry removes the session behind the manager's back, so the
	// Inc on create is never matched by a Dec.
	mr.SetTTL("session:"+stale.ID.String(), time.Second)
	mr.FastForward(2 * time.Second)

	removed, err := m.CleanupSessions(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 (ttl is authoritative)", removed)
	}
	if simulator.Cached() != 1 {
		t.Errorf("cached walks = %d, want 1 survivor", simulator.Cached())
	}
	if got := testutil.ToFloat64(metrics.ActiveSessions); got != 1 {
		t.Errorf("active sessions gauge = %v, want 1", got)
	}
}
