// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chainforge/optionsim/internal/cherr"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(testParams(10))

	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// The store hands out copies; mutating one must not leak back.
	got.CurrentStep = 99
	again, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.CurrentStep != 0 {
		t.Errorf("stored session mutated through returned copy")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), New(testParams(1)).ID)
	if !cherr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
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
	if _, err := store.Get(ctx, s.ID); !cherr.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	fresh := New(testParams(1))
	stale := New(testParams(1))
	stale.UpdatedAt = time.Now().UTC().Add(-idleHorizon - time.Minute)
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("save fresh: %v", err)
	}
	if err := store.Save(ctx, stale); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	removed, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, stale.ID); !cherr.IsNotFound(err) {
		t.Errorf("stale session should be gone, got %v", err)
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session should survive, got %v", err)
	}
}

func TestMemoryStoreActiveIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := New(testParams(1))
	b := New(testParams(1))
	for _, s := range []*Session{a, b} {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	ids, err := store.ActiveIDs(ctx)
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("len(ids) = %d, want 2", len(ids))
	}
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(testParams(100))
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(step int) {
			defer wg.Done()
			snap := *s
			snap.CurrentStep = step
			_ = store.Save(ctx, &snap)
			_, _ = store.Get(ctx, s.ID)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStep < 0 || got.CurrentStep >= 32 {
		t.Errorf("final step %d outside writer range", got.CurrentStep)
	}
}
