package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if _, ok, _ := c.Get(ctx, "quotes?page=1"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	payload := []byte(`{"data":[]}`)
	if err := c.Set(ctx, "quotes?page=1", "quotes", payload, DefaultCacheTTL); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "quotes?page=1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}

	// Mutating the returned slice must not corrupt the cached entry.
	got[0] = 'X'
	again, _, _ := c.Get(ctx, "quotes?page=1")
	if !bytes.Equal(again, payload) {
		t.Error("cache entry aliased caller's buffer")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set(ctx, "quotes?page=1", "quotes", []byte("fresh"), time.Minute)
	if _, ok, _ := c.Get(ctx, "quotes?page=1"); !ok {
		t.Fatal("entry should be served before the TTL elapses")
	}

	c.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if _, ok, _ := c.Get(ctx, "quotes?page=1"); ok {
		t.Error("entry should expire once the TTL elapses")
	}
}

func TestMemoryCacheInvalidateResource(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "quotes?page=1", "quotes", []byte("a"), DefaultCacheTTL)
	c.Set(ctx, "quotes?page=2", "quotes", []byte("b"), DefaultCacheTTL)
	c.Set(ctx, "rfqs?page=1", "rfqs", []byte("c"), DefaultCacheTTL)

	if err := c.InvalidateResource(ctx, "quotes"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, key := range []string{"quotes?page=1", "quotes?page=2"} {
		if _, ok, _ := c.Get(ctx, key); ok {
			t.Errorf("%s should be gone after invalidation", key)
		}
	}
	if _, ok, _ := c.Get(ctx, "rfqs?page=1"); !ok {
		t.Error("unrelated resource must survive invalidation")
	}
}

func TestOptimisticUpdateSuccessInvalidates(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "quotes/7", "quotes", []byte(`{"outcome":"PENDING"}`), DefaultCacheTTL)
	c.Set(ctx, "quotes?page=1", "quotes", []byte(`[]`), DefaultCacheTTL)

	patched := false
	err := OptimisticUpdate(ctx, c, "quotes/7", "quotes",
		func(old []byte) []byte {
			patched = true
			return []byte(`{"outcome":"WON"}`)
		},
		func() error { return nil },
	)
	if err != nil {
		t.Fatalf("optimistic update: %v", err)
	}
	if !patched {
		t.Error("patch was not applied")
	}

	// Success still invalidates the resource so server-computed fields get
	// reconciled on the next read.
	if _, ok, _ := c.Get(ctx, "quotes/7"); ok {
		t.Error("detail entry should be invalidated after a successful mutation")
	}
	if _, ok, _ := c.Get(ctx, "quotes?page=1"); ok {
		t.Error("list entry should be invalidated after a successful mutation")
	}
}

func TestOptimisticUpdateRollsBackVerbatim(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	original := []byte(`{"outcome":"PENDING","fx_rate":3.6725}`)
	c.Set(ctx, "quotes/7", "quotes", original, DefaultCacheTTL)

	mutateErr := errors.New("constraint violated")
	err := OptimisticUpdate(ctx, c, "quotes/7", "quotes",
		func(old []byte) []byte { return []byte(`{"outcome":"WON"}`) },
		func() error { return mutateErr },
	)
	if !errors.Is(err, mutateErr) {
		t.Fatalf("expected mutation error back, got %v", err)
	}

	got, ok, _ := c.Get(ctx, "quotes/7")
	if !ok {
		t.Fatal("entry must still exist after rollback")
	}
	if !bytes.Equal(got, original) {
		t.Errorf("rollback must restore the pre-patch snapshot verbatim, got %q", got)
	}
}

func TestOptimisticUpdateMissOnFailureDeletes(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	// No cached entry beforehand: a failed mutation must leave no trace.
	err := OptimisticUpdate(ctx, c, "quotes/9", "quotes",
		func(old []byte) []byte { return []byte("patched") },
		func() error { return errors.New("boom") },
	)
	if err == nil {
		t.Fatal("expected mutation error")
	}
	if _, ok, _ := c.Get(ctx, "quotes/9"); ok {
		t.Error("no entry should remain when the mutation fails on a cache miss")
	}
}

func TestOptimisticUpdateNilPatch(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	c.Set(ctx, "quotes?page=1", "quotes", []byte("cached"), DefaultCacheTTL)

	// Creates and deletes pass a nil patch; only invalidation applies.
	if err := OptimisticUpdate(ctx, c, "quotes?page=1", "quotes", nil, func() error { return nil }); err != nil {
		t.Fatalf("optimistic update: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "quotes?page=1"); ok {
		t.Error("entry should be invalidated")
	}
}
