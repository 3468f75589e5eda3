package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/accessmatrix/rule"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	if _, ok := c.Get(ctx, 1, "invites", rule.PermissionView); ok {
		t.Fatal("expected cache miss")
	}

	c.Set(ctx, 1, "invites", rule.PermissionView, true)
	allowed, ok := c.Get(ctx, 1, "invites", rule.PermissionView)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !allowed {
		t.Fatal("expected allowed")
	}

	// Denials are cached too.
	c.Set(ctx, 1, "invites", rule.PermissionManage, false)
	allowed, ok = c.Get(ctx, 1, "invites", rule.PermissionManage)
	if !ok || allowed {
		t.Fatalf("expected cached denial, got allowed=%v ok=%v", allowed, ok)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, 1, "invites", rule.PermissionView, true)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get(ctx, 1, "invites", rule.PermissionView); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, got %d", c.Len())
	}
}

func TestMemoryCacheInvalidateUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, 1, "invites", rule.PermissionView, true)
	c.Set(ctx, 1, "reports", rule.PermissionEdit, false)
	c.Set(ctx, 2, "invites", rule.PermissionView, true)

	c.InvalidateUser(ctx, 1)

	if _, ok := c.Get(ctx, 1, "invites", rule.PermissionView); ok {
		t.Fatal("user 1 invites should be invalidated")
	}
	if _, ok := c.Get(ctx, 1, "reports", rule.PermissionEdit); ok {
		t.Fatal("user 1 reports should be invalidated")
	}
	if _, ok := c.Get(ctx, 2, "invites", rule.PermissionView); !ok {
		t.Fatal("user 2 should still be cached")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestMemoryCachePurge(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, 1, "invites", rule.PermissionView, true)
	c.Set(ctx, 2, "invites", rule.PermissionView, true)
	c.Purge(ctx)

	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
	if _, ok := c.Get(ctx, 2, "invites", rule.PermissionView); ok {
		t.Fatal("expected miss after purge")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		c.Set(ctx, int64(i), "invites", rule.PermissionView, true)
	}
	if c.Len() > 2 {
		t.Fatalf("expected max 2 entries, got %d", c.Len())
	}

	// Overwriting an existing key does not grow the cache.
	c.Set(ctx, 4, "invites", rule.PermissionView, false)
	if c.Len() > 2 {
		t.Fatalf("expected max 2 entries after overwrite, got %d", c.Len())
	}
}
