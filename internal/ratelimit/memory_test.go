package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemory(MemoryConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
		if err != nil || !d.Allowed {
			t.Fatalf("attempt %d: expected allowed, got %+v, %v", i+1, d, err)
		}
		if d.Remaining != 2-i {
			t.Fatalf("attempt %d: expected remaining %d, got %d", i+1, 2-i, d.Remaining)
		}
	}
	d, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	if err != nil || d.Allowed {
		t.Fatalf("expected 4th attempt to be refused, got %+v, %v", d, err)
	}
	if !d.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected reset time %v", d.ResetAt)
	}

	if d, _ := l.Allow(ctx, "login:5.6.7.8", 3, time.Minute); !d.Allowed {
		t.Fatalf("other keys must not share the bucket")
	}

	now = now.Add(time.Minute + time.Second)
	if d, _ := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute); !d.Allowed {
		t.Fatalf("expected a fresh window after expiry")
	}
}

func TestMemoryLimiterDisabled(t *testing.T) {
	l := NewMemory(MemoryConfig{})
	for i := 0; i < 100; i++ {
		if d, _ := l.Allow(context.Background(), "k", 0, time.Minute); !d.Allowed {
			t.Fatalf("limit 0 must always allow")
		}
	}
}

func TestMemoryLimiterCapacity(t *testing.T) {
	now := time.Now()
	l := NewMemory(MemoryConfig{Now: func() time.Time { return now }, MaxKeys: 1})
	ctx := context.Background()

	if _, err := l.Allow(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("first key: %v", err)
	}
	if _, err := l.Allow(ctx, "b", 1, time.Minute); err == nil {
		t.Fatalf("expected capacity error while first key is live")
	}
	now = now.Add(2 * time.Minute)
	if _, err := l.Allow(ctx, "b", 1, time.Minute); err != nil {
		t.Fatalf("expected expired key to be collected: %v", err)
	}
}
