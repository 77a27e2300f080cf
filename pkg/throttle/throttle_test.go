package throttle

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	ok, err := s.Acquire(ctx, "regrade:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v; want true, nil", ok, err)
	}
	if ok, _ := s.Acquire(ctx, "regrade:1", time.Minute); ok {
		t.Fatal("second acquire inside the window should fail")
	}
	if ok, _ := s.Acquire(ctx, "regrade:2", time.Minute); !ok {
		t.Fatal("different key should not be throttled")
	}

	now = now.Add(time.Minute)
	if ok, _ := s.Acquire(ctx, "regrade:1", time.Minute); !ok {
		t.Fatal("acquire after the window should succeed")
	}
}

func TestMemoryStoreZeroTTLNeverThrottles(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 3; i++ {
		if ok, _ := s.Acquire(context.Background(), "k", 0); !ok {
			t.Fatalf("acquire %d with zero ttl was throttled", i)
		}
	}
}
