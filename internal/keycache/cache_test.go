package keycache

import (
	"testing"
	"time"
)

func TestGetMissesAfterTTL(t *testing.T) {
	c, err := New(8, 5*time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	c.Put("key-1", Entry{Secret: "s1", Provider: "gemini", FetchedAt: now})

	if _, ok := c.Get("key-1", now.Add(4*time.Minute)); !ok {
		t.Fatal("expected hit inside ttl window")
	}
	if _, ok := c.Get("key-1", now.Add(5*time.Minute)); ok {
		t.Fatal("expected miss at ttl boundary")
	}
	if c.Len() != 0 {
		t.Fatalf("stale entry should be removed, len=%d", c.Len())
	}
}

func TestPutOverwrites(t *testing.T) {
	c, err := New(8, 5*time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	c.Put("key-1", Entry{Secret: "old", Provider: "gemini", FetchedAt: now.Add(-10 * time.Minute)})
	c.Put("key-1", Entry{Secret: "new", Provider: "gemini", FetchedAt: now})

	e, ok := c.Get("key-1", now)
	if !ok {
		t.Fatal("expected hit after overwrite")
	}
	if e.Secret != "new" {
		t.Fatalf("expected refreshed secret, got %q", e.Secret)
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2, 5*time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	c.Put("a", Entry{Secret: "sa", FetchedAt: now})
	c.Put("b", Entry{Secret: "sb", FetchedAt: now})

	// touch a so b is the eviction candidate
	if _, ok := c.Get("a", now); !ok {
		t.Fatal("expected hit for a")
	}
	c.Put("c", Entry{Secret: "sc", FetchedAt: now})

	if _, ok := c.Get("b", now); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a", now); !ok {
		t.Fatal("expected a to survive")
	}
	if _, ok := c.Get("c", now); !ok {
		t.Fatal("expected c to be present")
	}
}
