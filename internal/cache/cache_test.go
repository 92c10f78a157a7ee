package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewTTL[int](4, time.Minute)
	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get = %d, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestExpiry(t *testing.T) {
	c := NewTTL[string](4, 10*time.Millisecond)
	c.Set("a", "x")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewTTL[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a retained")
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
}

func TestPurge(t *testing.T) {
	c := NewTTL[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Size after purge = %d", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected purge to drop entries")
	}
}
