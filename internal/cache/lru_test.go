package cache

import (
	"testing"
	"time"
)

func constant[T any](v T) func() T { return func() T { return v } }

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.GetOrSet("a", constant(1))
	c.GetOrSet("b", constant(2))
	c.GetOrSet("a", constant(-1)) // touch a
	c.GetOrSet("c", constant(3))

	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
	if v := c.GetOrSet("a", constant(-1)); v != 1 {
		t.Fatalf("a = %d, want the original value", v)
	}
	if v := c.GetOrSet("b", constant(20)); v != 20 {
		t.Fatalf("b = %d, want a fresh value after eviction", v)
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](4, 10*time.Millisecond)
	c.GetOrSet("k", constant("old"))
	time.Sleep(20 * time.Millisecond)
	if v := c.GetOrSet("k", constant("new")); v != "new" {
		t.Fatalf("k = %q, want an expired entry to be recreated", v)
	}

	c.GetOrSet("x", constant("y"))
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d after cleaning", c.Size())
	}
}

func TestLRUCacheGetOrSetMemoizes(t *testing.T) {
	c := NewLRUCache[*int](4, time.Minute)
	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}

	first := c.GetOrSet("k", create)
	second := c.GetOrSet("k", create)
	if first != second || calls != 1 {
		t.Fatalf("expected memoized value, calls=%d", calls)
	}
	if other := c.GetOrSet("other", create); other == first || calls != 2 {
		t.Fatalf("expected a separate value per key, calls=%d", calls)
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Minute))
	m.Stop()
	m.Stop()
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](4, time.Millisecond)
	c.GetOrSet("a", constant(1))
	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired entry was never cleaned")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
