package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("u1|week", 1)
	c.Set("u1|month", 2)
	c.Set("u2|month", 3)

	if removed := c.DeletePrefix("u1|"); removed != 2 {
		t.Errorf("DeletePrefix(u1|) removed %d, want 2", removed)
	}
	if _, ok := c.Get("u1|week"); ok {
		t.Error("u1 entries should be gone")
	}
	if _, ok := c.Get("u2|month"); !ok {
		t.Error("u2 entry should be untouched")
	}
	if removed := c.DeletePrefix("u3|"); removed != 0 {
		t.Errorf("DeletePrefix with no matches removed %d, want 0", removed)
	}
}
