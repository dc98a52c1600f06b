package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected hit for fresh entry")
	}
	if got != "v" {
		t.Errorf("Expected v, got %v", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for absent key")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	c := New()
	c.now = func() time.Time { return now }

	c.Set("k", 42, 30*time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	now = now.Add(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestZeroTTLIgnored(t *testing.T) {
	c := New()
	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected zero-TTL set to be dropped")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}
