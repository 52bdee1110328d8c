package cache

import (
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c := New[string](time.Minute)

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("value survived Delete")
	}
}

func TestExpiration(t *testing.T) {
	c := New[int](10 * time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("value survived its TTL")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[int](0)

	c.Set("k", 42)
	time.Sleep(10 * time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Errorf("Get = %d, %v", v, ok)
	}
}

func TestFlush(t *testing.T) {
	c := New[int](time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("value survived Flush")
	}
}
