package cache

import (
	"sync"
	"testing"
	"time"
)

func TestGetOrCreate_SameValueForConcurrentCallers(t *testing.T) {
	c := New[*int](time.Minute)

	var wg sync.WaitGroup
	got := make([]*int, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.GetOrCreate("sid", func() *int { n := i; return &n })
		}(i)
	}
	wg.Wait()

	for i := range got {
		if got[i] != got[0] {
			t.Fatalf("caller %d got a different value", i)
		}
	}
}

func TestExpiry(t *testing.T) {
	c := New[string](50 * time.Millisecond)
	c.Set("k", "v")

	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("value should have expired")
	}
}

func TestDelete(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be gone")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Clear left %d", c.Len())
	}
}
