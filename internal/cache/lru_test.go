package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLRU(size int, ttl time.Duration) (*LRU[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewLRU[string](size, ttl).WithClock(clock.now), clock
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	c.Set("a", "1")
	got, ok := c.Get("a")
	if !ok || got != "1" {
		t.Fatalf("Get(a) = %q, %v; want 1, true", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) reported a hit")
	}

	c.Set("a", "2")
	if got, _ := c.Get("a"); got != "2" {
		t.Fatalf("overwrite not visible, got %q", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	var evicted []string
	c.OnEvict(func(key, _ string) { evicted = append(evicted, key) })

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive, it was used recently")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
}

func TestLRU_Expiry(t *testing.T) {
	c, clock := newTestLRU(10, time.Minute)
	var evicted []string
	c.OnEvict(func(key, _ string) { evicted = append(evicted, key) })

	c.Set("a", "1")
	clock.advance(30 * time.Second)
	c.Set("b", "2")

	exp, ok := c.ExpiresAt("a")
	if !ok || !exp.Equal(clock.t.Add(30*time.Second)) {
		t.Fatalf("ExpiresAt(a) = %v, %v", exp, ok)
	}

	clock.advance(30 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be expired exactly at its deadline")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("b should still be live")
	}

	clock.advance(time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len after sweep = %d, want 0", c.Len())
	}
	if len(evicted) != 2 {
		t.Fatalf("evicted = %v, want both keys", evicted)
	}
}

func TestLRU_DeleteAndDeleteFunc(t *testing.T) {
	c, _ := newTestLRU(0, time.Hour)
	var evicted int
	c.OnEvict(func(string, string) { evicted++ })

	c.Set("t1", "alice")
	c.Set("t2", "bob")
	c.Set("t3", "alice")

	c.Delete("t2")
	if n := c.DeleteFunc(func(_, v string) bool { return v == "alice" }); n != 2 {
		t.Fatalf("DeleteFunc removed %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
	if evicted != 0 {
		t.Fatalf("explicit deletes fired OnEvict %d times", evicted)
	}
}

func TestLRU_UpdateFuncKeepsExpiry(t *testing.T) {
	c, clock := newTestLRU(0, time.Minute)

	c.Set("a", "1")
	c.Set("b", "1")
	before, _ := c.ExpiresAt("a")

	clock.advance(30 * time.Second)
	n := c.UpdateFunc(func(key, data string) (string, bool) {
		if key == "a" {
			return "2", true
		}
		return data, false
	})
	if n != 1 {
		t.Fatalf("UpdateFunc changed %d entries, want 1", n)
	}
	if got, _ := c.Get("a"); got != "2" {
		t.Fatalf("Get(a) = %q, want 2", got)
	}
	if after, _ := c.ExpiresAt("a"); !after.Equal(before) {
		t.Fatalf("expiry moved from %v to %v", before, after)
	}

	c.Delete("b")
	c.UpdateFunc(func(string, string) (string, bool) { return "3", true })
	if _, ok := c.Get("b"); ok {
		t.Fatal("UpdateFunc resurrected a deleted key")
	}

	clock.advance(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("updated entry outlived its original TTL")
	}
}

func TestJanitor_SweepAll(t *testing.T) {
	a, clockA := newTestLRU(0, time.Second)
	b, clockB := newTestLRU(0, time.Hour)
	a.Set("x", "1")
	a.Set("y", "2")
	b.Set("z", "3")

	j := NewJanitor(nil)
	j.Register(a)
	j.Register(b)

	clockA.advance(2 * time.Second)
	clockB.advance(2 * time.Second)

	if n := j.SweepAll(); n != 2 {
		t.Fatalf("SweepAll = %d, want 2", n)
	}

	j.Start(time.Hour)
	j.Stop()
	j.Stop()
}
