package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a size-bounded cache whose entries expire after a fixed TTL.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	onEvict func(key string, data T)
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

var (
	_ Cache[int] = (*LRU[int])(nil)
	_ Sweeper    = (*LRU[int])(nil)
)

// NewLRU returns a cache holding at most maxSize entries for ttl each.
// A non-positive maxSize means unbounded.
func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// WithClock swaps the time source; used by tests.
func (c *LRU[T]) WithClock(now func() time.Time) *LRU[T] {
	c.now = now
	return c
}

// OnEvict registers a callback fired when an entry is dropped for
// capacity or expiry. Explicit Delete calls do not fire it.
func (c *LRU[T]) OnEvict(fn func(key string, data T)) *LRU[T] {
	c.onEvict = fn
	return c
}

func (c *LRU[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if !c.now().Before(e.expiresAt) {
		c.remove(elem)
		c.mu.Unlock()
		c.evicted(e)
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.mu.Unlock()
	return e.data, true
}

// ExpiresAt reports when key expires.
func (c *LRU[T]) ExpiresAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return time.Time{}, false
	}
	return elem.Value.(*entry[T]).expiresAt, true
}

func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	e := &entry[T]{key: key, data: data, expiresAt: c.now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		c.mu.Unlock()
		return
	}

	c.items[key] = c.order.PushFront(e)

	var dropped *entry[T]
	if c.maxSize > 0 && c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			dropped = oldest.Value.(*entry[T])
			c.remove(oldest)
		}
	}
	c.mu.Unlock()

	if dropped != nil {
		c.evicted(dropped)
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// DeleteFunc removes every entry for which match returns true and
// returns how many were removed.
func (c *LRU[T]) DeleteFunc(match func(key string, data T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var doomed []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry[T])
		if match(e.key, e.data) {
			doomed = append(doomed, elem)
		}
	}
	for _, elem := range doomed {
		c.remove(elem)
	}
	return len(doomed)
}

// UpdateFunc rewrites in place every live entry for which update returns
// true, keeping its expiry and position. It returns how many changed.
func (c *LRU[T]) UpdateFunc(update func(key string, data T) (T, bool)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry[T])
		if !now.Before(e.expiresAt) {
			continue
		}
		if data, ok := update(e.key, e.data); ok {
			elem.Value = &entry[T]{key: e.key, data: data, expiresAt: e.expiresAt}
			n++
		}
	}
	return n
}

// Sweep drops expired entries and returns how many were removed.
func (c *LRU[T]) Sweep() int {
	c.mu.Lock()
	now := c.now()
	var expired []*entry[T]
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry[T])
		if !now.Before(e.expiresAt) {
			expired = append(expired, e)
			c.remove(elem)
		}
		elem = next
	}
	c.mu.Unlock()

	for _, e := range expired {
		c.evicted(e)
	}
	return len(expired)
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// remove must be called with mu held.
func (c *LRU[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

func (c *LRU[T]) evicted(e *entry[T]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.data)
	}
}
