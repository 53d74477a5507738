// Package cache holds the in-process TTL caches; the session store of
// internal/identity is the main user.
package cache

import (
	"sync"
	"time"

	"fintrack/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Len() int
}

// Sweeper is implemented by caches whose expired entries can be purged
// in bulk.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps registered caches until stopped.
type Janitor struct {
	logger *log.Logger

	mu       sync.Mutex
	caches   []Sweeper
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewJanitor(logger *log.Logger) *Janitor {
	if logger == nil {
		logger = log.Default(log.ComponentApp)
	}
	return &Janitor{
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (j *Janitor) Register(c Sweeper) {
	j.mu.Lock()
	j.caches = append(j.caches, c)
	j.mu.Unlock()
}

// Start runs the sweep loop in the background.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.SweepAll(); n > 0 {
				j.logger.Debug("Swept expired cache entries", "removed", n)
			}
		case <-j.stop:
			return
		}
	}
}

// SweepAll purges every registered cache once and returns the number of
// entries removed.
func (j *Janitor) SweepAll() int {
	j.mu.Lock()
	caches := append([]Sweeper(nil), j.caches...)
	j.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.Sweep()
	}
	return total
}

// Stop ends the sweep loop; it must follow Start.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
		<-j.done
	})
}
