package router

import (
	"sync"
	"time"
)

const (
	DefaultWindow     = time.Second
	DefaultMaxEntries = 256
)

// Debouncer remembers when each command key last ran. Entries older than
// the window are pruned on every write and the table never grows past
// maxEntries.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	last   map[string]time.Time
	now    func() time.Time
}

func NewDebouncer(window time.Duration, maxEntries int) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Debouncer{
		window: window,
		max:    maxEntries,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether key may run now and, if so, records it.
func (d *Debouncer) Allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if t, ok := d.last[key]; ok && now.Sub(t) < d.window {
		return false
	}

	for k, t := range d.last {
		if now.Sub(t) >= d.window {
			delete(d.last, k)
		}
	}
	for len(d.last) >= d.max {
		d.evictOldest()
	}
	d.last[key] = now
	return true
}

func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}

func (d *Debouncer) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, t := range d.last {
		if !found || t.Before(oldest) {
			oldestKey, oldest, found = k, t, true
		}
	}
	if found {
		delete(d.last, oldestKey)
	}
}
