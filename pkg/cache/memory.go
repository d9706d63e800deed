package cache

import (
	"context"
	"sync"
	"time"
)

// CleanupInterval is how often Memory drops expired entries.
const CleanupInterval = time.Minute

type entry[V any] struct {
	expires time.Time
	value   V
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Cache. Call Close to stop its cleanup goroutine.
type Memory[V any] struct {
	items  map[string]entry[V]
	now    func() time.Time
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewMemory[V any]() *Memory[V] {
	m := &Memory[V]{items: make(map[string]entry[V]), now: time.Now, done: make(chan struct{})}
	go m.cleanup(CleanupInterval)
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return zero, ErrClosed
	}
	e, ok := m.items[key]
	if !ok || e.expired(m.now()) {
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of live entries.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, now := 0, m.now()
	for _, e := range m.items {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine. Later calls return ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.items = nil
	close(m.done)
	return nil
}

func (m *Memory[V]) cleanup(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			m.prune()
		}
	}
}

func (m *Memory[V]) prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

// MemoryCounter is an in-process Counter.
type MemoryCounter struct {
	*Memory[int64]
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{Memory: NewMemory[int64]()}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m := c.Memory
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	now := m.now()
	e, ok := m.items[key]
	if !ok || e.expired(now) {
		e = entry[int64]{}
		if ttl > 0 {
			e.expires = now.Add(ttl)
		}
	}
	e.value++
	m.items[key] = e
	return e.value, nil
}

var (
	_ Cache[int] = (*Memory[int])(nil)
	_ Counter    = (*MemoryCounter)(nil)
)
