package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryObject is a stored file as Memory keeps it.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// Memory implements Storage in process.
type Memory struct {
	objects map[string]MemoryObject
	baseURL string
	mu      sync.RWMutex
}

// NewMemory returns an empty store whose URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string]MemoryObject)}
}

func (m *Memory) Put(ctx context.Context, key string, body io.ReadSeeker, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = MemoryObject{ContentType: contentType, Data: data}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return m.baseURL + "/" + key
}

// Get returns a stored object.
func (m *Memory) Get(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ Storage = (*Memory)(nil)
