package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
// Suitable for tests and single-instance development servers.
type MemoryStore struct {
	byID    map[string]*Session
	byToken map[string]string // token hash -> id
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Session),
		byToken: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s.Token == "" {
		return ErrInvalidToken
	}
	cp := *s
	cp.Token = ""

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = &cp
	m.byToken[HashToken(s.Token)] = s.ID
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byToken[HashToken(token)]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	cp := *s
	cp.Token = token
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(id)
	return nil
}

func (m *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.UserID == userID {
			m.deleteLocked(id)
		}
	}
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.LastActiveAt = lastActiveAt
	return nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.byID {
		if s.ExpiresAt.Before(now) {
			m.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) deleteLocked(id string) {
	delete(m.byID, id)
	for hash, sid := range m.byToken {
		if sid == id {
			delete(m.byToken, hash)
		}
	}
}
