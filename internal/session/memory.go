package session

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, sid, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[sid][key]
	if !ok {
		return "", ErrNoToken
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m[sid] == nil {
		s.m[sid] = make(map[string]string)
	}
	s.m[sid][key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sid, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m[sid], key)
	if len(s.m[sid]) == 0 {
		delete(s.m, sid)
	}
	return nil
}
