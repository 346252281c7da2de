package storage

import (
	"context"
	"sync"
)

type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryKV) Apply(_ context.Context, b Batch) error {
	if b.empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range b.Set {
		s.data[k] = v
	}
	for _, k := range b.Delete {
		delete(s.data, k)
	}
	return nil
}

func (s *MemoryKV) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryKV) Close() error { return nil }
