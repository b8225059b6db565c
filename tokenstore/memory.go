package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	rec       Record
	has       bool
	expiresAt time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if rec.SavedAt.IsZero() {
		rec.SavedAt = now
	}
	s.rec = rec
	s.has = true
	s.expiresAt = time.Time{}
	if ttl > 0 {
		s.expiresAt = now.Add(ttl)
	}
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has {
		return Record{}, ErrNotFound
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		s.rec, s.has = Record{}, false
		return Record{}, ErrNotFound
	}
	return s.rec, nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec, s.has, s.expiresAt = Record{}, false, time.Time{}
	return nil
}
