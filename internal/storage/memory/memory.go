// Package memory is an in-process storage.KV used by tests and the
// memory backend. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"guidetrack/internal/storage"
)

type entry struct {
	value   []byte
	version int64
	synced  int64
	updated time.Time
}

type Store struct {
	mu   sync.RWMutex
	data map[string]*entry
}

func NewStore() *Store {
	return &Store{data: make(map[string]*entry)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		e = &entry{}
		s.data[key] = e
	}
	e.value = append([]byte(nil), value...)
	e.version++
	e.updated = time.Now()
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) PendingSync(_ context.Context, limit int) ([]storage.PendingKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.PendingKey
	for k, e := range s.data {
		if e.synced < e.version {
			out = append(out, storage.PendingKey{Key: k, Version: e.version, UpdatedAt: e.updated})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, key string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[key]; ok && e.synced < version {
		e.synced = version
	}
	return nil
}
