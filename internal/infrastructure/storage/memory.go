package storage

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
)

// MemoryStore keeps encoded documents in memory. Documents go through the
// same JSON encoding as FileStore, so decode behavior matches.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string][]byte
	writeErr  error
	writes    int
	failAfter int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte), failAfter: -1}
}

// Read decodes the document under key into v.
func (s *MemoryStore) Read(ctx context.Context, key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	s.mu.Lock()
	data, ok := s.docs[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Write stores the encoding of v under key unless a failure is injected.
func (s *MemoryStore) Write(ctx context.Context, key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil && (s.failAfter < 0 || s.writes >= s.failAfter) {
		return s.writeErr
	}
	s.writes++
	s.docs[key] = data
	return nil
}

// FailWrites makes every subsequent Write return err. A nil err clears the
// failure.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	s.failAfter = -1
}

// FailWritesAfter lets n more writes succeed, then fails with err.
func (s *MemoryStore) FailWritesAfter(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	s.failAfter = s.writes + n
}

// Put stores raw bytes under key, bypassing encoding.
func (s *MemoryStore) Put(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), raw...)
}

// Raw returns the stored bytes for key.
func (s *MemoryStore) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[key]
	return append([]byte(nil), data...), ok
}

// Writes returns the number of successful writes.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
