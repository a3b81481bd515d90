package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stockledger/backend/internal/domain/shared"
)

// InMemorySubmissionStore implements SubmissionStore with a map. Keys are not
// shared between processes.
type InMemorySubmissionStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySubmissionStore creates the store and starts a goroutine that
// sweeps expired keys every interval
func NewInMemorySubmissionStore(interval time.Duration) *InMemorySubmissionStore {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &InMemorySubmissionStore{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(interval)
	return s
}

// Claim records the key unless an unexpired claim exists
func (s *InMemorySubmissionStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// Release forgets the key
func (s *InMemorySubmissionStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Seen reports whether the key holds an unexpired claim
func (s *InMemorySubmissionStore) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	return ok && s.now().Before(exp), nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemorySubmissionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored keys, expired or not
func (s *InMemorySubmissionStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemorySubmissionStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySubmissionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, key)
		}
	}
}

var _ shared.SubmissionStore = (*InMemorySubmissionStore)(nil)
