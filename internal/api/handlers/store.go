package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"signal-backtest/internal/backtest"
)

// ResultStore keeps recent backtest results in memory so their ledgers can
// be fetched after the run. Nothing is written to disk; entries expire after
// ttl and the oldest is evicted beyond max.
type ResultStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]storedResult
	order   []string
	now     func() time.Time
}

type storedResult struct {
	result    *backtest.Result
	expiresAt time.Time
}

func NewResultStore(ttl time.Duration, max int) *ResultStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if max <= 0 {
		max = 100
	}
	return &ResultStore{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]storedResult),
		now:     time.Now,
	}
}

// Put stores res and returns its new ID.
func (s *ResultStore) Put(res *backtest.Result) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = storedResult{result: res, expiresAt: s.now().Add(s.ttl)}
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		delete(s.entries, s.order[0])
		s.order = s.order[1:]
	}
	return id
}

func (s *ResultStore) Get(id string) (*backtest.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	return e.result, true
}
