package cache

import (
	"sync"
	"time"
)

type entry struct {
	TxHash    string
	Timestamp time.Time
}

// IdempotencyStore запоминает хэш по ключу брадкаста, чтобы повторный запрос
// не уходил в сеть второй раз, пока его не подтвердил sweep
type IdempotencyStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

// Get возвращает хэш по ключу или false, если его нет или запись устарела
func (s *IdempotencyStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return "", false
	}
	if time.Since(e.Timestamp) > s.ttl {
		delete(s.m, key)
		return "", false
	}
	return e.TxHash, true
}

// Set сохраняет хэш по ключу
func (s *IdempotencyStore) Set(key, txHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = entry{
		TxHash:    txHash,
		Timestamp: time.Now(),
	}
}
