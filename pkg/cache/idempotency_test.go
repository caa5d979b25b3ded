package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyStore(t *testing.T) {
	s := NewIdempotencyStore(time.Minute)

	_, ok := s.Get("key")
	assert.False(t, ok)

	s.Set("key", "0xabc")
	hash, ok := s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "0xabc", hash)
}

func TestIdempotencyStoreExpiry(t *testing.T) {
	s := NewIdempotencyStore(10 * time.Millisecond)
	s.Set("key", "0xabc")

	time.Sleep(20 * time.Millisecond)

	_, ok := s.Get("key")
	assert.False(t, ok)
}
