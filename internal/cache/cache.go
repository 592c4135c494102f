// Package cache keeps recent service responses in memory.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache defines the interface for response caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Key builds a cache key from request parts. Parts are joined with a NUL so
// that ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "objectify:v1:" + hex.EncodeToString(hash[:])
}

// Memory is a TTL cache backed by go-cache.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache. A zero defaultTTL means entries never
// expire unless Set is given a TTL.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &Memory{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the cached value.
func (m *Memory) Get(key string) ([]byte, bool) {
	val, found := m.cache.Get(key)
	if !found {
		return nil, false
	}
	b, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Set stores value under key. A zero ttl uses the default.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.cache.Set(key, append([]byte(nil), value...), ttl)
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	m.cache.Delete(key)
}

// Clear removes everything.
func (m *Memory) Clear() {
	m.cache.Flush()
}

// Len reports the number of stored items, expired ones included until the
// next cleanup.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}
