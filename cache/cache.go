// Package cache provides the memoization table backing the registry's
// derived queries.
//
// The table is a thin wrapper over an LRU cache keyed by the comparable
// argument tuple of a query. Writes are synchronous: a value stored with Set
// is observable by the next Get, which is what makes the registry's
// memoization contract hold (two identical queries between mutations return
// the same cached result). Invalidation is wholesale through Purge.
package cache

import (
	"errors"

	"github.com/bluele/gcache"
)

var (
	// ErrCacheMiss indicates that a key was not found in the cache
	ErrCacheMiss = errors.New("cache: key not found")
)

// DefaultSize is the default capacity of a memo table. Query argument tuples
// are small finite sets, so eviction is not expected in practice.
const DefaultSize = 128

// Memo is a thread-safe memoization table with wholesale invalidation.
type Memo struct {
	cache gcache.Cache
}

// New creates a memo table with the given capacity.
// A non-positive size falls back to DefaultSize.
func New(size int) *Memo {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memo{
		cache: gcache.New(size).LRU().Build(),
	}
}

// Get returns the value stored under key, or ErrCacheMiss.
func (m *Memo) Get(key any) (any, error) {
	v, err := m.cache.Get(key)
	if err != nil {
		return nil, ErrCacheMiss
	}
	return v, nil
}

// Set stores a value under key. The value is observable by the next Get.
func (m *Memo) Set(key, value any) error {
	return m.cache.Set(key, value)
}

// Purge discards every entry.
func (m *Memo) Purge() {
	m.cache.Purge()
}

// Len returns the number of live entries.
func (m *Memo) Len() int {
	return m.cache.Len(true)
}

// HitCount returns the number of Get calls answered from the table.
func (m *Memo) HitCount() uint64 {
	return m.cache.HitCount()
}

// MissCount returns the number of Get calls that missed.
func (m *Memo) MissCount() uint64 {
	return m.cache.MissCount()
}
