// Package caching provides the named lock set used to serialize per-target
// cache and engagement operations.
package caching

import (
	"sync"
	"time"
)

/*
=============================================================================
NAMED LOCK DOCUMENTATION
=============================================================================

CacheLock serializes operations that must not interleave for the same key
(reaction toggles on one target, view-count bumps on one story) while
leaving different keys fully concurrent.

LOCKING HIERARCHY:
1. CacheLock.mu (registry only, held briefly)
2. Per-key mutexes (held for the duration of the operation)

The registry mutex is never held while a per-key lock is held, so the two
levels cannot deadlock.

Every goroutine that will touch a per-key mutex increments that entry's
refcount before leaving the registry mutex, so an entry with refs == 0 has
no holder and no waiter and can be reaped.
=============================================================================
*/

// namedLock is one per-key mutex with the bookkeeping the reaper needs.
type namedLock struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

// CacheLock provides named per-key locking.
type CacheLock struct {
	mu        sync.Mutex
	locks     map[string]*namedLock
	lockTimes map[string]time.Time
}

// NewCacheLock creates a new cache lock manager
func NewCacheLock() *CacheLock {
	return &CacheLock{
		locks:     make(map[string]*namedLock),
		lockTimes: make(map[string]time.Time),
	}
}

// Lock acquires the lock for the given key
func (cl *CacheLock) Lock(key string) {
	cl.mu.Lock()
	entry, exists := cl.locks[key]
	if !exists {
		entry = &namedLock{}
		cl.locks[key] = entry
	}
	entry.refs++
	cl.lockTimes[key] = time.Now().UTC()
	cl.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for the given key
func (cl *CacheLock) Unlock(key string) {
	cl.mu.Lock()
	entry, exists := cl.locks[key]
	if exists {
		entry.refs--
		entry.lastUsed = time.Now().UTC()
		delete(cl.lockTimes, key)
	}
	cl.mu.Unlock()

	if exists {
		entry.mu.Unlock()
	}
}

// ReapIdle removes per-key mutexes that have no holder or waiter and were
// last used more than maxIdle ago, and returns how many were removed. Keys
// reappear with a fresh mutex on the next Lock.
func (cl *CacheLock) ReapIdle(maxIdle time.Duration) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	reaped := 0
	now := time.Now().UTC()
	for key, entry := range cl.locks {
		if entry.refs == 0 && now.Sub(entry.lastUsed) > maxIdle {
			delete(cl.locks, key)
			reaped++
		}
	}
	return reaped
}

// GetLockInfo returns how long each currently tracked lock has been held
func (cl *CacheLock) GetLockInfo() map[string]time.Duration {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	info := make(map[string]time.Duration)
	now := time.Now().UTC()
	for key, lockTime := range cl.lockTimes {
		info[key] = now.Sub(lockTime)
	}
	return info
}

// ActiveLocks returns the number of locks currently tracked as held
func (cl *CacheLock) ActiveLocks() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.lockTimes)
}

// TrackedLocks returns the number of per-key mutexes currently registered,
// held or idle.
func (cl *CacheLock) TrackedLocks() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.locks)
}

// IsExpired checks if a cached item has exceeded its TTL
// LOCKING: None required (pure computation)
func IsExpired(cachedAt time.Time, ttl time.Duration) bool {
	return time.Since(cachedAt) > ttl
}
