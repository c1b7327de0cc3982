package caching

import (
	"sync"
	"testing"
	"time"
)

func TestLockSerializesSameKey(t *testing.T) {
	cl := NewCacheLock()

	const workers = 20
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.Lock("story:s1")
			defer cl.Unlock("story:s1")
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
	if got := cl.ActiveLocks(); got != 0 {
		t.Fatalf("ActiveLocks() = %d after all unlocks, want 0", got)
	}
}

func TestReapIdleRemovesReleasedLocks(t *testing.T) {
	cl := NewCacheLock()

	for _, key := range []string{"story:a", "story:b", "comment:c"} {
		cl.Lock(key)
		cl.Unlock(key)
	}
	if got := cl.TrackedLocks(); got != 3 {
		t.Fatalf("TrackedLocks() = %d, want 3", got)
	}

	time.Sleep(time.Millisecond)
	if reaped := cl.ReapIdle(0); reaped != 3 {
		t.Fatalf("ReapIdle(0) = %d, want 3", reaped)
	}
	if got := cl.TrackedLocks(); got != 0 {
		t.Fatalf("TrackedLocks() = %d after reap, want 0", got)
	}

	// A reaped key locks again with a fresh mutex.
	cl.Lock("story:a")
	cl.Unlock("story:a")
	if got := cl.TrackedLocks(); got != 1 {
		t.Fatalf("TrackedLocks() = %d after relock, want 1", got)
	}
}

func TestReapIdleSkipsHeldAndRecentLocks(t *testing.T) {
	cl := NewCacheLock()

	cl.Lock("story:held")
	defer cl.Unlock("story:held")

	cl.Lock("story:recent")
	cl.Unlock("story:recent")

	if reaped := cl.ReapIdle(time.Hour); reaped != 0 {
		t.Fatalf("ReapIdle(1h) = %d, want 0", reaped)
	}
	if got := cl.TrackedLocks(); got != 2 {
		t.Fatalf("TrackedLocks() = %d, want 2", got)
	}

	time.Sleep(time.Millisecond)
	if reaped := cl.ReapIdle(0); reaped != 1 {
		t.Fatalf("ReapIdle(0) = %d, want 1 (held lock must survive)", reaped)
	}
	if got := cl.TrackedLocks(); got != 1 {
		t.Fatalf("TrackedLocks() = %d, want 1", got)
	}
}

func TestReapIdleSkipsWaiters(t *testing.T) {
	cl := NewCacheLock()

	cl.Lock("story:contested")

	acquired := make(chan struct{})
	go func() {
		cl.Lock("story:contested")
		close(acquired)
		cl.Unlock("story:contested")
	}()

	// Let the waiter register before reaping.
	time.Sleep(10 * time.Millisecond)
	if reaped := cl.ReapIdle(0); reaped != 0 {
		t.Fatalf("ReapIdle(0) = %d with a waiter queued, want 0", reaped)
	}

	cl.Unlock("story:contested")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}
