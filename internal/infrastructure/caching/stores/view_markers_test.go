package stores

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestViewMarkerSeenWithinWindow(t *testing.T) {
	store := NewViewMarkerStore(50*time.Millisecond, nil)

	if store.Seen("viewer-1", "story-1") {
		t.Error("unmarked pair reported as seen")
	}

	store.Mark("viewer-1", "story-1")
	if !store.Seen("viewer-1", "story-1") {
		t.Error("fresh marker not reported as seen")
	}
	if store.Seen("viewer-2", "story-1") {
		t.Error("marker leaked across viewers")
	}
	if store.Seen("viewer-1", "story-2") {
		t.Error("marker leaked across content")
	}

	time.Sleep(60 * time.Millisecond)
	if store.Seen("viewer-1", "story-1") {
		t.Error("expired marker still reported as seen")
	}
}

func TestViewMarkerSweepRemovesOnlyExpired(t *testing.T) {
	store := NewViewMarkerStore(50*time.Millisecond, nil)

	store.Mark("viewer-1", "story-1")
	time.Sleep(60 * time.Millisecond)
	store.Mark("viewer-2", "story-1")

	removed := store.Sweep()
	if removed != 1 {
		t.Errorf("sweep removed %d entries, want 1", removed)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d entries after sweep, want 1", store.Len())
	}
	if !store.Seen("viewer-2", "story-1") {
		t.Error("sweep removed a marker that was still inside the window")
	}
}

func TestViewMarkerConcurrentAccess(t *testing.T) {
	store := NewViewMarkerStore(time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			viewer := fmt.Sprintf("viewer-%d", n%10)
			store.Mark(viewer, "story-1")
			store.Seen(viewer, "story-1")
			store.Sweep()
		}(i)
	}
	wg.Wait()

	if store.Len() != 10 {
		t.Errorf("store holds %d entries, want 10", store.Len())
	}
}
