// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
)

// ViewMarkerStore is the short tier of the view dedup cache: an in-process
// map of viewer:content keys to the instant the view was counted. Entries
// suppress repeat counting for the dedup window; a background sweep removes
// entries strictly older than the window, so the sweep can never erase a
// marker that is still suppressing.
type ViewMarkerStore struct {
	markers map[string]time.Time
	window  time.Duration
	mu      sync.RWMutex
	logger  *logging.ChanneledLogger
}

// NewViewMarkerStore creates a new view marker store with the given dedup window.
func NewViewMarkerStore(window time.Duration, logger *logging.ChanneledLogger) *ViewMarkerStore {
	if logger != nil {
		logger.Cache().Info("Initializing view marker store", "window", window)
	}
	return &ViewMarkerStore{
		markers: make(map[string]time.Time),
		window:  window,
		logger:  logger,
	}
}

// markerKey builds the viewer:content composite key.
func markerKey(viewerID, contentID string) string {
	return viewerID + ":" + contentID
}

// Seen reports whether a marker for the pair exists and is still inside the
// dedup window. Expired entries left behind between sweeps count as unseen.
func (vs *ViewMarkerStore) Seen(viewerID, contentID string) bool {
	start := time.Now()
	key := markerKey(viewerID, contentID)

	vs.mu.RLock()
	markedAt, exists := vs.markers[key]
	vs.mu.RUnlock()

	hit := exists && time.Since(markedAt) <= vs.window
	if vs.logger != nil {
		vs.logger.Cache().Debug("Cache operation", "operation", "seen", "type", "view_marker", "key", key, "hit", hit, "duration", time.Since(start))
	}
	return hit
}

// MarkIfUnseen atomically records a marker for the pair unless one is already
// inside the dedup window. Returns true when this call placed the marker, so
// exactly one of N racing view requests wins. An expired leftover entry is
// overwritten.
func (vs *ViewMarkerStore) MarkIfUnseen(viewerID, contentID string) bool {
	key := markerKey(viewerID, contentID)
	now := time.Now().UTC()

	vs.mu.Lock()
	markedAt, exists := vs.markers[key]
	if exists && now.Sub(markedAt) <= vs.window {
		vs.mu.Unlock()
		return false
	}
	vs.markers[key] = now
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Cache().Debug("Cache operation", "operation", "mark_if_unseen", "type", "view_marker", "key", key)
	}
	return true
}

// Mark records that a view was counted for the pair now.
func (vs *ViewMarkerStore) Mark(viewerID, contentID string) {
	key := markerKey(viewerID, contentID)

	vs.mu.Lock()
	vs.markers[key] = time.Now().UTC()
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Cache().Debug("Cache operation", "operation", "mark", "type", "view_marker", "key", key)
	}
}

// Sweep removes entries strictly older than the dedup window and returns
// how many were removed. Entries still inside the window are untouched.
func (vs *ViewMarkerStore) Sweep() int {
	start := time.Now()
	cutoff := time.Now().Add(-vs.window)

	vs.mu.Lock()
	removed := 0
	for key, markedAt := range vs.markers {
		if markedAt.Before(cutoff) {
			delete(vs.markers, key)
			removed++
		}
	}
	remaining := len(vs.markers)
	vs.mu.Unlock()

	if vs.logger != nil && removed > 0 {
		vs.logger.Cache().Debug("View marker sweep completed", "removed", removed, "remaining", remaining, "duration", time.Since(start))
	}
	return removed
}

// Len returns the number of markers currently held, expired or not.
func (vs *ViewMarkerStore) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.markers)
}

// Window returns the configured dedup window.
func (vs *ViewMarkerStore) Window() time.Duration {
	return vs.window
}
