// Package types defines the shared structures held by the cache stores.
package types

import (
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
)

// ProfileSnapshot is a cached, fully-assembled member profile payload.
type ProfileSnapshot struct {
	Profile    *user.Profile
	ComputedAt time.Time
}

// CacheStats summarizes store sizes for the ops endpoints and the
// cleanup reporter.
type CacheStats struct {
	ViewMarkers      int `json:"viewMarkers"`
	ProfileSnapshots int `json:"profileSnapshots"`
	ActiveLocks      int `json:"activeLocks"`
}
