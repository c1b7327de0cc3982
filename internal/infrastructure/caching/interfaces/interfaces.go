// Package interfaces defines cache operation contracts.
package interfaces

import (
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/types"
)

// ViewMarkerCache defines the short tier of the view dedup cache.
type ViewMarkerCache interface {
	SeenRecently(viewerID, contentID string) bool
	MarkViewed(viewerID, contentID string)

	// MarkViewedIfUnseen checks and marks in one atomic step; exactly one
	// of N concurrent callers for the same pair gets true.
	MarkViewedIfUnseen(viewerID, contentID string) bool

	ViewDedupWindow() time.Duration
}

// ProfileCache defines operations for cached profile payloads.
type ProfileCache interface {
	GetProfile(userID string) (*user.Profile, bool)
	SetProfile(userID string, profile *user.Profile)
	InvalidateProfile(userID string)
}

// TargetLocker serializes operations on one engagement target.
type TargetLocker interface {
	LockTarget(key string)
	UnlockTarget(key string)
}

// Cache is the full cache surface the application services depend on.
type Cache interface {
	ViewMarkerCache
	ProfileCache
	TargetLocker

	GetStats() types.CacheStats
}
