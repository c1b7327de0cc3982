package stores

import (
	"sync"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/types"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
)

// profileSnapshotTTL bounds how stale a cached profile payload may be.
// Engagement writes invalidate eagerly, so this is a backstop.
const profileSnapshotTTL = 5 * time.Minute

// ProfilesStore caches fully-assembled member profile payloads so the
// profile endpoint does not re-join points, level, and achievements on
// every request.
type ProfilesStore struct {
	snapshots map[string]*types.ProfileSnapshot
	mu        sync.RWMutex
	logger    *logging.ChanneledLogger
}

// NewProfilesStore creates a new profiles cache store
func NewProfilesStore(logger *logging.ChanneledLogger) *ProfilesStore {
	if logger != nil {
		logger.Cache().Info("Initializing profiles cache store")
	}
	return &ProfilesStore{
		snapshots: make(map[string]*types.ProfileSnapshot),
		logger:    logger,
	}
}

// Get returns a cached profile if one exists and is fresh.
func (ps *ProfilesStore) Get(userID string) (*user.Profile, bool) {
	start := time.Now()

	ps.mu.RLock()
	snapshot, exists := ps.snapshots[userID]
	ps.mu.RUnlock()

	hit := exists && time.Since(snapshot.ComputedAt) <= profileSnapshotTTL
	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "profile", "userId", userID, "hit", hit, "duration", time.Since(start))
	}
	if !hit {
		return nil, false
	}
	return snapshot.Profile, true
}

// Set stores a freshly computed profile payload.
func (ps *ProfilesStore) Set(userID string, profile *user.Profile) {
	ps.mu.Lock()
	ps.snapshots[userID] = &types.ProfileSnapshot{
		Profile:    profile,
		ComputedAt: time.Now().UTC(),
	}
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "set", "type", "profile", "userId", userID)
	}
}

// Invalidate drops a member's cached profile. Called after any reputation
// or profile mutation.
func (ps *ProfilesStore) Invalidate(userID string) {
	ps.mu.Lock()
	delete(ps.snapshots, userID)
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "invalidate", "type", "profile", "userId", userID)
	}
}

// Sweep removes stale snapshots and returns how many were removed.
func (ps *ProfilesStore) Sweep() int {
	cutoff := time.Now().Add(-profileSnapshotTTL)

	ps.mu.Lock()
	removed := 0
	for userID, snapshot := range ps.snapshots {
		if snapshot.ComputedAt.Before(cutoff) {
			delete(ps.snapshots, userID)
			removed++
		}
	}
	ps.mu.Unlock()
	return removed
}

// Len returns the number of snapshots currently held.
func (ps *ProfilesStore) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.snapshots)
}
