// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"fmt"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/messaging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// PointsService is the single write path for member point balances.
type PointsService struct {
	userRepo    user.Repository
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPointsService creates a new points application service.
func NewPointsService(userRepo user.Repository, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PointsService {
	return &PointsService{
		userRepo:    userRepo,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ApplyDelta applies a signed point delta to a member's balance and returns
// the new balance. The update is atomic with respect to concurrent deltas on
// the same member, and the balance never goes below zero.
func (s *PointsService) ApplyDelta(userID string, delta int) (int, error) {
	marker := s.perfTracker.StartOperation("engagement:points_update")
	defer marker.Complete()
	marker.AddMetadata("userId", userID)
	marker.AddMetadata("delta", delta)

	balance, err := s.userRepo.AdjustPoints(userID, delta)
	if err != nil {
		marker.SetError(err)
		if err == user.ErrNotFound {
			return 0, err
		}
		return 0, fmt.Errorf("failed to apply point delta for user %s: %w", userID, err)
	}

	s.logger.Engagement().Debug("Applied point delta",
		"userId", userID,
		"delta", delta,
		"balance", balance,
	)

	if s.broadcaster != nil && delta != 0 {
		s.broadcaster.BroadcastPointsChanged(userID, delta, balance)
	}

	marker.SetSuccess(true)
	return balance, nil
}

// Balance returns a member's current point balance.
func (s *PointsService) Balance(userID string) (int, error) {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if u == nil {
		return 0, user.ErrNotFound
	}
	return u.Points, nil
}
