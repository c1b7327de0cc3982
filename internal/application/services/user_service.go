// Package services provides member profile assembly
package services

import (
	"fmt"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/interfaces"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/media"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// UserService assembles public member profiles with a cache-first pattern and
// handles profile mutations.
type UserService struct {
	userRepo        user.Repository
	achievementRepo engagement.AchievementRepository
	profileCache    interfaces.ProfileCache
	imageProcessor  *media.ImageProcessor
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewUserService creates a new user application service.
func NewUserService(
	userRepo user.Repository,
	achievementRepo engagement.AchievementRepository,
	profileCache interfaces.ProfileCache,
	imageProcessor *media.ImageProcessor,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		profileCache:    profileCache,
		imageProcessor:  imageProcessor,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetProfile returns a member's public profile (cache-first). The level is
// always recomputed from points; the stored level column is display-only.
func (s *UserService) GetProfile(userID string) (*user.Profile, error) {
	marker := s.perfTracker.StartOperation("content:cache_operation")
	defer marker.Complete()
	marker.AddMetadata("userId", userID)

	if cached, ok := s.profileCache.GetProfile(userID); ok {
		marker.AddCacheHit()
		marker.SetSuccess(true)
		return cached, nil
	}
	marker.AddCacheMiss()

	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if u == nil {
		return nil, user.ErrNotFound
	}

	unlocks, err := s.achievementRepo.FindByUserID(userID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load achievements for user %s: %w", userID, err)
	}

	achievementIDs := make([]string, len(unlocks))
	for i, unlock := range unlocks {
		achievementIDs[i] = unlock.AchievementID
	}

	profile := &user.Profile{
		ID:           u.ID,
		Username:     u.Username,
		Bio:          u.Bio,
		AvatarPath:   u.AvatarPath,
		Points:       u.Points,
		Level:        user.LevelForPoints(u.Points),
		Achievements: achievementIDs,
		CreatedAt:    u.CreatedAt,
	}

	s.profileCache.SetProfile(userID, profile)
	marker.SetSuccess(true)
	return profile, nil
}

// GetProfileByUsername resolves a username and returns the profile.
func (s *UserService) GetProfileByUsername(username string) (*user.Profile, error) {
	u, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up username %s: %w", username, err)
	}
	if u == nil {
		return nil, user.ErrNotFound
	}
	return s.GetProfile(u.ID)
}

// UpdateBio replaces a member's bio text.
func (s *UserService) UpdateBio(userID, bio string) error {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if u == nil {
		return user.ErrNotFound
	}

	u.Bio = bio
	if err := s.userRepo.Update(u); err != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, err)
	}

	s.profileCache.InvalidateProfile(userID)
	return nil
}

// UpdateAvatar processes an uploaded avatar image and stores its path.
func (s *UserService) UpdateAvatar(userID, base64Data string) (string, error) {
	marker := s.perfTracker.StartOperation("content:media_processing")
	defer marker.Complete()
	marker.AddMetadata("userId", userID)

	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if u == nil {
		return "", user.ErrNotFound
	}

	avatarPath, err := s.imageProcessor.ProcessAvatarImage(base64Data, userID)
	if err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to process avatar: %w", err)
	}

	if u.AvatarPath != nil {
		if err := s.imageProcessor.DeleteMediaFile(*u.AvatarPath); err != nil {
			s.logger.Content().Warn("Failed to remove previous avatar",
				"userId", userID,
				"path", *u.AvatarPath,
				"error", err.Error(),
			)
		}
	}

	u.AvatarPath = &avatarPath
	if err := s.userRepo.Update(u); err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to update user %s: %w", userID, err)
	}

	s.profileCache.InvalidateProfile(userID)
	marker.SetSuccess(true)
	return avatarPath, nil
}
