// Package services provides achievement rule evaluation and unlock recording
package services

import (
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/email"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/messaging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// AchievementService evaluates the rule table against engagement events and
// records unlocks exactly once per (user, achievement) pair.
type AchievementService struct {
	achievementRepo engagement.AchievementRepository
	userRepo        user.Repository
	storyRepo       content.StoryRepository
	commentRepo     content.CommentRepository
	points          *PointsService
	broadcaster     messaging.Broadcaster
	emailService    email.Service
	activityHub     *messaging.ActivityHub
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewAchievementService creates a new achievement application service.
func NewAchievementService(
	achievementRepo engagement.AchievementRepository,
	userRepo user.Repository,
	storyRepo content.StoryRepository,
	commentRepo content.CommentRepository,
	points *PointsService,
	broadcaster messaging.Broadcaster,
	emailService email.Service,
	activityHub *messaging.ActivityHub,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		storyRepo:       storyRepo,
		commentRepo:     commentRepo,
		points:          points,
		broadcaster:     broadcaster,
		emailService:    emailService,
		activityHub:     activityHub,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// Dispatch evaluates every rule triggered by the event against a fresh stats
// snapshot. Each satisfied rule is unlocked via insert-if-absent; a pair that
// already exists is skipped silently. Returns the newly created unlocks and
// the total bonus applied.
func (s *AchievementService) Dispatch(event engagement.Event, stats engagement.Stats) ([]*engagement.Unlock, int, error) {
	marker := s.perfTracker.StartOperation("engagement:achievement_dispatch")
	defer marker.Complete()
	marker.AddMetadata("kind", string(event.Kind))
	marker.AddMetadata("userId", event.UserID)

	var unlocked []*engagement.Unlock
	bonusTotal := 0

	for _, rule := range engagement.RulesFor(event.Kind) {
		if !rule.Unlocks(stats) {
			continue
		}

		record := &engagement.Unlock{
			UserID:        event.UserID,
			AchievementID: rule.ID,
			Bonus:         rule.Bonus,
			UnlockedAt:    time.Now().UTC(),
		}

		created, err := s.achievementRepo.Unlock(record)
		if err != nil {
			marker.SetError(err)
			return unlocked, bonusTotal, fmt.Errorf("failed to record unlock %s for user %s: %w", rule.ID, event.UserID, err)
		}
		if !created {
			// Another dispatch of the same event got here first.
			continue
		}

		if rule.Bonus > 0 {
			if _, err := s.points.ApplyDelta(event.UserID, rule.Bonus); err != nil {
				s.logger.LogError(logging.ChannelEngagement, "achievement_bonus", err, map[string]any{
					"userId":        event.UserID,
					"achievementId": rule.ID,
				})
			} else {
				bonusTotal += rule.Bonus
			}
		}

		unlocked = append(unlocked, record)

		s.logger.Engagement().Info("Achievement unlocked",
			"userId", event.UserID,
			"achievementId", rule.ID,
			"bonus", rule.Bonus,
		)

		s.notifyUnlock(event.UserID, rule)
	}

	marker.AddMetadata("unlocked", len(unlocked))
	marker.SetSuccess(true)
	return unlocked, bonusTotal, nil
}

// SnapshotStats reads the counters the rule predicates evaluate on demand.
// StoryViewCount is only populated when the event names a story.
func (s *AchievementService) SnapshotStats(event engagement.Event) (engagement.Stats, error) {
	var stats engagement.Stats

	switch event.Kind {
	case engagement.EventStoryPublished:
		count, err := s.storyRepo.CountByAuthorID(event.UserID)
		if err != nil {
			return stats, fmt.Errorf("failed to count stories for user %s: %w", event.UserID, err)
		}
		stats.StoryCount = count

	case engagement.EventStoryLiked:
		likes, err := s.storyRepo.TotalLikesByAuthorID(event.UserID)
		if err != nil {
			return stats, fmt.Errorf("failed to total story likes for user %s: %w", event.UserID, err)
		}
		stats.AggregateStoryLikes = likes

	case engagement.EventCommentPosted:
		count, err := s.commentRepo.CountByAuthorID(event.UserID)
		if err != nil {
			return stats, fmt.Errorf("failed to count comments for user %s: %w", event.UserID, err)
		}
		stats.CommentCount = count

	case engagement.EventStoryViewed:
		if event.StoryID != "" {
			story, err := s.storyRepo.FindByID(event.StoryID)
			if err != nil {
				return stats, fmt.Errorf("failed to load story %s: %w", event.StoryID, err)
			}
			if story != nil {
				stats.StoryViewCount = story.ViewCount
			}
		}
	}

	return stats, nil
}

// ListForUser returns a member's unlocked achievements, newest first.
func (s *AchievementService) ListForUser(userID string) ([]*engagement.Unlock, error) {
	unlocks, err := s.achievementRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements for user %s: %w", userID, err)
	}
	return unlocks, nil
}

// notifyUnlock fans the unlock out to SSE listeners, the activity feed, and
// email. Notification failures are logged, never surfaced.
func (s *AchievementService) notifyUnlock(userID string, rule engagement.Rule) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAchievementUnlocked(userID, rule.ID, rule.Name, rule.Badge, rule.Bonus)
	}

	if s.activityHub != nil {
		s.activityHub.Publish("achievement_unlocked", userID, "", rule.Name)
	}

	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(userID)
	if err != nil || u == nil {
		return
	}
	go func() {
		if err := s.emailService.SendAchievementEmail(u.Email, u.Username, rule.Name, rule.Badge, rule.Description, rule.Bonus); err != nil {
			s.logger.Email().Warn("Failed to send achievement email",
				"userId", userID,
				"achievementId", rule.ID,
				"error", err.Error(),
			)
		}
	}()
}
