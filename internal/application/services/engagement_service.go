// Package services provides the engagement event orchestration
package services

import (
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/interfaces"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/email"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/messaging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// EngagementService is the entry point the content layer calls when a member
// does something that affects reputation. It applies the base award, runs the
// achievement table, and propagates level changes.
type EngagementService struct {
	userRepo     user.Repository
	points       *PointsService
	achievements *AchievementService
	profileCache interfaces.ProfileCache
	broadcaster  messaging.Broadcaster
	activityHub  *messaging.ActivityHub
	emailService email.Service
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewEngagementService creates a new engagement application service.
func NewEngagementService(
	userRepo user.Repository,
	points *PointsService,
	achievements *AchievementService,
	profileCache interfaces.ProfileCache,
	broadcaster messaging.Broadcaster,
	activityHub *messaging.ActivityHub,
	emailService email.Service,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *EngagementService {
	return &EngagementService{
		userRepo:     userRepo,
		points:       points,
		achievements: achievements,
		profileCache: profileCache,
		broadcaster:  broadcaster,
		activityHub:  activityHub,
		emailService: emailService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// OnStoryPublished awards the publish points to the author and evaluates the
// story-count milestones.
func (s *EngagementService) OnStoryPublished(authorID, storyID string) (*engagement.Result, error) {
	event := engagement.Event{
		Kind:      engagement.EventStoryPublished,
		UserID:    authorID,
		StoryID:   storyID,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.process(event, engagement.PointsStoryPublished)
	if err != nil {
		return nil, err
	}

	if s.activityHub != nil {
		s.activityHub.Publish("story_published", authorID, storyID, "")
	}
	return result, nil
}

// OnStoryLiked awards +1 to the story owner after a transition to liked and
// evaluates the aggregate-likes rule. Callers must not invoke this for
// self-reactions or unlikes.
func (s *EngagementService) OnStoryLiked(reactorID, storyID, storyOwnerID string) (*engagement.Result, error) {
	event := engagement.Event{
		Kind:      engagement.EventStoryLiked,
		UserID:    storyOwnerID,
		ActorID:   reactorID,
		StoryID:   storyID,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.process(event, engagement.PointsReceivedLike)
	if err != nil {
		return nil, err
	}

	if s.activityHub != nil {
		s.activityHub.Publish("story_liked", reactorID, storyID, "")
	}
	return result, nil
}

// OnCommentPosted awards the comment points to the author and evaluates the
// comment-count rule.
func (s *EngagementService) OnCommentPosted(authorID, storyID, commentID string) (*engagement.Result, error) {
	event := engagement.Event{
		Kind:      engagement.EventCommentPosted,
		UserID:    authorID,
		StoryID:   storyID,
		CommentID: commentID,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.process(event, engagement.PointsCommentPosted)
	if err != nil {
		return nil, err
	}

	if s.activityHub != nil {
		s.activityHub.Publish("comment_posted", authorID, storyID, "")
	}
	return result, nil
}

// OnCommentLiked awards +1 to the comment owner after a transition to liked.
// No achievement rule triggers on comment likes.
func (s *EngagementService) OnCommentLiked(reactorID, commentID, commentOwnerID string) (*engagement.Result, error) {
	event := engagement.Event{
		Kind:      engagement.EventCommentLiked,
		UserID:    commentOwnerID,
		ActorID:   reactorID,
		CommentID: commentID,
		CreatedAt: time.Now().UTC(),
	}
	return s.process(event, engagement.PointsReceivedLike)
}

// OnStoryViewed evaluates the view-threshold rule for a story that just had a
// view counted. Views award no points to anyone.
func (s *EngagementService) OnStoryViewed(storyOwnerID, storyID string) (*engagement.Result, error) {
	event := engagement.Event{
		Kind:      engagement.EventStoryViewed,
		UserID:    storyOwnerID,
		StoryID:   storyID,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.process(event, 0)
	if err != nil {
		return nil, err
	}
	result.ViewCounted = true
	return result, nil
}

// hop is one queued dispatch round. Level fields carry the transition that
// produced a re-entry; they are empty for the triggering event.
type hop struct {
	event     engagement.Event
	prevLevel string
	currLevel string
}

// process applies the base delta, dispatches the achievement table, and
// propagates at most one level-change re-entry. Bonus awards can push a
// member across a tier boundary; that transition is dispatched once as a
// level_changed event, and any further boundary crossing caused by the
// re-entry's own bonuses only updates the stored level without another
// dispatch. The recheck always uses the recomputed level, never the cached
// column.
func (s *EngagementService) process(event engagement.Event, baseDelta int) (*engagement.Result, error) {
	marker := s.perfTracker.StartOperation("engagement:" + string(event.Kind))
	defer marker.Complete()
	marker.AddMetadata("userId", event.UserID)

	u, err := s.userRepo.FindByID(event.UserID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load user %s: %w", event.UserID, err)
	}
	if u == nil {
		marker.SetError(user.ErrNotFound)
		return nil, user.ErrNotFound
	}

	balance := u.Points
	currentLevel := user.LevelID(balance)
	result := &engagement.Result{}

	if baseDelta != 0 {
		balance, err = s.points.ApplyDelta(event.UserID, baseDelta)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		result.PointsDelta += baseDelta
	}

	queue := []hop{{event: event}}
	reentered := false

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		stats, err := s.achievements.SnapshotStats(h.event)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		stats.PreviousLevel = h.prevLevel
		stats.CurrentLevel = h.currLevel

		unlocked, bonus, err := s.achievements.Dispatch(h.event, stats)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		result.Unlocked = append(result.Unlocked, unlocked...)

		if bonus > 0 {
			result.PointsDelta += bonus
			balance, err = s.points.Balance(event.UserID)
			if err != nil {
				marker.SetError(err)
				return nil, err
			}
		}

		levelNow := user.LevelID(balance)
		if levelNow != currentLevel {
			change := &engagement.LevelChange{From: currentLevel, To: levelNow}
			result.LevelChange = change

			if err := s.userRepo.SetLevel(event.UserID, levelNow); err != nil {
				s.logger.LogError(logging.ChannelEngagement, "set_level", err, map[string]any{
					"userId": event.UserID,
					"level":  levelNow,
				})
			}
			s.notifyLevelChange(event.UserID, change, balance)

			if !reentered {
				reentered = true
				queue = append(queue, hop{
					event: engagement.Event{
						Kind:      engagement.EventLevelChanged,
						UserID:    event.UserID,
						CreatedAt: time.Now().UTC(),
					},
					prevLevel: change.From,
					currLevel: change.To,
				})
			}
			currentLevel = levelNow
		}
	}

	result.NewBalance = balance

	if s.profileCache != nil && result.PointsDelta != 0 {
		s.profileCache.InvalidateProfile(event.UserID)
	}

	marker.AddMetadata("pointsDelta", result.PointsDelta)
	marker.SetSuccess(true)
	return result, nil
}

// notifyLevelChange fans a tier transition out to SSE listeners, the activity
// feed, and email. Failures are logged, never surfaced.
func (s *EngagementService) notifyLevelChange(userID string, change *engagement.LevelChange, balance int) {
	s.logger.Engagement().Info("Level changed",
		"userId", userID,
		"from", change.From,
		"to", change.To,
		"balance", balance,
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastLevelChanged(userID, change.From, change.To)
	}
	if s.activityHub != nil {
		s.activityHub.Publish("level_changed", userID, "", change.To)
	}

	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(userID)
	if err != nil || u == nil {
		return
	}
	info := user.LevelForPoints(balance)
	go func() {
		if err := s.emailService.SendLevelUpEmail(u.Email, u.Username, info.Name, info.Badge, balance); err != nil {
			s.logger.Email().Warn("Failed to send level-up email",
				"userId", userID,
				"level", change.To,
				"error", err.Error(),
			)
		}
	}()
}
