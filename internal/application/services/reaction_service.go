// Package services provides the like/unlike toggle orchestration
package services

import (
	"fmt"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/interfaces"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// ToggleResult is what the content layer gets back from a like/unlike.
type ToggleResult struct {
	Liked      bool               `json:"liked"`
	Count      int                `json:"count"`
	Engagement *engagement.Result `json:"engagement,omitempty"`
}

// ReactionService toggles likes on stories and comments. Toggles on the same
// target serialize through a per-target lock so the reaction set and its
// denormalized count always agree.
type ReactionService struct {
	reactionRepo engagement.ReactionRepository
	storyRepo    content.StoryRepository
	commentRepo  content.CommentRepository
	engagement   *EngagementService
	targetLocks  interfaces.TargetLocker
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewReactionService creates a new reaction application service.
func NewReactionService(
	reactionRepo engagement.ReactionRepository,
	storyRepo content.StoryRepository,
	commentRepo content.CommentRepository,
	engagementService *EngagementService,
	targetLocks interfaces.TargetLocker,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		storyRepo:    storyRepo,
		commentRepo:  commentRepo,
		engagement:   engagementService,
		targetLocks:  targetLocks,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// ToggleStoryLike flips the reactor's membership in a story's liked-by set.
// On a transition to liked by someone other than the author, the author is
// awarded a point. Self-reactions toggle the set and count normally but never
// award anything, and nothing is withdrawn on unlike.
func (s *ReactionService) ToggleStoryLike(reactorID, storyID string) (*ToggleResult, error) {
	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story %s: %w", storyID, err)
	}
	if story == nil {
		return nil, content.ErrNotFound
	}

	target := engagement.Target{Type: engagement.TargetStory, ID: storyID}
	return s.toggle(target, reactorID, story.AuthorID)
}

// ToggleCommentLike flips the reactor's membership in a comment's liked-by set.
func (s *ReactionService) ToggleCommentLike(reactorID, commentID string) (*ToggleResult, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment %s: %w", commentID, err)
	}
	if comment == nil {
		return nil, content.ErrNotFound
	}

	target := engagement.Target{Type: engagement.TargetComment, ID: commentID}
	return s.toggle(target, reactorID, comment.AuthorID)
}

func (s *ReactionService) toggle(target engagement.Target, reactorID, ownerID string) (*ToggleResult, error) {
	marker := s.perfTracker.StartOperation("engagement:reaction_toggle")
	defer marker.Complete()
	marker.AddMetadata("target", target.Key())
	marker.AddMetadata("reactorId", reactorID)

	s.targetLocks.LockTarget(target.Key())
	liked, count, err := s.reactionRepo.Toggle(target, reactorID)
	s.targetLocks.UnlockTarget(target.Key())
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to toggle reaction on %s: %w", target.Key(), err)
	}

	result := &ToggleResult{Liked: liked, Count: count}

	s.logger.Engagement().Debug("Reaction toggled",
		"target", target.Key(),
		"reactorId", reactorID,
		"liked", liked,
		"count", count,
	)

	// Award only on a transition to liked, and never for self-reactions.
	if liked && reactorID != ownerID {
		var engResult *engagement.Result
		switch target.Type {
		case engagement.TargetStory:
			engResult, err = s.engagement.OnStoryLiked(reactorID, target.ID, ownerID)
		case engagement.TargetComment:
			engResult, err = s.engagement.OnCommentLiked(reactorID, target.ID, ownerID)
		}
		if err != nil {
			// The toggle itself committed; report the award failure
			// without undoing the reaction.
			s.logger.LogError(logging.ChannelEngagement, "reaction_award", err, map[string]any{
				"target":    target.Key(),
				"reactorId": reactorID,
				"ownerId":   ownerID,
			})
		} else {
			result.Engagement = engResult
		}
	}

	marker.SetSuccess(true)
	return result, nil
}

// Reactors returns the identities currently in a target's liked-by set.
func (s *ReactionService) Reactors(target engagement.Target) ([]string, error) {
	reactors, err := s.reactionRepo.FindReactors(target)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactors for %s: %w", target.Key(), err)
	}
	return reactors, nil
}

// HasLiked reports whether a reactor is currently in a target's liked-by set.
func (s *ReactionService) HasLiked(target engagement.Target, reactorID string) (bool, error) {
	return s.reactionRepo.Exists(target, reactorID)
}
