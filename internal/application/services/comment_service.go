// Package services provides comment posting and retrieval
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
)

// CommentResult pairs a stored comment with the engagement outcome of
// posting it.
type CommentResult struct {
	Comment    *content.Comment   `json:"comment"`
	Engagement *engagement.Result `json:"engagement,omitempty"`
}

// CommentService orchestrates comment CRUD and feeds post events into the
// engagement engine.
type CommentService struct {
	commentRepo content.CommentRepository
	storyRepo   content.StoryRepository
	engagement  *EngagementService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCommentService creates a new comment application service.
func NewCommentService(
	commentRepo content.CommentRepository,
	storyRepo content.StoryRepository,
	engagementService *EngagementService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		storyRepo:   storyRepo,
		engagement:  engagementService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Post stores a new comment under a story and dispatches the comment event to
// the engagement engine.
func (s *CommentService) Post(authorID, storyID, body string) (*CommentResult, error) {
	marker := s.perfTracker.StartOperation("content:comment_creation")
	defer marker.Complete()
	marker.AddMetadata("storyId", storyID)

	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("comment body cannot be empty")
	}

	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load story %s: %w", storyID, err)
	}
	if story == nil {
		return nil, content.ErrNotFound
	}

	comment := &content.Comment{
		ID:        security.GenerateULID(),
		StoryID:   storyID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.commentRepo.Store(comment); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	s.logger.Content().Info("Comment posted",
		"commentId", comment.ID,
		"storyId", storyID,
		"authorId", authorID,
	)

	result := &CommentResult{Comment: comment}

	engResult, err := s.engagement.OnCommentPosted(authorID, storyID, comment.ID)
	if err != nil {
		s.logger.LogError(logging.ChannelEngagement, "comment_award", err, map[string]any{
			"commentId": comment.ID,
			"authorId":  authorID,
		})
	} else {
		result.Engagement = engResult
	}

	marker.SetSuccess(true)
	return result, nil
}

// ListByStory returns a story's comments, oldest first.
func (s *CommentService) ListByStory(storyID string) ([]*content.Comment, error) {
	comments, err := s.commentRepo.FindByStoryID(storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for story %s: %w", storyID, err)
	}
	return comments, nil
}

// Delete removes a comment. The comment author or the story author may
// delete. Points already awarded are not clawed back.
func (s *CommentService) Delete(commentID, requesterID string) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return fmt.Errorf("failed to load comment %s: %w", commentID, err)
	}
	if comment == nil {
		return content.ErrNotFound
	}

	if comment.AuthorID != requesterID {
		story, err := s.storyRepo.FindByID(comment.StoryID)
		if err != nil {
			return fmt.Errorf("failed to load story %s: %w", comment.StoryID, err)
		}
		if story == nil || story.AuthorID != requesterID {
			return ErrNotOwner
		}
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}

	s.logger.Content().Info("Comment deleted", "commentId", commentID, "requesterId", requesterID)
	return nil
}
