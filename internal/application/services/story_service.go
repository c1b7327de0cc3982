// Package services provides story publishing and retrieval
package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/media"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
)

// ErrNotOwner is returned when a member tries to mutate content they do not own.
var ErrNotOwner = fmt.Errorf("not the content owner")

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// PublishResult pairs a stored story with the engagement outcome of
// publishing it.
type PublishResult struct {
	Story      *content.Story     `json:"story"`
	Engagement *engagement.Result `json:"engagement,omitempty"`
}

// StoryService orchestrates story CRUD and feeds publish events into the
// engagement engine.
type StoryService struct {
	storyRepo      content.StoryRepository
	engagement     *EngagementService
	imageProcessor *media.ImageProcessor
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewStoryService creates a new story application service.
func NewStoryService(
	storyRepo content.StoryRepository,
	engagementService *EngagementService,
	imageProcessor *media.ImageProcessor,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *StoryService {
	return &StoryService{
		storyRepo:      storyRepo,
		engagement:     engagementService,
		imageProcessor: imageProcessor,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// Publish stores a new story and dispatches the publish event to the
// engagement engine.
func (s *StoryService) Publish(authorID, title, body string) (*PublishResult, error) {
	marker := s.perfTracker.StartOperation("content:story_creation")
	defer marker.Complete()
	marker.AddMetadata("authorId", authorID)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("story title cannot be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("story body cannot be empty")
	}

	story := &content.Story{
		ID:        security.GenerateULID(),
		AuthorID:  authorID,
		Title:     title,
		Slug:      s.uniqueSlug(title),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.storyRepo.Store(story); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to store story: %w", err)
	}

	s.logger.Content().Info("Story published",
		"storyId", story.ID,
		"authorId", authorID,
		"slug", story.Slug,
	)

	result := &PublishResult{Story: story}

	engResult, err := s.engagement.OnStoryPublished(authorID, story.ID)
	if err != nil {
		// The story is stored; report the award failure without undoing
		// the publish.
		s.logger.LogError(logging.ChannelEngagement, "publish_award", err, map[string]any{
			"storyId":  story.ID,
			"authorId": authorID,
		})
	} else {
		result.Engagement = engResult
	}

	marker.SetSuccess(true)
	return result, nil
}

// GetByID returns a story by ID.
func (s *StoryService) GetByID(id string) (*content.Story, error) {
	if id == "" {
		return nil, fmt.Errorf("story ID cannot be empty")
	}

	story, err := s.storyRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	if story == nil {
		return nil, content.ErrNotFound
	}
	return story, nil
}

// GetBySlug returns a story by slug.
func (s *StoryService) GetBySlug(slug string) (*content.Story, error) {
	if slug == "" {
		return nil, fmt.Errorf("story slug cannot be empty")
	}

	story, err := s.storyRepo.FindBySlug(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get story by slug %s: %w", slug, err)
	}
	if story == nil {
		return nil, content.ErrNotFound
	}
	return story, nil
}

// List returns a page of stories, newest first.
func (s *StoryService) List(limit, offset int) ([]*content.Story, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	stories, err := s.storyRepo.FindAll(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// ListByAuthor returns all of an author's stories, newest first.
func (s *StoryService) ListByAuthor(authorID string) ([]*content.Story, error) {
	stories, err := s.storyRepo.FindByAuthorID(authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories for author %s: %w", authorID, err)
	}
	return stories, nil
}

// UpdateStory replaces a story's title and body. Only the author may edit.
// Edits award no points.
func (s *StoryService) UpdateStory(storyID, requesterID, title, body string) (*content.Story, error) {
	story, err := s.GetByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != requesterID {
		return nil, ErrNotOwner
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("story title cannot be empty")
	}

	now := time.Now().UTC()
	story.Title = title
	story.Body = body
	story.UpdatedAt = &now

	if err := s.storyRepo.Update(story); err != nil {
		return nil, fmt.Errorf("failed to update story %s: %w", storyID, err)
	}
	return story, nil
}

// UpdateCover processes an uploaded cover image and stores its path. Only the
// author may change the cover.
func (s *StoryService) UpdateCover(storyID, requesterID, base64Data string) (string, error) {
	marker := s.perfTracker.StartOperation("content:media_processing")
	defer marker.Complete()
	marker.AddMetadata("storyId", storyID)

	story, err := s.GetByID(storyID)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	if story.AuthorID != requesterID {
		return "", ErrNotOwner
	}

	coverPath, err := s.imageProcessor.ProcessCoverImage(base64Data, storyID)
	if err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to process cover: %w", err)
	}

	if story.CoverPath != nil {
		if err := s.imageProcessor.DeleteMediaFile(*story.CoverPath); err != nil {
			s.logger.Content().Warn("Failed to remove previous cover",
				"storyId", storyID,
				"path", *story.CoverPath,
				"error", err.Error(),
			)
		}
	}

	story.CoverPath = &coverPath
	if err := s.storyRepo.Update(story); err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to update story %s: %w", storyID, err)
	}

	marker.SetSuccess(true)
	return coverPath, nil
}

// Delete removes a story and its dependent comments and reactions. Only the
// author may delete. Points already awarded are not clawed back.
func (s *StoryService) Delete(storyID, requesterID string) error {
	story, err := s.GetByID(storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != requesterID {
		return ErrNotOwner
	}

	if err := s.storyRepo.Delete(storyID); err != nil {
		return fmt.Errorf("failed to delete story %s: %w", storyID, err)
	}

	if story.CoverPath != nil {
		if err := s.imageProcessor.DeleteMediaFile(*story.CoverPath); err != nil {
			s.logger.Content().Warn("Failed to remove cover of deleted story",
				"storyId", storyID,
				"error", err.Error(),
			)
		}
	}

	s.logger.Content().Info("Story deleted", "storyId", storyID, "authorId", requesterID)
	return nil
}

// uniqueSlug derives a URL slug from the title, suffixed to avoid collisions.
func (s *StoryService) uniqueSlug(title string) string {
	base := strings.Trim(slugStripPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "story"
	}
	if len(base) > 60 {
		base = base[:60]
	}

	slug := base
	for i := 0; i < 5; i++ {
		existing, err := s.storyRepo.FindBySlug(slug)
		if err != nil || existing == nil {
			return slug
		}
		if suffix, err := security.GenerateSecureToken(4); err == nil {
			slug = fmt.Sprintf("%s-%s", base, strings.ToLower(suffix))
		}
	}
	return fmt.Sprintf("%s-%s", base, strings.ToLower(security.GenerateULID()))
}
