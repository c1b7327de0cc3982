// Package services provides the view counting and deduplication gate
package services

import (
	"fmt"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/interfaces"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

// ViewResult is what the content layer gets back from a view attempt. Marker
// is set only when the view counted; the caller stores it client-side (a
// cookie with its own multi-day expiry) and presents it on later visits.
type ViewResult struct {
	Counted    bool               `json:"counted"`
	ViewCount  int                `json:"viewCount"`
	Marker     string             `json:"-"`
	Engagement *engagement.Result `json:"engagement,omitempty"`
}

// ViewService decides whether a story view counts. Two tiers: a short-lived
// in-process marker absorbs request storms, and a caller-supplied long-term
// marker suppresses repeat visits across sessions. The service never stores
// the long tier itself.
type ViewService struct {
	storyRepo   content.StoryRepository
	viewMarkers interfaces.ViewMarkerCache
	engagement  *EngagementService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewViewService creates a new view application service.
func NewViewService(
	storyRepo content.StoryRepository,
	viewMarkers interfaces.ViewMarkerCache,
	engagementService *EngagementService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ViewService {
	return &ViewService{
		storyRepo:   storyRepo,
		viewMarkers: viewMarkers,
		engagement:  engagementService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ShouldCountView reports whether a view by this viewer should count. True
// iff neither the short-term entry nor the long-term marker is present.
func (s *ViewService) ShouldCountView(viewerKey, storyID string, hasLongTermMarker bool) bool {
	if hasLongTermMarker {
		return false
	}
	return !s.viewMarkers.SeenRecently(viewerKey, storyID)
}

// RecordStoryView counts a view if the dedup gate allows it, increments the
// story's counter, and evaluates the view-threshold achievement for the
// author. An already-counted view is a normal outcome, not an error.
func (s *ViewService) RecordStoryView(viewerKey, storyID string, hasLongTermMarker bool) (*ViewResult, error) {
	marker := s.perfTracker.StartOperation("engagement:view_decision")
	defer marker.Complete()
	marker.AddMetadata("storyId", storyID)

	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load story %s: %w", storyID, err)
	}
	if story == nil {
		marker.SetError(content.ErrNotFound)
		return nil, content.ErrNotFound
	}

	// Check-and-mark is one atomic step so a request storm for the same
	// pair counts exactly once.
	if hasLongTermMarker || !s.viewMarkers.MarkViewedIfUnseen(viewerKey, storyID) {
		marker.AddCacheHit()
		marker.SetSuccess(true)
		return &ViewResult{Counted: false, ViewCount: story.ViewCount}, nil
	}
	marker.AddCacheMiss()

	viewCount, err := s.storyRepo.IncrementViewCount(storyID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to increment view count for story %s: %w", storyID, err)
	}

	result := &ViewResult{Counted: true, ViewCount: viewCount}

	sealed, err := security.SealViewMarker(viewerKey, storyID, config.AESKey)
	if err != nil {
		s.logger.Engagement().Warn("Failed to seal view marker",
			"storyId", storyID,
			"error", err.Error(),
		)
	} else {
		result.Marker = sealed
	}

	engResult, err := s.engagement.OnStoryViewed(story.AuthorID, storyID)
	if err != nil {
		// The view already counted; report the dispatch failure without
		// undoing the counter.
		s.logger.LogError(logging.ChannelEngagement, "view_dispatch", err, map[string]any{
			"storyId":  storyID,
			"authorId": story.AuthorID,
		})
	} else {
		result.Engagement = engResult
	}

	marker.SetSuccess(true)
	return result, nil
}

// VerifyViewMarker checks that a client-presented long-term marker actually
// belongs to this viewer and story. Malformed or mismatched markers are
// treated as absent.
func (s *ViewService) VerifyViewMarker(sealed, viewerKey, storyID string) bool {
	if sealed == "" {
		return false
	}
	markerViewer, markerStory, err := security.OpenViewMarker(sealed, config.AESKey)
	if err != nil {
		return false
	}
	return markerViewer == viewerKey && markerStory == storyID
}
