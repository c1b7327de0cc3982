package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

const viewMarkerHeader = "X-View-Marker"

// StoryHandlers contains story CRUD and engagement HTTP handlers
type StoryHandlers struct {
	storyService    *services.StoryService
	commentService  *services.CommentService
	reactionService *services.ReactionService
	viewService     *services.ViewService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewStoryHandlers creates story handlers with injected dependencies
func NewStoryHandlers(
	storyService *services.StoryService,
	commentService *services.CommentService,
	reactionService *services.ReactionService,
	viewService *services.ViewService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *StoryHandlers {
	return &StoryHandlers{
		storyService:    storyService,
		commentService:  commentService,
		reactionService: reactionService,
		viewService:     viewService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

type storyRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// PostStory handles POST /api/v1/stories - publishes a new story
func (h *StoryHandlers) PostStory(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	result, err := h.storyService.Publish(u.ID, req.Title, req.Body)
	if err != nil {
		h.logger.Content().Error("Story publish failed", "authorId", u.ID, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetStories handles GET /api/v1/stories - lists recent stories
func (h *StoryHandlers) GetStories(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	stories, err := h.storyService.List(limit, offset)
	if err != nil {
		h.logger.Content().Error("Story list failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories, "count": len(stories)})
}

// GetStory handles GET /api/v1/stories/:id - fetches one story by id or slug
func (h *StoryHandlers) GetStory(c *gin.Context) {
	id := c.Param("id")

	story, err := h.storyService.GetByID(id)
	if errors.Is(err, content.ErrNotFound) {
		story, err = h.storyService.GetBySlug(id)
	}
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		h.logger.Content().Error("Story fetch failed", "storyId", id, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load story"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"story": story})
}

// PutStory handles PUT /api/v1/stories/:id - edits a story (author only)
func (h *StoryHandlers) PutStory(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	story, err := h.storyService.UpdateStory(c.Param("id"), u.ID, req.Title, req.Body)
	if err != nil {
		respondStoryError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"story": story})
}

// PostCover handles POST /api/v1/stories/:id/cover - replaces the cover image
func (h *StoryHandlers) PostCover(c *gin.Context) {
	marker := h.perfTracker.StartOperation("media:cover_upload")
	defer marker.Complete()

	u, _ := middleware.GetCurrentUser(c)

	var req uploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image data is required"})
		return
	}

	path, err := h.storyService.UpdateCover(c.Param("id"), u.ID, req.Data)
	if err != nil {
		marker.SetError(err)
		respondStoryError(c, h.logger, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"coverPath": path})
}

// DeleteStory handles DELETE /api/v1/stories/:id - removes a story (author only)
func (h *StoryHandlers) DeleteStory(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	if err := h.storyService.Delete(c.Param("id"), u.ID); err != nil {
		respondStoryError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PostLike handles POST /api/v1/stories/:id/like - toggles the member's like
func (h *StoryHandlers) PostLike(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	result, err := h.reactionService.ToggleStoryLike(u.ID, c.Param("id"))
	if err != nil {
		respondStoryError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PostView handles POST /api/v1/stories/:id/view - records a deduplicated view.
// Anonymous viewers are keyed by client IP; members by their id. A previously
// issued marker presented in the request header suppresses recounting across
// sessions.
func (h *StoryHandlers) PostView(c *gin.Context) {
	storyID := c.Param("id")

	viewerKey := "anon:" + c.ClientIP()
	if u, ok := middleware.GetCurrentUser(c); ok {
		viewerKey = "member:" + u.ID
	}

	hasMarker := h.viewService.VerifyViewMarker(c.GetHeader(viewMarkerHeader), viewerKey, storyID)

	result, err := h.viewService.RecordStoryView(viewerKey, storyID, hasMarker)
	if err != nil {
		respondStoryError(c, h.logger, err)
		return
	}

	if result.Marker != "" {
		c.Header(viewMarkerHeader, result.Marker)
	}
	c.JSON(http.StatusOK, result)
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostComment handles POST /api/v1/stories/:id/comments - adds a comment
func (h *StoryHandlers) PostComment(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment body is required"})
		return
	}

	result, err := h.commentService.Post(u.ID, c.Param("id"), req.Body)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetComments handles GET /api/v1/stories/:id/comments - lists a story's comments
func (h *StoryHandlers) GetComments(c *gin.Context) {
	comments, err := h.commentService.ListByStory(c.Param("id"))
	if err != nil {
		h.logger.Content().Error("Comment list failed", "storyId", c.Param("id"), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

func respondStoryError(c *gin.Context, logger *logging.ChanneledLogger, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the author"})
	default:
		logger.Content().Error("Story operation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
