package handlers

import (
	"errors"
	"net/http"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// CommentHandlers contains comment-level HTTP handlers
type CommentHandlers struct {
	commentService  *services.CommentService
	reactionService *services.ReactionService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewCommentHandlers creates comment handlers with injected dependencies
func NewCommentHandlers(
	commentService *services.CommentService,
	reactionService *services.ReactionService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CommentHandlers {
	return &CommentHandlers{
		commentService:  commentService,
		reactionService: reactionService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// PostLike handles POST /api/v1/comments/:id/like - toggles the member's like
func (h *CommentHandlers) PostLike(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	result, err := h.reactionService.ToggleCommentLike(u.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		h.logger.Engagement().Error("Comment like failed", "commentId", c.Param("id"), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteComment handles DELETE /api/v1/comments/:id - removes a comment.
// Allowed for the comment author and for the author of the story it sits on.
func (h *CommentHandlers) DeleteComment(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	if err := h.commentService.Delete(c.Param("id"), u.ID); err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		default:
			h.logger.Content().Error("Comment delete failed", "commentId", c.Param("id"), "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
