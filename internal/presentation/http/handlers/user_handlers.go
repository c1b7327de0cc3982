package handlers

import (
	"errors"
	"net/http"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// UserHandlers contains member profile HTTP handlers
type UserHandlers struct {
	userService *services.UserService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewUserHandlers creates user handlers with injected dependencies
func NewUserHandlers(userService *services.UserService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UserHandlers {
	return &UserHandlers{
		userService: userService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetProfile handles GET /api/v1/members/:username - returns a public profile
func (h *UserHandlers) GetProfile(c *gin.Context) {
	marker := h.perfTracker.StartOperation("profile_request")
	defer marker.Complete()

	username := c.Param("username")
	profile, err := h.userService.GetProfileByUsername(username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		h.logger.Content().Error("Failed to load profile", "username", username, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type updateBioRequest struct {
	Bio string `json:"bio"`
}

// PutBio handles PUT /api/v1/profile/bio - updates the member's bio
func (h *UserHandlers) PutBio(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	var req updateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.userService.UpdateBio(u.ID, req.Bio); err != nil {
		h.logger.Content().Error("Failed to update bio", "userId", u.ID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update bio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type uploadImageRequest struct {
	Data string `json:"data" binding:"required"` // base64-encoded image
}

// PostAvatar handles POST /api/v1/profile/avatar - replaces the member's avatar
func (h *UserHandlers) PostAvatar(c *gin.Context) {
	marker := h.perfTracker.StartOperation("media:avatar_upload")
	defer marker.Complete()

	u, _ := middleware.GetCurrentUser(c)

	var req uploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image data is required"})
		return
	}

	path, err := h.userService.UpdateAvatar(u.ID, req.Data)
	if err != nil {
		marker.SetError(err)
		h.logger.Content().Error("Avatar upload failed", "userId", u.ID, "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not process image"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"avatarPath": path})
}
