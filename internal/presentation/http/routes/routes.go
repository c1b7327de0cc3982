// Package routes configures all HTTP routes with dependency injection
package routes

import (
	"net/http"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/container"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/handlers"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/middleware"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes with injected dependencies
func SetupRoutes(c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)
	userHandlers := handlers.NewUserHandlers(c.UserService, c.Logger, c.PerfTracker)
	storyHandlers := handlers.NewStoryHandlers(c.StoryService, c.CommentService, c.ReactionService, c.ViewService, c.Logger, c.PerfTracker)
	commentHandlers := handlers.NewCommentHandlers(c.CommentService, c.ReactionService, c.Logger, c.PerfTracker)
	engagementHandlers := handlers.NewEngagementHandlers(c.AchievementService, c.PointsService, c.Broadcaster, c.ActivityHub, c.Logger, c.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(c.DB, c.Logger)
	opsHandlers := handlers.NewOpsHandlers(c.Logger)

	requireAuth := middleware.RequireAuth(c.AuthService)
	optionalAuth := middleware.OptionalAuth(c.AuthService)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Static("/media", config.MediaDir)

	api := router.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandlers.PostRegister)
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/logout", authHandlers.PostLogout)
			auth.GET("/me", requireAuth, authHandlers.GetMe)
		}

		api.GET("/members/:username", userHandlers.GetProfile)

		profile := api.Group("/profile", requireAuth)
		{
			profile.PUT("/bio", userHandlers.PutBio)
			profile.POST("/avatar", userHandlers.PostAvatar)
		}

		stories := api.Group("/stories")
		{
			stories.GET("", storyHandlers.GetStories)
			stories.POST("", requireAuth, storyHandlers.PostStory)
			stories.GET("/:id", storyHandlers.GetStory)
			stories.PUT("/:id", requireAuth, storyHandlers.PutStory)
			stories.DELETE("/:id", requireAuth, storyHandlers.DeleteStory)
			stories.POST("/:id/cover", requireAuth, storyHandlers.PostCover)
			stories.POST("/:id/like", requireAuth, storyHandlers.PostLike)
			stories.POST("/:id/view", optionalAuth, storyHandlers.PostView)
			stories.GET("/:id/comments", storyHandlers.GetComments)
			stories.POST("/:id/comments", requireAuth, storyHandlers.PostComment)
		}

		comments := api.Group("/comments")
		{
			comments.POST("/:id/like", requireAuth, commentHandlers.PostLike)
			comments.DELETE("/:id", requireAuth, commentHandlers.DeleteComment)
		}

		ops := api.Group("/ops", requireAuth)
		{
			ops.GET("/logs", opsHandlers.GetLogStream)
			ops.GET("/logs/levels", opsHandlers.GetLogLevels)
			ops.PUT("/logs/levels", opsHandlers.PutLogLevel)
		}

		engagement := api.Group("/engagement")
		{
			engagement.GET("/stream", requireAuth, engagementHandlers.GetStream)
			engagement.GET("/activity", engagementHandlers.GetActivityFeed)
			engagement.GET("/achievements", requireAuth, engagementHandlers.GetAchievements)
			engagement.GET("/rules", engagementHandlers.GetRules)
			engagement.GET("/points", requireAuth, engagementHandlers.GetBalance)
		}
	}

	return router
}
