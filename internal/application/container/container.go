// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/manager"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/email"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/media"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/messaging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	contentRepo "github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/content"
	engagementRepo "github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/engagement"
	userRepo "github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/user"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	AuthService        *services.AuthService
	UserService        *services.UserService
	StoryService       *services.StoryService
	CommentService     *services.CommentService
	PointsService      *services.PointsService
	AchievementService *services.AchievementService
	EngagementService  *services.EngagementService
	ReactionService    *services.ReactionService
	ViewService        *services.ViewService

	// Infrastructure
	DB           *database.DB
	CacheManager *manager.Manager
	Broadcaster  *messaging.SSEBroadcaster
	ActivityHub  *messaging.ActivityHub
	EmailService email.Service
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, cacheManager *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	broadcaster := messaging.NewSSEBroadcaster(logger)
	activityHub := messaging.NewActivityHub(cacheManager)
	imageProcessor := media.NewImageProcessor(config.MediaDir)

	// Email delivery is optional; without an API key all notifications
	// simply skip the email channel.
	emailService, err := email.NewService()
	if err != nil {
		logger.Email().Warn("Email delivery disabled", "reason", err.Error())
		emailService = nil
	}

	users := userRepo.NewSQLUserRepository(db, logger)
	stories := contentRepo.NewSQLStoryRepository(db, logger)
	comments := contentRepo.NewSQLCommentRepository(db, logger)
	reactions := engagementRepo.NewSQLReactionRepository(db, logger)
	achievements := engagementRepo.NewSQLAchievementRepository(db, logger)

	pointsService := services.NewPointsService(users, broadcaster, logger, perfTracker)
	achievementService := services.NewAchievementService(
		achievements, users, stories, comments,
		pointsService, broadcaster, emailService, activityHub, logger, perfTracker,
	)
	engagementService := services.NewEngagementService(
		users, pointsService, achievementService,
		cacheManager, broadcaster, activityHub, emailService, logger, perfTracker,
	)

	return &Container{
		AuthService:        services.NewAuthService(users, emailService, logger, perfTracker),
		UserService:        services.NewUserService(users, achievements, cacheManager, imageProcessor, logger, perfTracker),
		StoryService:       services.NewStoryService(stories, engagementService, imageProcessor, logger, perfTracker),
		CommentService:     services.NewCommentService(comments, stories, engagementService, logger, perfTracker),
		PointsService:      pointsService,
		AchievementService: achievementService,
		EngagementService:  engagementService,
		ReactionService:    services.NewReactionService(reactions, stories, comments, engagementService, cacheManager, logger, perfTracker),
		ViewService:        services.NewViewService(stories, cacheManager, engagementService, logger, perfTracker),

		DB:           db,
		CacheManager: cacheManager,
		Broadcaster:  broadcaster,
		ActivityHub:  activityHub,
		EmailService: emailService,
		Logger:       logger,
		PerfTracker:  perfTracker,
	}
}
