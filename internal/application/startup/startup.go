// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/container"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/cleanup"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/manager"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/server"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[33m" + `

  ▄▄▄▄▄ ▄▄▄▄▄ ▄▄▄▄▄ ▄▄▄▄▄ ▄▄ ▄▄ ▄▄ ▄▄ ▄▄ ▄▄ ▄▄▄▄▄
  ▀▄▄▄  ▄▄█▄▄ ██ ██ ██▄█▀ ██▄██ ██▄██ ██ ██ ██▄▄
  ▄▄▄█▀ ██ ██ ██▄██ ██ ██  ▄█▄  ██ ██ ██ ▀█ ██▄▄▄
` + "\033[97m" + `
  where stories earn their keep
` + "\033[0m")

	// Step 1: Configure logging and performance tracking
	log.Println("Initializing...")
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	logger.Startup().Info("Channeled logging initialized")

	if err := ensureSecrets(logger); err != nil {
		return fmt.Errorf("failed to provision secrets: %w", err)
	}

	// Step 2: Connect to the database
	logger.Startup().Info("Connecting to database...")
	startDBTime := time.Now()

	driverName, dataSourceName := resolveDataSource()
	db, err := database.NewConnectionWithLogger(driverName, dataSourceName, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	logger.Startup().Info("Database connection established", "driver", driverName, "duration", time.Since(startDBTime))

	// Step 3: Ensure schema
	logger.Startup().Info("Ensuring database schema...")
	if err := database.NewTableCreator().CreateSchema(db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Step 4: Initialize cache system
	logger.Startup().Info("Initializing cache system...")
	cacheManager := manager.NewManager(logger)

	// Step 5: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(db, cacheManager, logger, perfTracker)
	logger.Startup().Info("Singleton application services initialized via container")

	// Step 6: Start background workers
	logger.Startup().Info("Starting background workers...")

	cleanupWorker := cleanup.NewWorker(cacheManager, cleanup.NewConfig())
	go cleanupWorker.Start(ctx)
	go appContainer.ActivityHub.Run(ctx)

	// Step 7: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Shutdown().Error("Error closing database", "error", err.Error())
	} else {
		logger.Shutdown().Info("Database connection closed")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// ensureSecrets generates the JWT and AES secrets when the environment does
// not provide them. Generated secrets are ephemeral: sessions and sealed view
// markers issued under them do not survive a restart, so the warning tells
// operators to pin them in production.
func ensureSecrets(logger *logging.ChanneledLogger) error {
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not set; generated an ephemeral secret. Sessions will not survive a restart.")
	}
	if config.AESKey == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate AES key: %w", err)
		}
		config.AESKey = key
		logger.Startup().Warn("AES_KEY not set; generated an ephemeral key. View markers will not survive a restart.")
	}
	return nil
}

// resolveDataSource picks the remote libsql database when configured and
// falls back to the local sqlite file otherwise.
func resolveDataSource() (driverName, dataSourceName string) {
	if config.DatabaseURL != "" {
		dsn := config.DatabaseURL
		if config.DatabaseAuthToken != "" {
			dsn += "?authToken=" + config.DatabaseAuthToken
		}
		return "libsql", dsn
	}
	return "sqlite3", config.DatabasePath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
