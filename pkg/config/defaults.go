// Package config provides centralized default values for StoryHive
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	AllowedOrigins     string

	// Database
	DatabasePath             string
	DatabaseURL              string
	DatabaseAuthToken        string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Security
	JWTSecret        string
	AESKey           string
	SessionTTLHours  int
	BcryptCost       int
	ViewMarkerMaxAge time.Duration

	// Engagement
	ViewDedupWindow  time.Duration
	ViewSweepVerbose bool

	// SSE Configuration
	MaxSessionConnections       int
	SSEHeartbeatIntervalSeconds int
	SSEInactivityTimeoutMinutes int

	// Cleanup Intervals
	CleanupInterval    time.Duration
	SSECleanupInterval time.Duration

	// Email
	ResendAPIKey string
	EmailFrom    string
	SiteURL      string

	// Media
	MediaDir        string
	AvatarMaxPixels int
	CoverMaxPixels  int
	WebPQuality     float32
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	AllowedOrigins = getEnvString("ALLOWED_ORIGINS", "*")

	// Database
	DatabasePath = getEnvString("DATABASE_PATH", "storyhive.db")
	DatabaseURL = getEnvString("DATABASE_URL", "")
	DatabaseAuthToken = getEnvString("DATABASE_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Security
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")
	SessionTTLHours = getEnvInt("SESSION_TTL_HOURS", 72)
	BcryptCost = getEnvInt("BCRYPT_COST", 10)
	ViewMarkerMaxAge = time.Duration(getEnvInt("VIEW_MARKER_MAX_AGE_HOURS", 24)) * time.Hour

	// Engagement
	ViewDedupWindow = getEnvDuration("VIEW_DEDUP_WINDOW", 10*time.Second)
	ViewSweepVerbose = getEnvBool("VIEW_SWEEP_VERBOSE", false)

	// SSE Configuration
	MaxSessionConnections = getEnvInt("MAX_SESSION_CONNECTIONS", 3)
	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)
	SSEInactivityTimeoutMinutes = getEnvInt("SSE_INACTIVITY_TIMEOUT_MINUTES", 5)

	// Cleanup Intervals
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 5)) * time.Minute
	SSECleanupInterval = time.Duration(getEnvInt("SSE_CLEANUP_INTERVAL_MINUTES", 5)) * time.Minute

	// Email
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFrom = getEnvString("EMAIL_FROM", "StoryHive <hello@storyhive.community>")
	SiteURL = getEnvString("SITE_URL", "http://localhost:4321")

	// Media
	MediaDir = getEnvString("MEDIA_DIR", "./media")
	AvatarMaxPixels = getEnvInt("AVATAR_MAX_PIXELS", 256)
	CoverMaxPixels = getEnvInt("COVER_MAX_PIXELS", 1200)
	WebPQuality = float32(getEnvInt("WEBP_QUALITY", 80))
}
