package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/messaging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/internal/presentation/http/middleware"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var activityUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EngagementHandlers contains the live engagement surface: the per-member
// SSE stream, the activity feed websocket, and achievement lookups.
type EngagementHandlers struct {
	achievementService *services.AchievementService
	pointsService      *services.PointsService
	broadcaster        *messaging.SSEBroadcaster
	activityHub        *messaging.ActivityHub
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewEngagementHandlers creates engagement handlers with injected dependencies
func NewEngagementHandlers(
	achievementService *services.AchievementService,
	pointsService *services.PointsService,
	broadcaster *messaging.SSEBroadcaster,
	activityHub *messaging.ActivityHub,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *EngagementHandlers {
	return &EngagementHandlers{
		achievementService: achievementService,
		pointsService:      pointsService,
		broadcaster:        broadcaster,
		activityHub:        activityHub,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// GetStream handles GET /api/v1/engagement/stream - per-member SSE stream of
// points, achievement, and level events.
func (h *EngagementHandlers) GetStream(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	if h.broadcaster.GetConnectionCount(u.ID) >= config.MaxSessionConnections {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many open streams"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := h.broadcaster.AddClient(u.ID)
	defer h.broadcaster.RemoveClient(clientChan, u.ID)

	h.logger.SSE().Info("SSE stream opened", "userId", u.ID)

	heartbeat := time.NewTicker(time.Duration(config.SSEHeartbeatIntervalSeconds) * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-clientChan:
			if !ok {
				return false
			}
			fmt.Fprint(w, msg)
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.SSE().Info("SSE stream closed", "userId", u.ID)
}

// GetActivityFeed handles GET /api/v1/engagement/activity - websocket feed of
// recent site-wide engagement activity.
func (h *EngagementHandlers) GetActivityFeed(c *gin.Context) {
	conn, err := activityUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.SSE().Error("Activity websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.ActivityClient{
		Conn: conn,
		Send: make(chan []byte, 8),
	}
	h.activityHub.Register(client)

	go func() {
		defer func() {
			h.activityHub.Unregister(client)
			conn.Close()
		}()
		// Inbound frames are discarded; the read loop only detects closure.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()
}

// GetAchievements handles GET /api/v1/engagement/achievements - the
// authenticated member's unlocked achievements with rule detail.
func (h *EngagementHandlers) GetAchievements(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	unlocks, err := h.achievementService.ListForUser(u.ID)
	if err != nil {
		h.logger.Engagement().Error("Achievement list failed", "userId", u.ID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list achievements"})
		return
	}

	type unlockedAchievement struct {
		*engagement.Unlock
		Name        string `json:"name"`
		Badge       string `json:"badge"`
		Description string `json:"description"`
	}

	enriched := make([]unlockedAchievement, 0, len(unlocks))
	for _, unlock := range unlocks {
		entry := unlockedAchievement{Unlock: unlock}
		if rule, ok := engagement.RuleByID(unlock.AchievementID); ok {
			entry.Name = rule.Name
			entry.Badge = rule.Badge
			entry.Description = rule.Description
		}
		enriched = append(enriched, entry)
	}

	c.JSON(http.StatusOK, gin.H{"achievements": enriched, "count": len(enriched)})
}

// GetRules handles GET /api/v1/engagement/rules - the full achievement catalog
func (h *EngagementHandlers) GetRules(c *gin.Context) {
	type ruleView struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Badge       string `json:"badge"`
		Bonus       int    `json:"bonus"`
	}

	rules := make([]ruleView, 0, len(engagement.Rules))
	for _, rule := range engagement.Rules {
		rules = append(rules, ruleView{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			Badge:       rule.Badge,
			Bonus:       rule.Bonus,
		})
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetBalance handles GET /api/v1/engagement/points - the member's point balance
func (h *EngagementHandlers) GetBalance(c *gin.Context) {
	u, _ := middleware.GetCurrentUser(c)

	balance, err := h.pointsService.Balance(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": balance})
}
