// Package messaging provides the concrete implementation of the SSE broadcaster.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster manages per-user SSE connections for engagement notifications.
type SSEBroadcaster struct {
	userClients map[string][]chan string // userId -> []channels
	mu          sync.Mutex
	logger      *logging.ChanneledLogger
}

var (
	globalBroadcaster *SSEBroadcaster
	once              sync.Once
)

// NewSSEBroadcaster creates the singleton SSEBroadcaster instance.
func NewSSEBroadcaster(logger *logging.ChanneledLogger) *SSEBroadcaster {
	once.Do(func() {
		globalBroadcaster = &SSEBroadcaster{
			userClients: make(map[string][]chan string),
			logger:      logger,
		}
	})
	return globalBroadcaster
}

// AddClient registers a new SSE client for a user.
func (b *SSEBroadcaster) AddClient(userID string) chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.userClients[userID] = append(b.userClients[userID], ch)

	b.logger.SSE().Debug("SSE client registered", "userId", userID)
	return ch
}

// RemoveClient removes an SSE client for a user.
func (b *SSEBroadcaster) RemoveClient(ch chan string, userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, exists := b.userClients[userID]; exists {
		newClients := make([]chan string, 0, len(clients)-1)
		for _, client := range clients {
			if client != ch {
				newClients = append(newClients, client)
			}
		}
		b.userClients[userID] = newClients

		if len(b.userClients[userID]) == 0 {
			delete(b.userClients, userID)
		}
	}
	b.logger.SSE().Debug("SSE client unregistered", "userId", userID)
}

// GetConnectionCount returns the connection count for a specific user.
func (b *SSEBroadcaster) GetConnectionCount(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.userClients[userID])
}

// BroadcastAchievementUnlocked notifies a user that they unlocked an achievement.
func (b *SSEBroadcaster) BroadcastAchievementUnlocked(userID, achievementID, name, badge string, bonus int) {
	payload, _ := json.Marshal(map[string]any{
		"achievementId": achievementID,
		"name":          name,
		"badge":         badge,
		"bonus":         bonus,
	})
	b.sendToUser(userID, formatEvent("achievement_unlocked", payload))
}

// BroadcastLevelChanged notifies a user that their level changed.
func (b *SSEBroadcaster) BroadcastLevelChanged(userID, fromLevel, toLevel string) {
	payload, _ := json.Marshal(map[string]any{
		"from": fromLevel,
		"to":   toLevel,
	})
	b.sendToUser(userID, formatEvent("level_changed", payload))
}

// BroadcastPointsChanged notifies a user of a points balance change.
func (b *SSEBroadcaster) BroadcastPointsChanged(userID string, delta, balance int) {
	payload, _ := json.Marshal(map[string]any{
		"delta":   delta,
		"balance": balance,
	})
	b.sendToUser(userID, formatEvent("points_changed", payload))
}

// HasListeners checks whether any SSE clients are connected for a user.
func (b *SSEBroadcaster) HasListeners(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.userClients[userID]) > 0
}

func formatEvent(event string, data []byte) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
}

// sendToUser delivers a pre-formatted SSE message to every channel of a user.
func (b *SSEBroadcaster) sendToUser(userID, message string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in sendToUser", "error", r, "userId", userID)
		}
	}()

	b.logger.SSE().Debug("Broadcasting to user", "message", strings.ReplaceAll(message, "\n", "\\n"), "userId", userID)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.userClients[userID] {
		select {
		case ch <- message:
		default:
			b.logger.SSE().Warn("SSE channel full, message dropped", "userId", userID)
		}
	}
}
