// Package messaging defines interfaces for real-time communication.
package messaging

// Broadcaster defines the interface for managing SSE client connections and broadcasting notifications.
type Broadcaster interface {
	AddClient(userID string) chan string
	RemoveClient(ch chan string, userID string)
	GetConnectionCount(userID string) int
	BroadcastAchievementUnlocked(userID, achievementID, name, badge string, bonus int)
	BroadcastLevelChanged(userID, fromLevel, toLevel string)
	BroadcastPointsChanged(userID string, delta, balance int)
	HasListeners(userID string) bool
}
