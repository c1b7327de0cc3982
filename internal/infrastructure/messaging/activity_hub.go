package messaging

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/caching/manager"
	"github.com/gorilla/websocket"
)

const activityFeedSize = 50

// ActivityClient represents a single connected activity feed client.
type ActivityClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// ActivityItem is one entry in the live activity feed.
type ActivityItem struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"userId"`
	StoryID   string    `json:"storyId,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityPayload is the complete data structure sent to clients on each tick.
type ActivityPayload struct {
	Recent           []ActivityItem `json:"recent"`
	TrackedViews     int            `json:"trackedViews"`
	CachedProfiles   int            `json:"cachedProfiles"`
	ConnectedClients int            `json:"connectedClients"`
}

// ActivityHub manages all connected activity feed clients and broadcasts data.
type ActivityHub struct {
	clients      map[*ActivityClient]bool
	register     chan *ActivityClient
	unregister   chan *ActivityClient
	events       chan ActivityItem
	recent       []ActivityItem
	cacheManager *manager.Manager
	mu           sync.RWMutex
}

// NewActivityHub creates a new hub instance.
func NewActivityHub(cm *manager.Manager) *ActivityHub {
	return &ActivityHub{
		clients:      make(map[*ActivityClient]bool),
		register:     make(chan *ActivityClient),
		unregister:   make(chan *ActivityClient),
		events:       make(chan ActivityItem, 64),
		recent:       make([]ActivityItem, 0, activityFeedSize),
		cacheManager: cm,
	}
}

// Run starts the hub's main loop. This should be run as a goroutine.
func (h *ActivityHub) Run(ctx context.Context) {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("Activity client registered (%d connected)", len(h.clients))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			log.Printf("Activity client unregistered (%d connected)", len(h.clients))
			h.mu.Unlock()

		case item := <-h.events:
			h.appendItem(item)

		case <-ticker.C:
			h.broadcastActivity()
		}
	}
}

// Register queues a client for registration.
func (h *ActivityHub) Register(client *ActivityClient) {
	h.register <- client
}

// Unregister queues a client for unregistration.
func (h *ActivityHub) Unregister(client *ActivityClient) {
	h.unregister <- client
}

// Publish queues an engagement event for the live feed. Non-blocking; events
// are dropped if the hub falls behind.
func (h *ActivityHub) Publish(kind, userID, storyID, detail string) {
	item := ActivityItem{
		Kind:      kind,
		UserID:    userID,
		StoryID:   storyID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.events <- item:
	default:
	}
}

// appendItem adds an item to the rolling feed, newest first.
func (h *ActivityHub) appendItem(item ActivityItem) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append([]ActivityItem{item}, h.recent...)
	if len(h.recent) > activityFeedSize {
		h.recent = h.recent[:activityFeedSize]
	}
}

// broadcastActivity gathers and sends the current activity payload to all clients.
func (h *ActivityHub) broadcastActivity() {
	h.mu.RLock()
	clientCount := len(h.clients)
	h.mu.RUnlock()

	if clientCount == 0 {
		return
	}

	payload := h.preparePayload(clientCount)

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling activity payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// preparePayload snapshots the feed and cache stats for one broadcast tick.
func (h *ActivityHub) preparePayload(clientCount int) ActivityPayload {
	h.mu.RLock()
	recent := make([]ActivityItem, len(h.recent))
	copy(recent, h.recent)
	h.mu.RUnlock()

	stats := h.cacheManager.GetStats()

	return ActivityPayload{
		Recent:           recent,
		TrackedViews:     stats.ViewMarkers,
		CachedProfiles:   stats.ProfileSnapshots,
		ConnectedClients: clientCount,
	}
}
