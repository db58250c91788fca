package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"
)

// PositionSink stores driver positions received over the socket
type PositionSink interface {
	UpdateDriverPosition(driverID string, coords models.Coordinates, location string) (models.Driver, error)
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	// Registered clients (userID -> Client)
	clients map[string]*Client

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	positions PositionSink
	log       logger.Logger
	metrics   *metrics.Metrics

	mu sync.RWMutex
}

// Message represents a message to broadcast to a specific user
type Message struct {
	UserID string
	Data   interface{}
}

func NewHub(positions PositionSink, log logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		positions:  positions,
		log:        log.With("component", "websocket"),
		metrics:    m,
	}
}

// Run starts the hub's main loop; it returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.gauge()
			return

		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok {
				close(old.send)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			h.gauge()
			h.log.Info("✅ Client CONNECTED", "user_id", client.UserID, "role", client.UserRole, "clients", h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.send)
				h.log.Info("🔴 Client DISCONNECTED", "user_id", client.UserID, "role", client.UserRole)
			}
			h.mu.Unlock()
			h.gauge()

		case message := <-h.broadcast:
			data, err := json.Marshal(message.Data)
			if err != nil {
				h.log.Error("❌ Failed to marshal message", "error", err)
				continue
			}

			h.mu.Lock()
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, client.UserID)
					h.log.Warn("⚠️ Client buffer full, disconnecting", "user_id", message.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, data interface{}) {
	select {
	case h.broadcast <- &Message{UserID: userID, Data: data}:
	case <-h.done:
	}
}

// BroadcastToRole sends a message to all users with a specific role
func (h *Hub) BroadcastToRole(role string, data interface{}) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		h.log.Error("❌ Failed to marshal broadcast message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserRole == role {
			select {
			case client.send <- dataBytes:
			default:
			}
		}
	}
}

// Publish fans a domain event out to every admin session and, when the event
// names a driver, to that driver's session
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	h.BroadcastToRole(models.RoleAdmin, event)
	if event.DriverID != "" {
		h.BroadcastToUser(event.DriverID, event)
	}
	return nil
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) gauge() {
	if h.metrics != nil {
		h.metrics.WebsocketClients.Set(float64(h.GetClientCount()))
	}
}

func (h *Hub) registerClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
