package websocket

import (
	"encoding/json"
	"time"

	"dispatchai-pro/internal/models"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048
)

// Client represents a WebSocket client connection
type Client struct {
	UserID   string
	UserRole string // "driver" or "admin"
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewClient(userID, userRole string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:   userID,
		UserRole: userRole,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 256),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("WebSocket error", "user_id", c.UserID, "error", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Invalid message format", "user_id", c.UserID, "error", err)
			continue
		}

		switch msg.Type {
		case "ping":
			c.hub.BroadcastToUser(c.UserID, map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			})

		case "location_update":
			c.handleLocationUpdate(msg.Data)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleLocationUpdate stores a driver's reported position and relays it to dispatchers
func (c *Client) handleLocationUpdate(data map[string]interface{}) {
	if c.UserRole != models.RoleDriver || c.hub.positions == nil {
		return
	}

	latitude, ok := data["latitude"].(float64)
	if !ok {
		c.hub.log.Debug("❌ Invalid latitude in location update", "user_id", c.UserID)
		return
	}
	longitude, ok := data["longitude"].(float64)
	if !ok {
		c.hub.log.Debug("❌ Invalid longitude in location update", "user_id", c.UserID)
		return
	}
	location, _ := data["location"].(string)

	driver, err := c.hub.positions.UpdateDriverPosition(c.UserID, models.Coordinates{Lat: latitude, Lng: longitude}, location)
	if err != nil {
		c.hub.log.Warn("❌ Error saving driver position", "user_id", c.UserID, "error", err)
		return
	}

	c.hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
		"type": "driver_location_update",
		"data": map[string]interface{}{
			"driver_id":        driver.ID,
			"latitude":         driver.Coordinates.Lat,
			"longitude":        driver.Coordinates.Lng,
			"current_location": driver.CurrentLocation,
			"timestamp":        time.Now().Unix(),
		},
	})
}
