package presence

import (
	"encoding/json"
	"sync"
	"time"

	"EchoFM/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one authenticated WebSocket session.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	SocketID string
	UserID   int64
	Username string

	send      chan []byte
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. The conn may be nil in tests; then
// sent messages accumulate on the send channel.
func NewClient(hub *Hub, conn *websocket.Conn, socketID string, userID int64, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		SocketID: socketID,
		UserID:   userID,
		Username: username,
		send:     make(chan []byte, sendBufferSize),
	}
}

// trySend queues a message without blocking. A full buffer drops the
// message; fan-out must never stall the hub.
func (c *Client) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
		logger.Warn("send buffer full, dropping message",
			logger.Int64("user", c.UserID),
			logger.String("socket", c.SocketID))
	}
}

// close shuts the send channel, which makes WritePump close the underlying
// connection. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump reads and dispatches inbound events until the connection drops,
// then removes the client from the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error",
					logger.ErrorField(err),
					logger.Int64("user", c.UserID))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn("invalid message format",
				logger.ErrorField(err),
				logger.Int64("user", c.UserID))
			continue
		}

		c.hub.handleMessage(c, &msg)
	}
}

// WritePump drains the send channel to the connection and keeps the
// connection alive with pings.
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
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce whatever else is queued.
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
