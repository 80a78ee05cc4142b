package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Client is one WebSocket subscriber to report lifecycle events
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	hub    *Hub
	logger *zap.Logger

	sendMu sync.Mutex
	closed bool

	sportsMu sync.RWMutex
	sports   map[models.Sport]bool
}

func newClient(id string, conn *websocket.Conn, hub *Hub, sports []models.Sport) *Client {
	c := &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		hub:    hub,
		logger: hub.logger.With(zap.String("client_id", id)),
	}
	c.setSports(sports)
	return c
}

// readPump reads subscription changes until the peer goes away
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		c.handleClientMessage(msg)
	}
}

// writePump delivers queued messages and keeps the connection alive
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
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

// trySend queues a message without blocking. False means the buffer is
// full or the client is closed.
func (c *Client) trySend(msg ServerMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend ends writePump. Safe to call more than once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// wants reports whether the client subscribed to sport
func (c *Client) wants(sport models.Sport) bool {
	c.sportsMu.RLock()
	defer c.sportsMu.RUnlock()
	return len(c.sports) == 0 || c.sports[sport]
}

func (c *Client) setSports(sports []models.Sport) {
	set := make(map[models.Sport]bool, len(sports))
	for _, s := range sports {
		set[s] = true
	}

	c.sportsMu.Lock()
	c.sports = set
	c.sportsMu.Unlock()
}

func (c *Client) handleClientMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		sports, err := parseSports(msg.Sports)
		if err != nil {
			c.sendError("invalid_sport", err.Error())
			return
		}
		c.setSports(sports)
		c.trySend(ServerMessage{
			Type:      MessageTypeSubscribed,
			Payload:   Subscription{Sports: sports},
			Timestamp: time.Now().UTC(),
		})
	case MessageTypeHeartbeat:
		c.trySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now().UTC()})
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type)
	}
}

func (c *Client) sendError(code, message string) {
	c.trySend(ServerMessage{
		Type:      MessageTypeError,
		Payload:   ErrorMessage{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}

func parseSports(raw []string) ([]models.Sport, error) {
	sports := make([]models.Sport, 0, len(raw))
	for _, r := range raw {
		sport, err := models.ParseSport(r)
		if err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}
	return sports, nil
}
