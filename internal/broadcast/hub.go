package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// ErrBufferFull is returned when the hub cannot accept another event
var ErrBufferFull = errors.New("broadcast buffer full")

// Hub maintains the set of active clients and fans report lifecycle events
// out to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	// Inbound events from the publication service or the stream consumer
	broadcast chan models.ReportEvent

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	logger *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.ReportEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Register adds a client to the hub. It is a no-op once the hub stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// PublishReportEvent queues an event for every subscribed client. It
// never blocks; a full buffer drops the event.
func (h *Hub) PublishReportEvent(ctx context.Context, event models.ReportEvent) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	c.logger.Debug("websocket client connected", zap.Int("clients", total))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.closeSend()
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		c.logger.Debug("websocket client disconnected", zap.Int("clients", total))
	}
}

func (h *Hub) broadcastEvent(event models.ReportEvent) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := ServerMessage{
		Type:      MessageTypeReportEvent,
		Payload:   event,
		Timestamp: time.Now().UTC(),
	}

	for _, c := range clients {
		if !c.wants(event.Sport) {
			continue
		}
		if !c.trySend(message) {
			// Slow client
			h.logger.Warn("websocket client buffer full, disconnecting", zap.String("client_id", c.ID))
			h.unregisterClient(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.Info("shutting down websocket hub", zap.Int("clients", len(h.clients)))

	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
}
