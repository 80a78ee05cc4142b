package broadcast

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades HTTP connections into hub clients
type Handler struct {
	hub      *Hub
	ctx      context.Context
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler. Client pumps run on ctx, not on
// the request context. An empty origins list accepts any origin.
func NewHandler(ctx context.Context, hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		ctx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWS handles GET /ws/reports?sport=nba,nfl
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var sports []string
	if raw := r.URL.Query().Get("sport"); raw != "" {
		sports = strings.Split(raw, ",")
	}
	initial, err := parseSports(sports)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h.hub, initial)
	h.hub.Register(c)

	go c.writePump(h.ctx)
	go c.readPump(h.ctx)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
