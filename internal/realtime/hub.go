package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wayfarer-app/wayfarer/internal/auth"
	"github.com/wayfarer-app/wayfarer/internal/metrics"
)

// GroupChecker decides whether a user may join a group room. Wired to the
// authorization layer at composition time so this package stays free of
// service dependencies.
type GroupChecker interface {
	CanJoin(ctx context.Context, userID, groupID string) (bool, error)
}

// clientMessage is the envelope clients send over the socket.
type clientMessage struct {
	Event   string `json:"event"`
	GroupID string `json:"groupId"`
}

// serverMessage is the envelope pushed to clients.
type serverMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub binds websocket connections to the Registry and fans broadcasts out
// to joined connections.
type Hub struct {
	registry *Registry
	tokens   *auth.JWTManager
	checker  GroupChecker

	mu      sync.RWMutex
	sockets map[string]*websocket.Conn
}

// NewHub creates a hub. checker may be nil, in which case any authenticated
// user may join any room.
func NewHub(tokens *auth.JWTManager, checker GroupChecker) *Hub {
	return &Hub{
		registry: NewRegistry(),
		tokens:   tokens,
		checker:  checker,
		sockets:  make(map[string]*websocket.Conn),
	}
}

// Registry exposes the underlying room registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Handler returns the websocket handler for client connections. Clients
// authenticate with a JWT in the "token" query parameter, then send
// joinGroup messages for each group they want notifications from.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(ws *websocket.Conn) {
	claims, err := h.tokens.Validate(ws.Request().URL.Query().Get("token"))
	if err != nil {
		slog.Warn("Websocket auth failed", "error", err)
		ws.Close()
		return
	}

	connID := uuid.New().String()
	h.mu.Lock()
	h.sockets[connID] = ws
	h.mu.Unlock()
	slog.Info("Websocket connected", "conn_id", connID, "user_id", claims.UserID)

	defer func() {
		h.registry.Drop(connID)
		h.mu.Lock()
		delete(h.sockets, connID)
		h.mu.Unlock()
		ws.Close()
		slog.Info("Websocket disconnected", "conn_id", connID, "user_id", claims.UserID)
	}()

	for {
		var msg clientMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return // disconnect
		}

		switch msg.Event {
		case "joinGroup":
			if msg.GroupID == "" {
				continue
			}
			if h.checker != nil {
				ok, err := h.checker.CanJoin(ws.Request().Context(), claims.UserID, msg.GroupID)
				if err != nil || !ok {
					slog.Warn("Room join rejected",
						"conn_id", connID,
						"user_id", claims.UserID,
						"group_id", msg.GroupID,
						"error", err,
					)
					continue
				}
			}
			h.registry.Join(connID, msg.GroupID)
			slog.Info("Joined group room", "conn_id", connID, "group_id", msg.GroupID)
		case "leaveGroup":
			h.registry.Leave(connID, msg.GroupID)
		default:
			slog.Debug("Unknown socket event", "event", msg.Event)
		}
	}
}

// Broadcast delivers an event to every connection joined to the group
// room. Delivery is best-effort: a failed send is logged and does not
// affect the other connections.
func (h *Hub) Broadcast(groupID, event string, payload interface{}) error {
	metrics.SocketBroadcasts.Inc()
	msg := serverMessage{Event: event, Data: payload}

	for _, connID := range h.registry.MembersOf(groupID) {
		h.mu.RLock()
		ws := h.sockets[connID]
		h.mu.RUnlock()
		if ws == nil {
			continue
		}
		if err := websocket.JSON.Send(ws, msg); err != nil {
			slog.Warn("Socket send failed", "conn_id", connID, "group_id", groupID, "error", err)
		}
	}
	return nil
}
