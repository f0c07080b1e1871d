package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/avbelov/items-api/internal/event"
	"github.com/avbelov/items-api/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// EventsHandler streams item change events to WebSocket clients.
type EventsHandler struct {
	upgrader websocket.Upgrader
	bus      *event.Bus
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*websocket.Conn]context.CancelFunc
}

// NewEventsHandler creates a new EventsHandler instance.
func NewEventsHandler(bus *event.Bus, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		bus:     bus,
		logger:  logger,
		clients: make(map[*websocket.Conn]context.CancelFunc),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/events", h.HandleEvents).Methods(http.MethodGet)
}

// HandleEvents upgrades the connection and forwards item events to
// the client until it disconnects.
//
//nolint:contextcheck // intentional: WebSocket connections outlive the HTTP request context
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// Use background context instead of request context because the HTTP request
	// context gets canceled when the handler returns, but WebSocket connections
	// need to persist beyond the initial HTTP upgrade.
	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	h.clients[conn] = cancel
	h.mu.Unlock()

	h.logger.Info("event stream client connected",
		zap.String("remote_addr", conn.RemoteAddr().String()))

	events, unsubscribe := h.bus.Subscribe()

	go h.writePump(ctx, conn, events, unsubscribe)
	go h.readPump(ctx, conn, cancel)
}

// writePump forwards bus events and periodic pings to the connection.
func (h *EventsHandler) writePump(
	ctx context.Context,
	conn *websocket.Conn,
	events <-chan model.ItemEvent,
	unsubscribe func(),
) {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		unsubscribe()
		h.removeClient(conn)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				// Bus closed, shut the connection down cleanly.
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("failed to write event", zap.Error(err))
				return
			}

		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("failed to write ping", zap.Error(err))
				return
			}
		}
	}
}

// readPump drains client messages to process control frames and
// detect disconnects.
func (h *EventsHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// removeClient cancels and forgets the client connection.
func (h *EventsHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if cancel, ok := h.clients[conn]; ok {
		cancel()
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	_ = conn.Close()
}

// CloseAllConnections closes every active client connection. Called
// during server shutdown.
func (h *EventsHandler) CloseAllConnections() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn, cancel := range h.clients {
		cancel()
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]context.CancelFunc)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}

	h.logger.Info("all event stream connections closed", zap.Int("count", len(conns)))
}
