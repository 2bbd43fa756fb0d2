package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pricegov/internal/models"
)

/********** timings **********/
const (
	readLimit     = 1 << 16
	readDeadline  = 120 * time.Second // extended by every pong
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

type liveClient struct {
	userID int64
	role   string
	conn   *websocket.Conn
	done   chan struct{}
}

type directEvent struct {
	userID int64
	event  models.LiveEvent
}

// WebSocketManager owns every live connection. All access to clients
// happens on the Run goroutine.
type WebSocketManager struct {
	clients    map[int64]*liveClient
	staffcast  chan models.LiveEvent
	direct     chan directEvent
	register   chan *liveClient
	unregister chan *liveClient
	stopped    chan struct{}
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[int64]*liveClient),
		staffcast:  make(chan models.LiveEvent),
		direct:     make(chan directEvent),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		stopped:    make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (ws *WebSocketManager) Run(ctx context.Context) {
	defer func() {
		close(ws.stopped)
		for id, c := range ws.clients {
			_ = writeClose(c.conn, websocket.CloseGoingAway, "server shutdown")
			_ = c.conn.Close()
			delete(ws.clients, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-ws.register:
			// one socket per user: a new login replaces the old tab
			if old, ok := ws.clients[c.userID]; ok && old.conn != c.conn {
				_ = old.conn.Close()
			}
			ws.clients[c.userID] = c
			zap.L().Debug("ws register", zap.Int64("user_id", c.userID), zap.String("role", c.role))
			hello := models.LiveEvent{Type: models.EventConnected, Payload: map[string]any{"user_id": c.userID, "role": c.role}}
			if !ws.write(c, hello) {
				delete(ws.clients, c.userID)
			}

		case c := <-ws.unregister:
			if cur, ok := ws.clients[c.userID]; ok && cur.conn == c.conn {
				delete(ws.clients, c.userID)
				zap.L().Debug("ws unregister", zap.Int64("user_id", c.userID))
			}
			_ = c.conn.Close()

		case e := <-ws.staffcast:
			for id, c := range ws.clients {
				if !models.IsGovStaff(c.role) {
					continue
				}
				if !ws.write(c, e) {
					delete(ws.clients, id)
				}
			}

		case dm := <-ws.direct:
			if c, ok := ws.clients[dm.userID]; ok {
				if !ws.write(c, dm.event) {
					delete(ws.clients, dm.userID)
				}
			}
		}
	}
}

func (ws *WebSocketManager) write(c *liveClient, e models.LiveEvent) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := c.conn.WriteJSON(e); err != nil {
		zap.L().Warn("ws send failed", zap.Int64("user_id", c.userID), zap.Error(err))
		_ = c.conn.Close()
		return false
	}
	return true
}

// BroadcastToStaff delivers e to every connected government user.
func (ws *WebSocketManager) BroadcastToStaff(e models.LiveEvent) {
	select {
	case ws.staffcast <- e:
	case <-ws.stopped:
	}
}

// SendToUser delivers e to one user if they are connected.
func (ws *WebSocketManager) SendToUser(userID int64, e models.LiveEvent) {
	select {
	case ws.direct <- directEvent{userID: userID, event: e}:
	case <-ws.stopped:
	}
}

func (ws *WebSocketManager) drop(c *liveClient) {
	select {
	case ws.unregister <- c:
	case <-ws.stopped:
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// WebSocketHandler authenticates with ?token=<access> (browsers cannot set
// headers on a websocket handshake) before upgrading.
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := app.tokens.Parse(token)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	c := &liveClient{userID: claims.UserID, role: claims.Role, conn: conn, done: make(chan struct{})}
	select {
	case app.wsManager.register <- c:
	case <-app.wsManager.stopped:
		_ = conn.Close()
		return
	}

	go pingLoop(c)
	go readLoop(app.wsManager, c)
}

func pingLoop(c *liveClient) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			// gorilla allows WriteControl concurrently with other writers
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames; the feed is server to client only. It
// exists to process control frames and notice disconnects.
func readLoop(ws *WebSocketManager, c *liveClient) {
	defer func() {
		close(c.done)
		ws.drop(c)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
