package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pricegov/internal/models"
	"pricegov/utils"
)

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newLiveApp(t *testing.T) *application {
	t.Helper()
	tokens, err := utils.NewManager("ws-test-key")
	require.NoError(t, err)
	return &application{logger: zap.NewNop(), tokens: tokens, wsManager: NewWebSocketManager()}
}

func dialLive(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestLiveFeedRoutesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	app := newLiveApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		app.wsManager.Run(ctx)
		close(stopped)
	}()
	srv := httptest.NewServer(http.HandlerFunc(app.WebSocketHandler))
	defer srv.Close()

	adminToken, err := app.tokens.NewJWT(1, models.RoleGovAdmin, time.Minute)
	require.NoError(t, err)
	farmerToken, err := app.tokens.NewJWT(2, models.RoleFarmer, time.Minute)
	require.NoError(t, err)

	admin := dialLive(t, srv, adminToken)
	defer admin.Close()
	farmer := dialLive(t, srv, farmerToken)
	defer farmer.Close()

	assert.Equal(t, models.EventConnected, readEvent(t, admin).Type)
	assert.Equal(t, models.EventConnected, readEvent(t, farmer).Type)

	app.wsManager.BroadcastToStaff(models.LiveEvent{Type: models.EventPriceAlert, Payload: map[string]int{"id": 7}})
	app.wsManager.SendToUser(2, models.LiveEvent{Type: models.EventNotification, Payload: "Complaint resolved"})

	ev := readEvent(t, admin)
	assert.Equal(t, models.EventPriceAlert, ev.Type)
	assert.JSONEq(t, `{"id":7}`, string(ev.Payload))

	// the farmer never sees staff alerts
	ev = readEvent(t, farmer)
	assert.Equal(t, models.EventNotification, ev.Type)
	assert.JSONEq(t, `"Complaint resolved"`, string(ev.Payload))

	cancel()
	<-stopped

	_, _, err = admin.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)

	// sends after shutdown return instead of blocking
	app.wsManager.SendToUser(2, models.LiveEvent{Type: models.EventNotification})
}

func TestLiveFeedRejectsBadToken(t *testing.T) {
	app := newLiveApp(t)

	rec := httptest.NewRecorder()
	app.WebSocketHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ws?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	app.WebSocketHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
