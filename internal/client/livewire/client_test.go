package livewire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/config"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/jwt"
)

const testSecret = "test-secret"

type gatewayStub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    []*websocket.Conn
	rooms    []string
	tokens   []string
}

func (g *gatewayStub) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	g.mu.Lock()
	g.conns = append(g.conns, conn)
	g.rooms = append(g.rooms, r.URL.Query().Get("room"))
	g.tokens = append(g.tokens, r.URL.Query().Get("token"))
	g.mu.Unlock()
}

func (g *gatewayStub) lastConn() *websocket.Conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.conns) == 0 {
		return nil
	}
	return g.conns[len(g.conns)-1]
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := &config.Config{}
	cfg.Gateway.URL = "ws" + strings.TrimPrefix(serverURL, "http")
	cfg.Gateway.JWTSecret = testSecret
	cfg.Gateway.Timeout = 5 * time.Second
	return New(cfg, "user-1", zap.NewNop())
}

func TestSubscribeDeliversEvents(t *testing.T) {
	t.Parallel()

	gateway := &gatewayStub{}
	server := httptest.NewServer(http.HandlerFunc(gateway.handler))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var mu sync.Mutex
	var inserts, updates []model.Message
	sub, err := client.Subscribe(context.Background(), "room-1",
		func(m model.Message) { mu.Lock(); inserts = append(inserts, m); mu.Unlock() },
		func(m model.Message) { mu.Lock(); updates = append(updates, m); mu.Unlock() },
	)
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return gateway.lastConn() != nil }, time.Second, time.Millisecond)

	conn := gateway.lastConn()
	require.NoError(t, conn.WriteJSON(model.ChannelEvent{
		Kind:    model.EventInsert,
		Message: model.Message{ID: "srv-1", RoomID: "room-1", Body: "hello"},
	}))
	require.NoError(t, conn.WriteJSON(model.ChannelEvent{
		Kind:    model.EventUpdate,
		Message: model.Message{ID: "srv-1", RoomID: "room-1", Body: "hello!"},
	}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(inserts) == 1 && len(updates) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "hello", inserts[0].Body)
	assert.Equal(t, "hello!", updates[0].Body)
}

func TestSubscribeSendsValidToken(t *testing.T) {
	t.Parallel()

	gateway := &gatewayStub{}
	server := httptest.NewServer(http.HandlerFunc(gateway.handler))
	defer server.Close()

	client := newTestClient(t, server.URL)

	sub, err := client.Subscribe(context.Background(), "room-7", func(model.Message) {}, func(model.Message) {})
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return gateway.lastConn() != nil }, time.Second, time.Millisecond)

	gateway.mu.Lock()
	room, token := gateway.rooms[0], gateway.tokens[0]
	gateway.mu.Unlock()

	assert.Equal(t, "room-7", room)

	claims, err := jwt.New(testSecret).ValidateSubscribeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "room-7", claims.RoomID)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSubscribeSurfacesChannelLoss(t *testing.T) {
	t.Parallel()

	gateway := &gatewayStub{}
	server := httptest.NewServer(http.HandlerFunc(gateway.handler))
	defer server.Close()

	client := newTestClient(t, server.URL)

	sub, err := client.Subscribe(context.Background(), "room-1", func(model.Message) {}, func(model.Message) {})
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return gateway.lastConn() != nil }, time.Second, time.Millisecond)
	require.NoError(t, gateway.lastConn().Close())

	select {
	case err := <-sub.Err():
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected channel loss to surface on Err")
	}
}

func TestSubscribeDialFailure(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Gateway.URL = "ws://127.0.0.1:1/channels"
	cfg.Gateway.JWTSecret = testSecret
	cfg.Gateway.Timeout = 200 * time.Millisecond
	client := New(cfg, "user-1", zap.NewNop())

	_, err := client.Subscribe(context.Background(), "room-1", func(model.Message) {}, func(model.Message) {})
	assert.Error(t, err)
}
