// Package livewire implements the push-channel contract over a websocket
// gateway: one connection per room, authorized by a subscribe token.
package livewire

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/config"
	"github.com/relayteam/roomsync/internal/live"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/jwt"
)

type Client struct {
	gatewayURL string
	userID     string
	jwtGen     *jwt.Generator
	dialer     *websocket.Dialer
	logger     *zap.Logger
}

func New(cfg *config.Config, userID string, logger *zap.Logger) *Client {
	return &Client{
		gatewayURL: cfg.Gateway.URL,
		userID:     userID,
		jwtGen:     jwt.New(cfg.Gateway.JWTSecret),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.Gateway.Timeout,
		},
		logger: logger,
	}
}

// Subscribe dials the gateway for one room. Events are dispatched to the
// callbacks in read order; a read failure surfaces once on Err and ends the
// subscription.
func (c *Client) Subscribe(ctx context.Context, roomID string, onInsert, onUpdate func(model.Message)) (live.Subscription, error) {
	token, _, err := c.jwtGen.GenerateSubscribeToken(c.userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscribe token: %w", err)
	}

	u, err := url.Parse(c.gatewayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	q := u.Query()
	q.Set("room", roomID)
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial gateway: %w", err)
	}

	sub := &subscription{
		conn:  conn,
		errCh: make(chan error, 1),
	}

	go sub.readLoop(roomID, onInsert, onUpdate, c.logger)

	return sub, nil
}

type subscription struct {
	conn  *websocket.Conn
	errCh chan error
	once  sync.Once
}

func (s *subscription) Err() <-chan error { return s.errCh }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.conn.Close()
	})
	return err
}

func (s *subscription) readLoop(roomID string, onInsert, onUpdate func(model.Message), logger *zap.Logger) {
	for {
		var event model.ChannelEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			s.errCh <- err
			return
		}

		switch event.Kind {
		case model.EventInsert:
			onInsert(event.Message)
		case model.EventUpdate:
			onUpdate(event.Message)
		default:
			logger.Debug("livewire: ignoring unknown event kind",
				zap.String("room_id", roomID),
				zap.String("kind", string(event.Kind)),
			)
		}
	}
}
