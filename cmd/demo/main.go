package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relayteam/roomsync/internal/client/livewire"
	"github.com/relayteam/roomsync/internal/client/responder"
	"github.com/relayteam/roomsync/internal/config"
	"github.com/relayteam/roomsync/internal/live"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/jwt"
	db "github.com/relayteam/roomsync/internal/repository/postgres"
	"github.com/relayteam/roomsync/internal/send"
	"github.com/relayteam/roomsync/internal/session"
)

// alwaysVisible stands in for a real page-visibility source; a headless
// binary is always "looking".
type alwaysVisible struct{}

func (alwaysVisible) Visible() bool        { return true }
func (alwaysVisible) Changes() <-chan bool { return nil }

// logNotifier is the side channel for user-visible failures.
type logNotifier struct {
	logger *zap.Logger
}

func (n *logNotifier) NotifyError(roomID, text string) {
	n.logger.Warn("notification", zap.String("room_id", roomID), zap.String("text", text))
}

// channelHub plays the push gateway for local runs: it upgrades subscribers
// that present a valid subscribe token and fans durable writes out to them
// as insert events.
type channelHub struct {
	jwtGen   *jwt.Generator
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]string
}

func newChannelHub(jwtGen *jwt.Generator, logger *zap.Logger) *channelHub {
	return &channelHub{
		jwtGen: jwtGen,
		logger: logger,
		conns:  make(map[*websocket.Conn]string),
	}
}

func (h *channelHub) handler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	claims, err := h.jwtGen.ValidateSubscribeToken(r.URL.Query().Get("token"))
	if err != nil || claims.RoomID != roomID {
		http.Error(w, "invalid subscribe token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.conns[conn] = roomID
	h.mu.Unlock()
}

func (h *channelHub) broadcast(msg model.Message) {
	event := model.ChannelEvent{Kind: model.EventInsert, Message: msg}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, roomID := range h.conns {
		if roomID != msg.RoomID {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warn("gateway: dropping subscriber", zap.Error(err))
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

// fanoutWriter republishes every durable write on the channel hub, the way
// the production store's fanout echoes writes back to subscribers.
type fanoutWriter struct {
	inner send.DurableWriter
	hub   *channelHub
}

func (f *fanoutWriter) Write(ctx context.Context, msg model.Message) (model.Message, error) {
	echo, err := f.inner.Write(ctx, msg)
	if err != nil {
		return model.Message{}, err
	}
	f.hub.broadcast(echo)
	return echo, nil
}

// echoResponder is a stand-in webhook for local runs: it answers every send
// with a canned agent reply.
func echoResponder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(model.ReplyPayload{
		Message: "echo: " + req.Body,
		AgentID: os.Getenv("DEMO_AGENT_ID"),
	})
}

func main() {
	cfg := config.MustLoad()

	var logger *zap.Logger
	var err error
	if cfg.Service.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // .

	dbRepo := db.New(cfg)
	defer dbRepo.Close()

	responderClient := responder.New(cfg)
	defer responderClient.Close()

	userID := envOr("DEMO_USER_ID", "demo-user")
	roomID := envOr("DEMO_ROOM_ID", "demo-room")

	hub := newChannelHub(jwt.New(cfg.Gateway.JWTSecret), logger)
	subscriber := livewire.New(cfg, userID, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.Open(ctx, roomID, userID, session.Config{
		DedupTTL: cfg.Engine.DedupTTL,
		Live: live.Config{
			BackoffBase:   cfg.Engine.BackoffBase,
			BackoffCap:    cfg.Engine.BackoffCap,
			MaxAttempts:   cfg.Engine.MaxAttempts,
			FallbackDelay: cfg.Engine.FallbackDelay,
		},
		Send: send.Config{
			WriteAttempts: cfg.Engine.WriteAttempts,
			WriteBackoff:  cfg.Engine.WriteBackoff,
		},
	}, session.Deps{
		Subscriber: subscriber,
		Visibility: alwaysVisible{},
		Writer:     &fanoutWriter{inner: dbRepo, hub: hub},
		Responder:  responderClient,
		Notifier:   &logNotifier{logger: logger},
		Logger:     logger,
	})
	defer sess.Close()

	if backfill, err := dbRepo.RecentMessages(ctx, roomID, 50); err != nil {
		logger.Warn("failed to backfill transcript", zap.Error(err))
	} else {
		sess.Seed(backfill)
	}

	sess.OnChange(func() {
		groups := sess.Groups()
		logger.Info("transcript changed", zap.Int("groups", len(groups)))
	})

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/channels", hub.handler)
	router.Post("/responder", echoResponder)
	router.Post("/send", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body        string             `json:"body"`
			Attachments []model.Attachment `json:"attachments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		sess.Send(req.Body, req.Attachments)
		w.WriteHeader(http.StatusAccepted)
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Service.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("port", cfg.Service.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
