// Package session owns every per-room resource of the sync engine (store,
// dedup cache, timers, live channel, send pipeline, correlator) and tears
// them down as one unit when the room closes. Exactly one session may be
// live per room; callers must Close the previous one before opening a new
// one for the same room.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/live"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/dedup"
	"github.com/relayteam/roomsync/internal/pkg/timeset"
	"github.com/relayteam/roomsync/internal/respond"
	"github.com/relayteam/roomsync/internal/send"
	"github.com/relayteam/roomsync/internal/store"
	"github.com/relayteam/roomsync/internal/view"
)

// Deps are the session's collaborators; all injected, no ambient singletons.
type Deps struct {
	Subscriber live.Subscriber
	Visibility live.Visibility
	Writer     send.DurableWriter
	Responder  send.Responder
	Notifier   send.Notifier
	Logger     *zap.Logger
}

type Config struct {
	DedupTTL time.Duration
	Live     live.Config
	Send     send.Config
}

func (c Config) withDefaults() Config {
	if c.DedupTTL <= 0 {
		c.DedupTTL = 10 * time.Second
	}
	return c
}

type Session struct {
	roomID     string
	store      *store.Store
	cache      *dedup.Cache
	timers     *timeset.Set
	manager    *live.Manager
	pipeline   *send.Pipeline
	correlator *respond.Correlator
	grouper    *view.Grouper
	ctx        context.Context
	cancel     context.CancelFunc
}

// Open builds and starts a room session: the store is seeded empty, the
// push subscription begins connecting, and Send is usable immediately.
func Open(ctx context.Context, roomID, userID string, cfg Config, deps Deps) *Session {
	cfg = cfg.withDefaults()
	logger := deps.Logger.With(zap.String("room_id", roomID))

	ctx, cancel := context.WithCancel(ctx)

	timers := timeset.New()
	cache := dedup.New(cfg.DedupTTL, timers)
	st := store.New(roomID, logger)

	correlator := respond.NewCorrelator(roomID, st, deps.Notifier, logger)
	pipeline := send.NewPipeline(cfg.Send, roomID, userID, st, deps.Writer, deps.Responder, deps.Notifier, correlator, timers, logger)
	manager := live.NewManager(cfg.Live, roomID, deps.Subscriber, st, cache, deps.Visibility, timers, logger)

	s := &Session{
		roomID:     roomID,
		store:      st,
		cache:      cache,
		timers:     timers,
		manager:    manager,
		pipeline:   pipeline,
		correlator: correlator,
		grouper:    view.NewGrouper(st),
		ctx:        ctx,
		cancel:     cancel,
	}

	manager.Open(ctx)
	return s
}

// Send submits one user composition. Fire-and-forget: failures reach the
// user through the notifier, never as a return value. The background
// effects run on the session's own lifetime, so a caller going away cannot
// abandon a write mid-flight; only Close cuts them short.
func (s *Session) Send(body string, attachments []model.Attachment) {
	s.pipeline.Send(s.ctx, body, attachments)
}

// Groups is the only read surface the presentation layer uses.
func (s *Session) Groups() []view.Group {
	return s.grouper.Groups()
}

// OnChange registers the presentation layer's recompute trigger.
func (s *Session) OnChange(fn func()) {
	s.store.OnChange(fn)
}

// Seed replays a backfill of already-durable messages through the normal
// reconciliation path, typically before live events start flowing.
func (s *Session) Seed(msgs model.MessageList) {
	for _, m := range msgs {
		s.store.Upsert(m)
	}
}

// ChannelState exposes the live channel's current state for presentation
// (connection indicators).
func (s *Session) ChannelState() live.State {
	return s.manager.State()
}

// Close tears the room down: live channel, retry timers, dedup expiry, all
// cancelled synchronously. Async completions still in flight observe the
// closed state and drop their results.
func (s *Session) Close() {
	s.cancel()
	s.manager.Close()
	s.pipeline.Wait()
	s.cache.Close()
	s.timers.Close()
}
