// Package live maintains one push subscription per open room, surviving
// transient network failures with capped exponential backoff and suspending
// entirely while the room is not visible.
package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/metrics"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/dedup"
	"github.com/relayteam/roomsync/internal/pkg/timeset"
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribed
	StateReconnecting
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReconnecting:
		return "reconnecting"
	case StateSuspended:
		return "suspended"
	}
	return "unknown"
}

type Config struct {
	BackoffBase   time.Duration
	BackoffCap    time.Duration
	MaxAttempts   int
	FallbackDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.BackoffBase <= 0 {
		c.BackoffBase = 400 * time.Millisecond
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 6
	}
	if c.FallbackDelay <= 0 {
		c.FallbackDelay = 30 * time.Second
	}
	return c
}

// Delay computes the wait before reconnect attempt n (1-based): exponential
// from the base, capped, and a single longer fallback once attempts are
// exhausted so the channel never gives up permanently.
func Delay(cfg Config, attempt int) time.Duration {
	cfg = cfg.withDefaults()
	if attempt <= 0 {
		return 0
	}
	if attempt > cfg.MaxAttempts {
		return cfg.FallbackDelay
	}
	d := cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= cfg.BackoffCap {
			return cfg.BackoffCap
		}
	}
	if d > cfg.BackoffCap {
		return cfg.BackoffCap
	}
	return d
}

type Manager struct {
	cfg    Config
	roomID string
	sub    Subscriber
	sink   Sink
	cache  *dedup.Cache
	vis    Visibility
	timers *timeset.Set
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	attempt   int
	gen       uint64
	current   Subscription
	channelUp bool
	retry     *time.Timer
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewManager(
	cfg Config,
	roomID string,
	sub Subscriber,
	sink Sink,
	cache *dedup.Cache,
	vis Visibility,
	timers *timeset.Set,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		cfg:    cfg.withDefaults(),
		roomID: roomID,
		sub:    sub,
		sink:   sink,
		cache:  cache,
		vis:    vis,
		timers: timers,
		logger: logger,
		state:  StateIdle,
	}
}

// Open starts the subscription lifecycle. It returns immediately; the first
// connect happens asynchronously.
func (m *Manager) Open(ctx context.Context) {
	m.mu.Lock()
	if m.ctx != nil {
		m.mu.Unlock()
		return
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.state = StateConnecting
	m.mu.Unlock()

	go m.watchVisibility()
	go m.connect()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close is the one terminal transition: it tears down the network resource,
// cancels any pending retry, and guarantees no further deliveries reach the
// sink even from in-flight callbacks.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.ctx == nil || m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cancel()
	m.gen++
	m.state = StateIdle
	if m.retry != nil {
		m.timers.Stop(m.retry)
		m.retry = nil
	}
	current := m.current
	m.current = nil
	m.channelUp = false
	m.mu.Unlock()

	if current != nil {
		_ = current.Close()
	}
}

func (m *Manager) connect() {
	m.mu.Lock()
	if m.closedLocked() {
		m.mu.Unlock()
		return
	}
	m.gen++
	gen := m.gen
	attempt := m.attempt
	m.retry = nil
	m.mu.Unlock()

	if attempt > 0 {
		metrics.Reconnects.Inc()
	}

	onInsert := func(msg model.Message) { m.deliver(gen, model.EventInsert, msg) }
	onUpdate := func(msg model.Message) { m.deliver(gen, model.EventUpdate, msg) }

	sub, err := m.sub.Subscribe(m.ctx, m.roomID, onInsert, onUpdate)

	m.mu.Lock()
	if m.closedLocked() || gen != m.gen {
		m.mu.Unlock()
		if sub != nil {
			_ = sub.Close()
		}
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("live: subscribe failed",
			zap.String("room_id", m.roomID),
			zap.Error(err),
		)
		m.handleFailure()
		return
	}

	m.state = StateSubscribed
	m.attempt = 0
	m.current = sub
	m.channelUp = true
	m.mu.Unlock()

	m.logger.Info("live: subscribed", zap.String("room_id", m.roomID))

	go m.watchSubscription(gen, sub)
}

func (m *Manager) watchSubscription(gen uint64, sub Subscription) {
	select {
	case <-m.ctx.Done():
		return
	case err, ok := <-sub.Err():
		m.mu.Lock()
		if m.closedLocked() || gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.channelUp = false
		m.current = nil
		m.mu.Unlock()

		if ok && err != nil {
			m.logger.Warn("live: channel lost",
				zap.String("room_id", m.roomID),
				zap.Error(err),
			)
		}
		_ = sub.Close()
		m.handleFailure()
	}
}

// handleFailure decides what a broken channel does next: retry with backoff
// while the room is visible, otherwise park in Suspended until it is.
func (m *Manager) handleFailure() {
	m.mu.Lock()
	if m.closedLocked() {
		m.mu.Unlock()
		return
	}

	if !m.vis.Visible() {
		m.state = StateSuspended
		if m.retry != nil {
			m.timers.Stop(m.retry)
			m.retry = nil
		}
		m.mu.Unlock()
		m.logger.Debug("live: suspended while hidden", zap.String("room_id", m.roomID))
		return
	}

	m.state = StateReconnecting
	m.attempt++
	delay := Delay(m.cfg, m.attempt)
	m.retry = m.timers.AfterFunc(delay, m.connect)
	attempt := m.attempt
	m.mu.Unlock()

	m.logger.Info("live: reconnect scheduled",
		zap.String("room_id", m.roomID),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
	)
}

func (m *Manager) watchVisibility() {
	for {
		select {
		case <-m.ctx.Done():
			return
		case visible, ok := <-m.vis.Changes():
			if !ok {
				return
			}
			if visible {
				m.onVisible()
			} else {
				m.onHidden()
			}
		}
	}
}

func (m *Manager) onHidden() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closedLocked() {
		return
	}
	switch m.state {
	case StateSubscribed, StateReconnecting, StateConnecting:
		m.state = StateSuspended
		if m.retry != nil {
			m.timers.Stop(m.retry)
			m.retry = nil
		}
	}
}

func (m *Manager) onVisible() {
	m.mu.Lock()
	if m.closedLocked() || m.state != StateSuspended {
		m.mu.Unlock()
		return
	}
	if m.channelUp {
		// The connection survived the hidden period; nothing to redo.
		m.state = StateSubscribed
		m.mu.Unlock()
		return
	}
	m.state = StateReconnecting
	m.attempt = 0
	m.mu.Unlock()

	go m.connect()
}

// deliver applies one channel event to the sink, unless it belongs to a
// stale subscription or was already processed within the dedup window.
func (m *Manager) deliver(gen uint64, kind model.EventKind, msg model.Message) {
	m.mu.Lock()
	active := gen == m.gen && !m.closedLocked()
	m.mu.Unlock()
	if !active {
		return
	}

	if msg.ID != "" && m.cache.Seen(dedup.Key{RecordID: msg.ID, Event: kind}) {
		metrics.DedupHits.Inc()
		m.logger.Debug("live: duplicate delivery suppressed",
			zap.String("room_id", m.roomID),
			zap.String("id", msg.ID),
			zap.String("event", string(kind)),
		)
		return
	}

	m.sink.Upsert(msg)
}

func (m *Manager) closedLocked() bool {
	return m.ctx == nil || m.closed || m.ctx.Err() != nil
}
