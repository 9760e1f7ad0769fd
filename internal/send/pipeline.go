// Package send turns one user composition into its three coordinated
// effects: immediate optimistic display, a durable write, and an external
// responder call.
package send

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/metrics"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/timeset"
)

type Sink interface {
	Upsert(model.Message)
}

type Config struct {
	WriteAttempts int
	WriteBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.WriteAttempts <= 0 {
		c.WriteAttempts = 3
	}
	if c.WriteBackoff <= 0 {
		c.WriteBackoff = 500 * time.Millisecond
	}
	return c
}

type Pipeline struct {
	cfg       Config
	roomID    string
	userID    string
	store     Sink
	writer    DurableWriter
	responder Responder
	notifier  Notifier
	replies   ReplySink
	timers    *timeset.Set
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewPipeline(
	cfg Config,
	roomID, userID string,
	store Sink,
	writer DurableWriter,
	responder Responder,
	notifier Notifier,
	replies ReplySink,
	timers *timeset.Set,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg.withDefaults(),
		roomID:    roomID,
		userID:    userID,
		store:     store,
		writer:    writer,
		responder: responder,
		notifier:  notifier,
		replies:   replies,
		timers:    timers,
		logger:    logger,
	}
}

// Send is fire-and-forget: the optimistic record appears synchronously, the
// durable write and responder call proceed in the background, and failures
// reach the user through the notifier only.
//
// The optimistic record is created with Pending=false: the sender authored
// it, so it displays without any in-flight affordance even before the echo.
func (p *Pipeline) Send(ctx context.Context, body string, attachments []model.Attachment) {
	correlationKey := uuid.NewString()

	msg, err := model.NewUserMessage(p.roomID, p.userID, correlationKey, body, attachments)
	if err != nil {
		p.logger.Warn("send: rejected composition",
			zap.String("room_id", p.roomID),
			zap.Error(err),
		)
		return
	}
	if !msg.Displayable() {
		p.logger.Debug("send: ignoring blank composition", zap.String("room_id", p.roomID))
		return
	}

	p.store.Upsert(msg)
	metrics.MessagesSent.Inc()

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.writeDurably(ctx, msg)
	}()
	go func() {
		defer p.wg.Done()
		p.invokeResponder(ctx, body, attachments, correlationKey)
	}()
}

// writeDurably persists the message with short linear backoff. The
// optimistic record is never removed on failure: deleting a user's own
// visible message over a transient error is worse than a phantom retry.
func (p *Pipeline) writeDurably(ctx context.Context, msg model.Message) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.WriteAttempts; attempt++ {
		echo, err := p.writer.Write(ctx, msg)
		if err == nil {
			if ctx.Err() != nil {
				return
			}
			p.store.Upsert(echo)
			return
		}
		lastErr = err

		if errors.Is(err, ErrUnauthorized) {
			p.logger.Error("send: durable write unauthorized",
				zap.String("room_id", p.roomID),
				zap.String("correlation_key", msg.CorrelationKey),
			)
			p.notifier.NotifyError(p.roomID, "message could not be saved: not authorized")
			return
		}
		if ctx.Err() != nil {
			return
		}

		p.logger.Warn("send: durable write failed",
			zap.String("room_id", p.roomID),
			zap.String("correlation_key", msg.CorrelationKey),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < p.cfg.WriteAttempts {
			metrics.DurableWriteRetries.Inc()
			if !p.sleep(ctx, time.Duration(attempt)*p.cfg.WriteBackoff) {
				return
			}
		}
	}

	p.logger.Error("send: durable write exhausted retries",
		zap.String("room_id", p.roomID),
		zap.String("correlation_key", msg.CorrelationKey),
		zap.Error(lastErr),
	)
	p.notifier.NotifyError(p.roomID, fmt.Sprintf("message could not be saved: %v", lastErr))
}

// invokeResponder runs regardless of the durable write's outcome. The reply
// is handed to the correlator with this send's correlation key as the origin
// transaction id.
func (p *Pipeline) invokeResponder(ctx context.Context, body string, attachments []model.Attachment, correlationKey string) {
	payload, err := p.responder.Invoke(ctx, body, attachments, correlationKey)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("send: responder call failed",
			zap.String("room_id", p.roomID),
			zap.String("correlation_key", correlationKey),
			zap.Error(err),
		)
		p.notifier.NotifyError(p.roomID, "agent could not be reached")
		return
	}
	if ctx.Err() != nil {
		return
	}
	p.replies.OnReply(payload, correlationKey)
}

// sleep waits d or until ctx is cancelled, using the session's timer set so
// room teardown cancels pending retries.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	done := make(chan struct{})
	t := p.timers.AfterFunc(d, func() { close(done) })
	if t == nil {
		return false
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		p.timers.Stop(t)
		return false
	}
}

// Wait blocks until in-flight effects finish; used by session teardown and
// tests.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
