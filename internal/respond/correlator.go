// Package respond merges the external responder's asynchronous replies into
// the room transcript as agent-authored messages.
package respond

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/metrics"
	"github.com/relayteam/roomsync/internal/model"
)

type Sink interface {
	Upsert(model.Message)
}

type Notifier interface {
	NotifyError(roomID, text string)
}

type Correlator struct {
	roomID   string
	store    Sink
	notifier Notifier
	logger   *zap.Logger
}

func NewCorrelator(roomID string, store Sink, notifier Notifier, logger *zap.Logger) *Correlator {
	return &Correlator{
		roomID:   roomID,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// OnReply merges one responder payload. The reply is a new message from a
// different author, so it gets its own correlation key; originTxID is the
// correlation key of the send that triggered it, kept as a causal reference
// for logging only.
//
// An invalid or missing agent identity degrades to an unattributed agent
// message: an unattributable reply is still conversational content.
func (c *Correlator) OnReply(payload model.ReplyPayload, originTxID string) {
	if payload.Error != "" {
		c.logger.Warn("respond: responder returned failure",
			zap.String("room_id", c.roomID),
			zap.String("origin_tx", originTxID),
			zap.String("responder_error", payload.Error),
		)
		c.notifier.NotifyError(c.roomID, "agent failed to reply: "+payload.Error)
		return
	}

	agentID := payload.AgentID
	attribution := "attributed"
	if _, err := uuid.Parse(agentID); err != nil {
		if agentID != "" {
			c.logger.Debug("respond: unparseable agent identity",
				zap.String("room_id", c.roomID),
				zap.String("origin_tx", originTxID),
				zap.String("agent_id", agentID),
			)
		}
		agentID = ""
		attribution = "unattributed"
	}

	msg, err := model.NewAgentMessage(c.roomID, agentID, uuid.NewString(), payload.Message)
	if err != nil {
		c.logger.Warn("respond: dropping malformed reply",
			zap.String("room_id", c.roomID),
			zap.String("origin_tx", originTxID),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("respond: merging agent reply",
		zap.String("room_id", c.roomID),
		zap.String("origin_tx", originTxID),
		zap.String("agent_id", agentID),
	)
	c.store.Upsert(msg)
	metrics.RepliesMerged.WithLabelValues(attribution).Inc()
}
