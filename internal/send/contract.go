//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package send

import (
	"context"
	"errors"

	"github.com/relayteam/roomsync/internal/model"
)

// ErrUnauthorized marks authentication/authorization failures from a
// collaborator. They fail the one send attempt immediately: retrying an
// unauthorized call cannot succeed.
var ErrUnauthorized = errors.New("unauthorized")

// DurableWriter persists one message and returns the durable echo carrying
// the store-assigned id and the correlation key it was given.
type DurableWriter interface {
	Write(ctx context.Context, msg model.Message) (model.Message, error)
}

// Responder invokes the external AI responder for one send.
type Responder interface {
	Invoke(ctx context.Context, body string, attachments []model.Attachment, correlationKey string) (model.ReplyPayload, error)
}

// Notifier is the side channel for user-visible failures; sends never
// surface errors as return values.
type Notifier interface {
	NotifyError(roomID, text string)
}

// ReplySink receives successful responder payloads together with the
// originating send's transaction id.
type ReplySink interface {
	OnReply(payload model.ReplyPayload, originTxID string)
}
