//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package live

import (
	"context"

	"github.com/relayteam/roomsync/internal/model"
)

// Subscriber opens one per-room push subscription. Subscribe blocks until
// the channel acknowledges or fails; delivered events arrive on the two
// callbacks in network order.
type Subscriber interface {
	Subscribe(ctx context.Context, roomID string, onInsert, onUpdate func(model.Message)) (Subscription, error)
}

// Subscription is one live channel. Err yields at most one terminal channel
// error (disconnect, protocol failure); Close releases the network resource.
type Subscription interface {
	Err() <-chan error
	Close() error
}

// Visibility reports whether the user is currently looking at the room.
type Visibility interface {
	Visible() bool
	Changes() <-chan bool
}

// Sink is where delivered events land; in production it is the room's
// optimistic store.
type Sink interface {
	Upsert(model.Message)
}
