// Package view derives the presentation-facing shape of a transcript:
// contiguous runs of messages from the same resolved sender.
package view

import (
	"sync"

	"github.com/relayteam/roomsync/internal/model"
)

// Group is one maximal run of consecutive messages sharing a sender. An
// empty SenderKey is the unattributed-agent bucket.
type Group struct {
	SenderKey  string
	AuthorKind model.AuthorKind
	Messages   model.MessageList
}

type snapshotter interface {
	Snapshot() (model.MessageList, uint64)
}

// Grouper recomputes groups from the store snapshot, memoized on the store
// revision so repeated reads between mutations are free.
type Grouper struct {
	mu     sync.Mutex
	source snapshotter
	rev    uint64
	cached []Group
	primed bool
}

func NewGrouper(source snapshotter) *Grouper {
	return &Grouper{source: source}
}

func (g *Grouper) Groups() []Group {
	msgs, rev := g.source.Snapshot()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.primed && rev == g.rev {
		return g.cached
	}
	g.cached = Partition(msgs)
	g.rev = rev
	g.primed = true
	return g.cached
}

// Partition splits an ordered message list into maximal same-sender runs.
// Pure: the input is assumed already filtered and sorted by the store.
func Partition(msgs model.MessageList) []Group {
	var groups []Group
	for _, m := range msgs {
		key := m.SenderKey()
		if n := len(groups); n > 0 && groups[n-1].SenderKey == key && groups[n-1].AuthorKind == m.AuthorKind {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, Group{
			SenderKey:  key,
			AuthorKind: m.AuthorKind,
			Messages:   model.MessageList{m},
		})
	}
	return groups
}
