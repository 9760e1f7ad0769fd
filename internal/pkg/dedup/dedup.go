// Package dedup suppresses double-processing of push-channel events. The
// channel is at-least-once: reconnect replays and overlapping code paths can
// deliver the same (record, event) pair more than once within a short window.
package dedup

import (
	"sync"
	"time"

	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/pkg/timeset"
)

type Key struct {
	RecordID string
	Event    model.EventKind
}

// Cache remembers recently processed keys for a fixed TTL. Expiry is driven
// by timers scheduled on the session's timer set, not checked on read, so a
// burst of duplicates inside the window is fully absorbed.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Key]struct{}
	timers  *timeset.Set
	closed  bool
}

func New(ttl time.Duration, timers *timeset.Set) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[Key]struct{}),
		timers:  timers,
	}
}

func (c *Cache) Has(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *Cache) Remember(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = struct{}{}
	c.timers.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	})
}

// Seen is the combined check-and-remember used on the delivery path: returns
// true when the key was already processed within the TTL window.
func (c *Cache) Seen(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return true
	}
	if c.closed {
		return false
	}
	c.entries[key] = struct{}{}
	c.timers.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	})
	return false
}

// Close drops all entries. Expiry timers are cancelled by the owning
// session's timer set teardown.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = make(map[Key]struct{})
}
