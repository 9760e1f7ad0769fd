// Package store holds a room's in-memory transcript. Every producer of
// message data (the send pipeline, the live channel, the responder
// correlator) goes through Upsert; nothing mutates the collection directly.
package store

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/metrics"
	"github.com/relayteam/roomsync/internal/model"
)

type record struct {
	msg model.Message
	seq uint64
}

type Store struct {
	mu       sync.Mutex
	roomID   string
	records  []record
	nextSeq  uint64
	revision uint64
	onChange func()
	logger   *zap.Logger
}

func New(roomID string, logger *zap.Logger) *Store {
	return &Store{
		roomID: roomID,
		logger: logger,
	}
}

// OnChange registers a single callback invoked after every structural change,
// outside the store lock. The view-model uses it to recompute groups.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Upsert reconciles one incoming message into the transcript. It never
// returns an error and never panics: channel delivery must not be able to
// crash the transcript, so malformed input is dropped with a diagnostic.
//
// Reconciliation order: correlation-key merge (durable echo catching up to
// an optimistic record), then id match (live UPDATE), then insert. A message
// without a correlation key never correlation-matches; only locally
// originated sends carry one.
func (s *Store) Upsert(incoming model.Message) {
	if !incoming.Displayable() {
		s.logger.Debug("store: dropping non-displayable record",
			zap.String("room_id", s.roomID),
			zap.String("id", incoming.ID),
		)
		metrics.DroppedRecords.WithLabelValues("blank").Inc()
		return
	}
	if err := incoming.Validate(); err != nil {
		s.logger.Warn("store: dropping malformed record",
			zap.String("room_id", s.roomID),
			zap.String("id", incoming.ID),
			zap.Error(err),
		)
		metrics.DroppedRecords.WithLabelValues("invalid_shape").Inc()
		return
	}

	s.mu.Lock()
	changed := s.apply(incoming)
	var notify func()
	if changed {
		s.revision++
		notify = s.onChange
	}
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (s *Store) apply(incoming model.Message) bool {
	if incoming.CorrelationKey != "" {
		if i := s.indexByCorrelationKey(incoming.CorrelationKey); i >= 0 {
			s.merge(i, incoming)
			s.resort()
			return true
		}
	}
	if incoming.ID != "" {
		if i := s.indexByID(incoming.ID); i >= 0 {
			incoming.Attachments = mergeAttachments(s.records[i].msg.Attachments, incoming.Attachments)
			s.records[i].msg = incoming
			s.resort()
			return true
		}
	}

	s.records = append(s.records, record{msg: incoming, seq: s.nextSeq})
	s.nextSeq++
	s.resort()
	return true
}

// merge applies the "echo catches up to optimistic" rules: the optimistic
// timestamp wins when present, the store-assigned id is adopted, and the
// pending flag follows the incoming record.
func (s *Store) merge(i int, incoming model.Message) {
	existing := &s.records[i].msg
	if existing.CreatedAt.IsZero() {
		existing.CreatedAt = incoming.CreatedAt
	}
	if incoming.ID != "" {
		existing.ID = incoming.ID
	}
	existing.Pending = incoming.Pending
	existing.Body = incoming.Body
	existing.Attachments = mergeAttachments(existing.Attachments, incoming.Attachments)
}

func mergeAttachments(existing, incoming []model.Attachment) []model.Attachment {
	if len(incoming) > 0 {
		return incoming
	}
	return existing
}

func (s *Store) indexByCorrelationKey(key string) int {
	for i := range s.records {
		if s.records[i].msg.CorrelationKey == key {
			return i
		}
	}
	return -1
}

func (s *Store) indexByID(id string) int {
	for i := range s.records {
		if s.records[i].msg.ID == id {
			return i
		}
	}
	return -1
}

// resort re-imposes (CreatedAt, insertion order), so near-simultaneous
// messages never swap places between snapshots.
func (s *Store) resort() {
	sort.SliceStable(s.records, func(i, j int) bool {
		a, b := &s.records[i], &s.records[j]
		if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
			return a.msg.CreatedAt.Before(b.msg.CreatedAt)
		}
		return a.seq < b.seq
	})
}

// Snapshot returns a copy of the ordered transcript and the revision that
// produced it. The revision increments on every structural change.
func (s *Store) Snapshot() (model.MessageList, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.MessageList, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].msg
	}
	return out, s.revision
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
