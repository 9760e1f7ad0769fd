// Package timeset owns every scheduled timer of one room session so that
// closing the session cancels them as a unit and none outlive their room.
package timeset

import (
	"sync"
	"time"
)

type Set struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func New() *Set {
	return &Set{
		timers: make(map[*time.Timer]struct{}),
	}
}

// AfterFunc schedules fn after d. The callback is skipped if the set was
// closed between scheduling and firing. Returns nil when the set is closed.
func (s *Set) AfterFunc(d time.Duration, fn func()) *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, t)
		s.mu.Unlock()
		fn()
	})
	s.timers[t] = struct{}{}
	return t
}

// Stop cancels one timer previously returned by AfterFunc.
func (s *Set) Stop(t *time.Timer) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, t)
	t.Stop()
}

// Close cancels every pending timer and rejects new ones.
func (s *Set) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
