package match

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler owns the process-wide registry of pending auto-end timers,
// keyed by match id. All map access is serialized, and a fired timer
// re-checks that it is still the registered entry before running its
// callback, so a Cancel that wins the race silences the callback entirely.
type Scheduler struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*schedulerEntry
}

type schedulerEntry struct {
	timer    *time.Timer
	deadline time.Time
	fn       func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{entries: make(map[uuid.UUID]*schedulerEntry)}
}

// Schedule arms a timer that runs fn after delay. Any previously scheduled
// timer for the same match is cancelled first.
func (s *Scheduler) Schedule(matchID uuid.UUID, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[matchID]; ok {
		old.timer.Stop()
		delete(s.entries, matchID)
	}

	e := &schedulerEntry{deadline: time.Now().Add(delay), fn: fn}
	e.timer = time.AfterFunc(delay, func() { s.fire(matchID, e) })
	s.entries[matchID] = e
}

// Cancel stops and removes the pending timer for matchID. It reports whether
// a live timer was actually cancelled.
func (s *Scheduler) Cancel(matchID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[matchID]
	if !ok {
		return false
	}
	delete(s.entries, matchID)
	return e.timer.Stop()
}

// Extend pushes the pending deadline for matchID forward by d, keeping the
// original callback. It reports whether a pending timer existed.
func (s *Scheduler) Extend(matchID uuid.UUID, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.entries[matchID]
	if !ok {
		return false
	}
	if !old.timer.Stop() {
		// Already fired; the fire path owns cleanup.
		return false
	}

	e := &schedulerEntry{deadline: old.deadline.Add(d), fn: old.fn}
	e.timer = time.AfterFunc(time.Until(e.deadline), func() { s.fire(matchID, e) })
	s.entries[matchID] = e
	return true
}

// Pending reports whether a timer is currently registered for matchID.
func (s *Scheduler) Pending(matchID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[matchID]
	return ok
}

// fire runs the callback of e unless e was superseded or cancelled between
// the timer firing and the registry lock being taken.
func (s *Scheduler) fire(matchID uuid.UUID, e *schedulerEntry) {
	s.mu.Lock()
	current, ok := s.entries[matchID]
	if !ok || current != e {
		s.mu.Unlock()
		return
	}
	delete(s.entries, matchID)
	s.mu.Unlock()

	e.fn()
}
