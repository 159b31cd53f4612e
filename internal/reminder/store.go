package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hearsay/pkg/logging"
)

// Reminder is a message scheduled to fire at a wall-clock time. It is owned
// by the Store from creation until it fires; nothing mutates it afterwards.
type Reminder struct {
	ID      string
	FireAt  time.Time
	Message string
}

// Store holds pending reminders behind a single mutex. It is created once at
// startup and lives for the process lifetime; pending reminders are never
// persisted, a crash loses them.
type Store struct {
	mu       sync.Mutex
	pending  []Reminder
	interval time.Duration
}

// NewStore creates an empty Store polling at the given interval. An interval
// of zero falls back to one second, the reference cadence.
func NewStore(interval time.Duration) *Store {
	if interval <= 0 {
		interval = time.Second
	}
	return &Store{interval: interval}
}

// Schedule inserts a reminder firing minutes from now and returns it. The
// caller is responsible for rejecting non-positive durations before calling.
func (s *Store) Schedule(minutes int, message string) Reminder {
	r := Reminder{
		ID:      uuid.New().String(),
		FireAt:  time.Now().Add(time.Duration(minutes) * time.Minute),
		Message: message,
	}
	s.mu.Lock()
	s.pending = append(s.pending, r)
	s.mu.Unlock()
	logging.Debug("reminder %s scheduled for %s: %s", r.ID, r.FireAt.Format(time.RFC3339), r.Message)
	return r
}

// PollDue atomically removes and returns every pending reminder with
// FireAt <= now. Safe to call concurrently with Schedule. A reminder is
// returned at most once; a second poll at the same instant yields nothing.
func (s *Store) PollDue(now time.Time) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Reminder
	kept := s.pending[:0]
	for _, r := range s.pending {
		if !r.FireAt.After(now) {
			due = append(due, r)
		} else {
			kept = append(kept, r)
		}
	}
	s.pending = kept
	return due
}

// Pending returns the number of reminders that have not fired yet.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Run polls for due reminders until ctx is cancelled, invoking announce for
// each one. One reminder's announcement failing (panicking) must not stop
// delivery of the others, so every call is isolated. The lock is never held
// across an announce call.
func (s *Store) Run(ctx context.Context, announce func(Reminder)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Debug("reminder loop stopped")
			return
		case now := <-ticker.C:
			for _, r := range s.PollDue(now) {
				s.announceOne(r, announce)
			}
		}
	}
}

func (s *Store) announceOne(r Reminder, announce func(Reminder)) {
	defer func() {
		if err := recover(); err != nil {
			logging.Error("reminder %s delivery failed: %v", r.ID, err)
		}
	}()
	logging.Info("reminder %s fired: %s", r.ID, r.Message)
	announce(r)
}
