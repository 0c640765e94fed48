// Package conversation implements the transcript store: the ordered record of
// what has been said in each conversation. The transcript is the single
// source of truth for prompt construction across seminar rounds.
//
// The store owns its own concurrency discipline and is injected into the
// orchestrator and scheduler rather than accessed as ambient state.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a conversation id has no transcript.
var ErrNotFound = errors.New("conversation not found")

// Turn is one transcript entry. Agent carries the originating agent id for
// assistant turns and is empty for user and system turns.
type Turn struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
	Agent   string `json:"agent,omitempty"`
}

type record struct {
	turns   []Turn
	touched time.Time
}

// Store keeps transcripts keyed by conversation id. Conversations are created
// on first use and live for the process lifetime unless deleted or evicted by
// the optional idle sweep. Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*record
	idleTimeout   time.Duration
	sweepInterval time.Duration
	onEvict       func(conversationID string)
	now           func() time.Time
}

// Options configure a Store.
type Options struct {
	// IdleTimeout evicts conversations untouched for longer than this.
	// Zero disables eviction.
	IdleTimeout time.Duration
	// SweepInterval controls how often the eviction sweep runs.
	SweepInterval time.Duration
	// OnEvict is called for each evicted conversation id, letting callers
	// release paired state (e.g. the memory store entry).
	OnEvict func(conversationID string)
	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// NewStore creates an empty transcript store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		SweepInterval: time.Minute,
		Now:           time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		conversations: make(map[string]*record),
		idleTimeout:   opts.IdleTimeout,
		sweepInterval: opts.SweepInterval,
		onEvict:       opts.OnEvict,
		now:           opts.Now,
	}
}

// NewID generates a fresh opaque conversation id.
func NewID() string { return uuid.NewString() }

// Create ensures a transcript exists for the id, returning the id (generated
// when empty).
func (s *Store) Create(id string) string {
	if id == "" {
		id = NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(id)
	return id
}

// Append adds turns to the conversation's transcript, creating it lazily.
func (s *Store) Append(id string, turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getLocked(id)
	rec.turns = append(rec.turns, turns...)
	rec.touched = s.now()
}

// History returns a defensive copy of the transcript. Unknown conversations
// return ErrNotFound.
func (s *Store) History(id string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.touched = s.now()
	out := make([]Turn, len(rec.turns))
	copy(out, rec.turns)
	return out, nil
}

// Exists reports whether a transcript is present for the id.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conversations[id]
	return ok
}

// Delete removes the transcript. Idempotent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}

// Sweep evicts conversations idle for longer than the configured timeout and
// returns the evicted ids. A zero timeout makes it a no-op.
func (s *Store) Sweep() []string {
	if s.idleTimeout <= 0 {
		return nil
	}
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var evicted []string
	for id, rec := range s.conversations {
		if rec.touched.Before(cutoff) {
			delete(s.conversations, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, id := range evicted {
			s.onEvict(id)
		}
	}
	return evicted
}

// RunSweeper runs the eviction sweep on the configured interval until ctx is
// done. Callers with eviction disabled need not start it.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) getLocked(id string) *record {
	rec, ok := s.conversations[id]
	if !ok {
		rec = &record{touched: s.now()}
		s.conversations[id] = rec
	}
	return rec
}
