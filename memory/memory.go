// Package memory implements the per-conversation, per-agent exchange store.
// It records (question, response) pairs as they happen and assembles them
// into persona-styled context blocks under each agent's memory depth.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/symposium-ai/symposium/agent"
)

// ParamSource resolves an agent id to its parameters (memory depth, archetype).
type ParamSource interface {
	Get(id string) agent.Params
}

// Exchange is one recorded question/response pair produced by an agent inside
// a conversation. Immutable after creation.
type Exchange struct {
	Timestamp time.Time
	Question  string
	Response  string

	// seq is the conversation-wide recording order, the tie-break when
	// timestamps collide.
	seq uint64
}

// Store holds bounded exchange history keyed by (conversation, agent). All
// methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	params ParamSource
	// conversationID -> agentID -> exchanges in insertion order
	conversations map[string]map[string][]Exchange
	// conversationID -> next sequence number
	seqs map[string]uint64
	now  func() time.Time
}

// Options configure a Store.
type Options struct {
	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// NewStore creates an empty exchange store.
func NewStore(params ParamSource, optFns ...func(o *Options)) *Store {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		params:        params,
		conversations: make(map[string]map[string][]Exchange),
		seqs:          make(map[string]uint64),
		now:           opts.Now,
	}
}

// Record appends a timestamped exchange, creating containers lazily. It never
// fails.
func (s *Store) Record(conversationID, agentID, question, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agents, ok := s.conversations[conversationID]
	if !ok {
		agents = make(map[string][]Exchange)
		s.conversations[conversationID] = agents
	}
	seq := s.seqs[conversationID]
	s.seqs[conversationID] = seq + 1
	agents[agentID] = append(agents[agentID], Exchange{
		Timestamp: s.now(),
		Question:  question,
		Response:  response,
		seq:       seq,
	})
}

// Clear removes all stored exchanges for the conversation. Unknown ids are a
// no-op, not an error.
func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	delete(s.seqs, conversationID)
}

// taggedExchange pairs an exchange with its originating agent for rendering.
type taggedExchange struct {
	agentID  string
	exchange Exchange
}

// Context builds a chronologically ordered narrative of relevant exchanges:
// the agent's own most recent exchanges up to its memory depth, plus (when
// includeOthers is set) the most recent 2x-depth exchanges of the other
// agents, merged and re-sorted oldest first to reconstruct reading order.
// The rendered block is wrapped in the agent's archetype template. Unknown
// conversations yield an empty string.
func (s *Store) Context(conversationID, agentID string, includeOthers bool) string {
	s.mu.RLock()
	agents, ok := s.conversations[conversationID]
	if !ok {
		s.mu.RUnlock()
		return ""
	}

	params := s.params.Get(agentID)
	depth := params.MemoryDepth

	var selected []taggedExchange
	selected = append(selected, mostRecent(agentID, agents[agentID], depth)...)

	if includeOthers {
		var others []taggedExchange
		for other, exchanges := range agents {
			if other == agentID {
				continue
			}
			for _, ex := range exchanges {
				others = append(others, taggedExchange{agentID: other, exchange: ex})
			}
		}
		sortRecentFirst(others)
		if len(others) > 2*depth {
			others = others[:2*depth]
		}
		selected = append(selected, others...)
	}
	s.mu.RUnlock()

	// Re-sort ascending so the narrative reads oldest to newest. Recording
	// order breaks timestamp ties so the render is deterministic.
	sort.SliceStable(selected, func(i, j int) bool {
		return beforeByRecording(selected[i].exchange, selected[j].exchange)
	})

	parts := make([]string, 0, len(selected))
	for _, t := range selected {
		parts = append(parts, agent.DisplayName(t.agentID)+": "+t.exchange.Response)
	}

	return RenderTemplate(params.Archetype, strings.Join(parts, "\n\n"))
}

// mostRecent returns the agent's exchanges most-recent-first, truncated to depth.
func mostRecent(agentID string, exchanges []Exchange, depth int) []taggedExchange {
	tagged := make([]taggedExchange, 0, len(exchanges))
	for _, ex := range exchanges {
		tagged = append(tagged, taggedExchange{agentID: agentID, exchange: ex})
	}
	sortRecentFirst(tagged)
	if len(tagged) > depth {
		tagged = tagged[:depth]
	}
	return tagged
}

func sortRecentFirst(tagged []taggedExchange) {
	sort.SliceStable(tagged, func(i, j int) bool {
		return beforeByRecording(tagged[j].exchange, tagged[i].exchange)
	})
}

// beforeByRecording orders by timestamp, then by conversation-wide recording
// order on ties.
func beforeByRecording(a, b Exchange) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.seq < b.seq
}
