package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/symposium-ai/symposium/logging"
)

// Subscriber receives events for one conversation. A Send error marks the
// subscriber dead and it is dropped on the next delivery pass.
type Subscriber interface {
	Send(event Event) error
}

// Hub routes events to the subscribers of each conversation. Safe for
// concurrent use.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[Subscriber]struct{}
	typing      map[string]map[string]bool
	logger      logging.Logger
	now         func() time.Time
	heartbeat   time.Duration
}

// HubOptions configure a Hub.
type HubOptions struct {
	Logger logging.Logger
	// HeartbeatInterval controls RunHeartbeat's period.
	HeartbeatInterval time.Duration
	// Now overrides the clock used for event timestamps.
	Now func() time.Time
}

// NewHub creates an empty hub.
func NewHub(optFns ...func(o *HubOptions)) *Hub {
	opts := HubOptions{
		Logger:            logging.NoOpLogger{},
		HeartbeatInterval: 30 * time.Second,
		Now:               time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Hub{
		subscribers: make(map[string]map[Subscriber]struct{}),
		typing:      make(map[string]map[string]bool),
		logger:      opts.Logger,
		now:         opts.Now,
		heartbeat:   opts.HeartbeatInterval,
	}
}

// Subscribe registers a subscriber for a conversation and replays the current
// typing state so the client can render in-flight agents immediately.
func (h *Hub) Subscribe(conversationID string, sub Subscriber) {
	h.mu.Lock()
	set, ok := h.subscribers[conversationID]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.subscribers[conversationID] = set
	}
	set[sub] = struct{}{}
	snapshot := make(map[string]bool, len(h.typing[conversationID]))
	for agentID, typing := range h.typing[conversationID] {
		snapshot[agentID] = typing
	}
	h.mu.Unlock()

	h.logger.Info("subscriber joined", "conversation_id", conversationID)
	for agentID, typing := range snapshot {
		if err := sub.Send(typingEvent(agentID, typing)); err != nil {
			h.Unsubscribe(conversationID, sub)
			return
		}
	}
}

// Unsubscribe removes a subscriber. When the last subscriber of a
// conversation leaves, the conversation's typing state is discarded.
func (h *Hub) Unsubscribe(conversationID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[conversationID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, conversationID)
		delete(h.typing, conversationID)
	}
}

// Forget discards the typing state of a conversation that has been deleted or
// evicted. Live subscribers are left to disconnect on their own.
func (h *Hub) Forget(conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.typing, conversationID)
}

// Publish delivers an event to every subscriber of the conversation, stamping
// it if unstamped. Subscribers whose Send fails are dropped.
func (h *Hub) Publish(conversationID string, event Event) {
	if event.Timestamp == "" {
		event.Timestamp = stamp(h.now())
	}

	h.mu.Lock()
	targets := make([]Subscriber, 0, len(h.subscribers[conversationID]))
	for sub := range h.subscribers[conversationID] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if err := sub.Send(event); err != nil {
			h.logger.Error("dropping subscriber", "conversation_id", conversationID, "error", err)
			h.Unsubscribe(conversationID, sub)
		}
	}
}

// SetTyping records an agent's typing state and broadcasts it, suppressing
// repeats of the current state.
func (h *Hub) SetTyping(conversationID, agentID string, typing bool) {
	h.mu.Lock()
	states, ok := h.typing[conversationID]
	if !ok {
		states = make(map[string]bool)
		h.typing[conversationID] = states
	}
	prev, seen := states[agentID]
	if seen && prev == typing {
		h.mu.Unlock()
		return
	}
	states[agentID] = typing
	h.mu.Unlock()

	h.logger.Debug("typing state changed", "conversation_id", conversationID, "agent_id", agentID, "is_typing", typing)
	h.Publish(conversationID, typingEvent(agentID, typing))
}

// PublishPartial broadcasts an in-progress chunk of an agent's response.
func (h *Hub) PublishPartial(conversationID, agentID, content, messageID string) {
	h.Publish(conversationID, Event{
		Type:      TypePartialResponse,
		AgentID:   agentID,
		Content:   content,
		MessageID: messageID,
	})
}

// PublishResponse broadcasts a completed agent response.
func (h *Hub) PublishResponse(conversationID, agentID, content, messageID string) {
	h.Publish(conversationID, Event{
		Type:       TypeAgentResponse,
		AgentID:    agentID,
		Content:    content,
		MessageID:  messageID,
		IsComplete: true,
	})
}

// PublishError broadcasts a failure attributed to one agent.
func (h *Hub) PublishError(conversationID, agentID, message string) {
	h.Publish(conversationID, Event{
		Type:    TypeError,
		AgentID: agentID,
		Error:   message,
	})
}

// PublishUpdate broadcasts a conversation-level summary of agent activity.
func (h *Hub) PublishUpdate(conversationID string, agents []AgentUpdate) {
	h.Publish(conversationID, Event{
		Type:           TypeConversationUpdate,
		ConversationID: conversationID,
		Agents:         agents,
	})
}

// RunHeartbeat broadcasts a heartbeat to every active conversation on the
// configured interval until ctx is done. Dead subscribers are pruned as a
// side effect of delivery.
func (h *Hub) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			ids := make([]string, 0, len(h.subscribers))
			for id := range h.subscribers {
				ids = append(ids, id)
			}
			h.mu.Unlock()
			for _, id := range ids {
				h.Publish(id, Event{Type: TypeHeartbeat})
			}
		}
	}
}
