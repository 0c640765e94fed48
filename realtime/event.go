// Package realtime fans out conversation events to live subscribers. The hub
// keeps per-conversation subscriber sets and the last known typing state per
// agent, so late joiners see who is mid-response. Transports (see ws.go) are
// thin adapters over the Subscriber interface.
package realtime

import "time"

// Event types published by the hub.
const (
	TypeTypingIndicator    = "typing_indicator"
	TypePartialResponse    = "partial_response"
	TypeAgentResponse      = "agent_response"
	TypeError              = "error"
	TypeConversationUpdate = "conversation_update"
	TypeHeartbeat          = "heartbeat"
	TypePong               = "pong"
)

// AgentUpdate summarizes one agent's contribution in a conversation_update
// event.
type AgentUpdate struct {
	AgentID  string `json:"agent_id"`
	Name     string `json:"name,omitempty"`
	Response string `json:"response,omitempty"`
}

// Event is the wire shape delivered to subscribers. Only the fields relevant
// to the Type are populated.
type Event struct {
	Type           string        `json:"type"`
	AgentID        string        `json:"agent_id,omitempty"`
	Content        string        `json:"content,omitempty"`
	MessageID      string        `json:"message_id,omitempty"`
	IsTyping       *bool         `json:"is_typing,omitempty"`
	IsComplete     bool          `json:"is_complete,omitempty"`
	Error          string        `json:"error,omitempty"`
	ConversationID string        `json:"conversation_id,omitempty"`
	Agents         []AgentUpdate `json:"agents,omitempty"`
	Timestamp      string        `json:"timestamp,omitempty"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func typingEvent(agentID string, typing bool) Event {
	return Event{
		Type:     TypeTypingIndicator,
		AgentID:  agentID,
		IsTyping: &typing,
	}
}
