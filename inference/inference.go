// Package inference defines the normalized contract between the orchestration
// layer and language-model backends. A Completer turns an ordered message
// sequence plus generation parameters into generated text; concrete backends
// live in the huggingface, openai and anthropic subpackages.
//
// The package also owns the upstream resilience layer: a closed error
// taxonomy (Classify) and an exponential-backoff retry wrapper (Retry) that
// together decide which upstream failures are transient.
package inference

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a prompt sequence.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Params carries the backend-agnostic generation parameters. Backends
// translate these into their native parameter names and silently ignore
// fields they cannot express.
type Params struct {
	Model            string
	Temperature      float64
	TopP             float64
	MaxTokens        int
	FrequencyPenalty float64
	PresencePenalty  float64
}

// Completion is the normalized result of a successful model call.
type Completion struct {
	Text  string
	Model string
}

// Completer is the minimal interface a language-model backend must satisfy.
// Implementations perform exactly one network call per invocation and have no
// side effects beyond it; memory and event mutation belong to the caller.
type Completer interface {
	Complete(ctx context.Context, messages []Message, params Params) (*Completion, error)
}

// CompleterFunc adapts an ordinary function to the Completer interface.
type CompleterFunc func(ctx context.Context, messages []Message, params Params) (*Completion, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, messages []Message, params Params) (*Completion, error) {
	return f(ctx, messages, params)
}

// MergeSystemMessages combines all system-role messages into a single system
// message positioned first, preserving the relative order of everything else.
// Some backends accept only one system message; merging up front keeps the
// prompt shape identical across backends.
func MergeSystemMessages(messages []Message) []Message {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	if len(system) == 0 {
		return rest
	}
	merged := make([]Message, 0, len(rest)+1)
	merged = append(merged, Message{Role: RoleSystem, Content: joinBlocks(system)})
	return append(merged, rest...)
}

func joinBlocks(blocks []string) string {
	out := ""
	for i, b := range blocks {
		if i > 0 {
			out += "\n\n"
		}
		out += b
	}
	return out
}
