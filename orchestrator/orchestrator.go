// Package orchestrator turns a question for one agent into a fully assembled
// inference call: persona prompt, conversational context, few-shot examples
// and model parameters, with retries and live event notifications around the
// upstream call.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/logging"
	"github.com/symposium-ai/symposium/memory"
	"github.com/symposium-ai/symposium/realtime"
)

// ErrNoValidResponses is returned by RespondAll when every agent failed.
var ErrNoValidResponses = errors.New("failed to get any valid responses from agents")

// groupChatEtiquette is appended to every persona prompt so agents behave in
// a multi-party setting.
const groupChatEtiquette = `

IMPORTANT INSTRUCTIONS FOR GROUP CHAT:
1. Keep your responses concise and to the point (2-3 paragraphs maximum).
2. Only respond to messages when you have a valuable perspective or can constructively challenge the previous point.
3. When responding to another agent, address them directly by name.
4. If an idea is complex, express it clearly but briefly - imagine this is a fast-moving group chat.
5. Focus on making one clear point rather than covering multiple angles.
`

// Thresholds for the two context-size guards: raw context characters before
// assembly, and estimated prompt tokens (4 chars per token) after assembly.
const (
	maxContextChars  = 4000
	maxPromptTokens  = 3500
	maxFewShotPairs  = 2
	truncatedTailMax = 1500
)

// Events receives side-channel notifications around an upstream call.
// *realtime.Hub satisfies it.
type Events interface {
	SetTyping(conversationID, agentID string, typing bool)
	PublishResponse(conversationID, agentID, content, messageID string)
	PublishError(conversationID, agentID, message string)
}

var _ Events = (*realtime.Hub)(nil)

type noopEvents struct{}

func (noopEvents) SetTyping(string, string, bool)                 {}
func (noopEvents) PublishResponse(string, string, string, string) {}
func (noopEvents) PublishError(string, string, string)            {}

// Request asks one agent to answer one question.
type Request struct {
	AgentID  string
	Question string
	// ConversationID scopes memory. Empty generates a fresh id.
	ConversationID string
	// IncludeContext pulls the agent's memory context into the prompt.
	IncludeContext bool
	// CustomContext, when non-nil, replaces the memory context entirely
	// (an empty string suppresses context).
	CustomContext *string
}

// Response is one agent's answer.
type Response struct {
	AgentID        string `json:"agent"`
	Text           string `json:"response"`
	Model          string `json:"model"`
	ConversationID string `json:"conversation_id"`
}

// Orchestrator coordinates prompt assembly, the upstream call and memory
// recording for agent responses.
type Orchestrator struct {
	completer inference.Completer
	registry  *agent.Registry
	prompts   agent.PromptSource
	memory    *memory.Store
	events    Events
	retry     inference.RetryPolicy
	logger    logging.Logger
	newID     func() string
}

// Options configure an Orchestrator.
type Options struct {
	// Events receives typing, response and error notifications. Defaults
	// to a no-op sink.
	Events Events
	// Retry governs upstream retries. Defaults to DefaultRetryPolicy.
	Retry  inference.RetryPolicy
	Logger logging.Logger
	// NewID overrides id generation, for deterministic tests.
	NewID func() string
}

// New creates an Orchestrator.
func New(completer inference.Completer, registry *agent.Registry, prompts agent.PromptSource, mem *memory.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Events: noopEvents{},
		Retry:  inference.DefaultRetryPolicy(),
		Logger: logging.NoOpLogger{},
		NewID:  uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Retry.Logger = opts.Logger
	return &Orchestrator{
		completer: completer,
		registry:  registry,
		prompts:   prompts,
		memory:    mem,
		events:    opts.Events,
		retry:     opts.Retry,
		logger:    opts.Logger,
		newID:     opts.NewID,
	}
}

// Respond answers a question as one agent. The upstream call is retried per
// the configured policy; on success the exchange is recorded in memory.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (*Response, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = o.newID()
	}
	messageID := o.newID()
	params := o.registry.Get(req.AgentID)

	o.events.SetTyping(conversationID, req.AgentID, true)
	defer o.events.SetTyping(conversationID, req.AgentID, false)

	messages := o.assemble(req, conversationID, params)
	o.logger.Debug("making inference request",
		"agent_id", req.AgentID, "conversation_id", conversationID, "messages", len(messages))

	completion, err := inference.Retry(ctx, o.retry, func(ctx context.Context) (*inference.Completion, error) {
		return o.completer.Complete(ctx, messages, inference.Params{
			Model:            params.Model,
			Temperature:      params.Temperature,
			TopP:             params.TopP,
			MaxTokens:        params.MaxTokens,
			FrequencyPenalty: params.FrequencyPenalty,
			PresencePenalty:  params.PresencePenalty,
		})
	})
	if err != nil {
		classified := inference.Classify(err)
		o.events.PublishError(conversationID, req.AgentID, classified.UserMessage())
		o.logger.Error("agent response failed",
			"agent_id", req.AgentID, "conversation_id", conversationID,
			"kind", classified.Kind.String(), "error", err)
		return nil, fmt.Errorf("agent %s: %w", req.AgentID, classified)
	}

	o.events.PublishResponse(conversationID, req.AgentID, completion.Text, messageID)
	o.memory.Record(conversationID, req.AgentID, req.Question, completion.Text)
	o.logger.Info("received agent response",
		"agent_id", req.AgentID, "conversation_id", conversationID, "chars", len(completion.Text))

	return &Response{
		AgentID:        req.AgentID,
		Text:           completion.Text,
		Model:          params.Model,
		ConversationID: conversationID,
	}, nil
}

// RespondAll queries the agents concurrently under one conversation id and
// returns the successful responses in completion order. Failed agents are
// logged and skipped; if every agent fails, ErrNoValidResponses is returned.
func (o *Orchestrator) RespondAll(ctx context.Context, agentIDs []string, question, conversationID string) ([]Response, error) {
	if conversationID == "" {
		conversationID = o.newID()
	}

	var wg sync.WaitGroup
	results := make(chan Response, len(agentIDs))
	for _, agentID := range agentIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := o.Respond(ctx, Request{
				AgentID:        id,
				Question:       question,
				ConversationID: conversationID,
				IncludeContext: true,
			})
			if err != nil {
				o.logger.Error("skipping failed agent",
					"agent_id", id, "conversation_id", conversationID, "error", err)
				return
			}
			results <- *resp
		}(agentID)
	}
	wg.Wait()
	close(results)

	responses := make([]Response, 0, len(agentIDs))
	for resp := range results {
		responses = append(responses, resp)
	}
	if len(responses) == 0 {
		return nil, ErrNoValidResponses
	}
	return responses, nil
}

// assemble builds the message array for one agent call.
func (o *Orchestrator) assemble(req Request, conversationID string, params agent.Params) []inference.Message {
	systemPrompt := o.prompts.Prompt(req.AgentID) + groupChatEtiquette

	var context string
	switch {
	case req.CustomContext != nil:
		context = *req.CustomContext
	case req.IncludeContext:
		context = o.memory.Context(conversationID, req.AgentID, true)
		if len(context) > maxContextChars {
			o.logger.Warn("context too long, truncating",
				"agent_id", req.AgentID, "chars", len(context))
			context = context[:1500] + "\n...\n[Context truncated for brevity]\n...\n" + context[len(context)-2500:]
		}
	}

	messages := []inference.Message{{Role: inference.RoleSystem, Content: systemPrompt}}
	if guidance := personaGuidance(params.PersonaStrength); guidance != "" {
		messages = append(messages, inference.Message{Role: inference.RoleSystem, Content: guidance})
	}
	if context != "" {
		messages = append(messages, inference.Message{Role: inference.RoleSystem, Content: context})
	}
	examples := o.registry.FewShot(req.AgentID)
	if len(examples) > maxFewShotPairs {
		examples = examples[:maxFewShotPairs]
	}
	for _, ex := range examples {
		messages = append(messages,
			inference.Message{Role: inference.RoleUser, Content: ex.Question},
			inference.Message{Role: inference.RoleAssistant, Content: ex.Response},
		)
	}
	messages = append(messages, inference.Message{Role: inference.RoleUser, Content: req.Question})

	return o.enforceBudget(req.AgentID, messages)
}

// enforceBudget keeps the estimated prompt size under the model's limit by
// shrinking the largest auxiliary system message (typically the context).
func (o *Orchestrator) enforceBudget(agentID string, messages []inference.Message) []inference.Message {
	totalChars := 0
	for _, msg := range messages {
		totalChars += len(msg.Content)
	}
	estimatedTokens := totalChars / 4
	if estimatedTokens <= maxPromptTokens {
		return messages
	}

	o.logger.Warn("prompt too large, reducing",
		"agent_id", agentID, "estimated_tokens", estimatedTokens)
	largest := -1
	for i := 1; i < len(messages); i++ {
		msg := messages[i]
		if msg.Role != inference.RoleSystem || len(msg.Content) <= 1000 {
			continue
		}
		if largest < 0 || len(msg.Content) > len(messages[largest].Content) {
			largest = i
		}
	}
	if largest >= 0 {
		content := messages[largest].Content
		keep := len(content) * 30 / 100
		if keep > truncatedTailMax {
			keep = truncatedTailMax
		}
		messages[largest].Content = "[Context truncated]...\n" + content[len(content)-keep:]
		o.logger.Info("truncated context message",
			"agent_id", agentID, "from", len(content), "to", len(messages[largest].Content))
	}
	return messages
}

// personaGuidance directs how strongly the agent should stay in character.
// A strength of 1.0 adds nothing.
func personaGuidance(strength float64) string {
	switch {
	case strength > 1.0:
		level := int((strength - 1.0) * 10)
		if level > 10 {
			level = 10
		}
		return fmt.Sprintf(`IMPORTANT: Embody this persona very strongly (level %d/10).
Closely adopt the specific language patterns, philosophical frameworks, and
communication style described. Your responses should be distinctively
recognizable as this persona.`, level)
	case strength < 1.0:
		level := int((1.0 - strength) * 10)
		if level > 10 {
			level = 10
		}
		return fmt.Sprintf(`Note: While maintaining the general expertise and perspective described,
speak with a more neutral and balanced tone (persona strength reduced by
level %d/10). Focus more on factual content than on stylistic
elements of the persona.`, level)
	default:
		return ""
	}
}
