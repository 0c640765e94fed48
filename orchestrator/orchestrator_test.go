package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/memory"
)

type capturingCompleter struct {
	mu       sync.Mutex
	calls    [][]inference.Message
	params   []inference.Params
	response string
	err      error
	perAgent map[string]error
}

func (c *capturingCompleter) Complete(_ context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, messages)
	c.params = append(c.params, params)
	if c.err != nil {
		return nil, c.err
	}
	text := c.response
	if text == "" {
		text = "a considered reply"
	}
	return &inference.Completion{Text: text, Model: params.Model}, nil
}

type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (e *eventLog) SetTyping(conversationID, agentID string, typing bool) {
	e.add("typing:" + agentID + ":" + boolStr(typing))
}

func (e *eventLog) PublishResponse(conversationID, agentID, content, messageID string) {
	e.add("response:" + agentID)
}

func (e *eventLog) PublishError(conversationID, agentID, message string) {
	e.add("error:" + agentID)
}

func (e *eventLog) add(entry string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func newTestOrchestrator(t *testing.T, completer inference.Completer, optFns ...func(o *Options)) (*Orchestrator, *memory.Store) {
	t.Helper()
	registry, err := agent.NewRegistry()
	require.NoError(t, err)
	mem := memory.NewStore(registry)
	prompts := agent.StaticPrompts{
		"socrates":  "You are Socrates, the classical Greek philosopher.",
		"nietzsche": "You are Friedrich Nietzsche.",
	}
	base := []func(o *Options){func(o *Options) {
		o.Retry = inference.RetryPolicy{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Base: 2}
	}}
	orch := New(completer, registry, prompts, mem, append(base, optFns...)...)
	return orch, mem
}

func TestRespondAssemblesMessages(t *testing.T) {
	completer := &capturingCompleter{response: "The unexamined life is not worth living."}
	orch, _ := newTestOrchestrator(t, completer)

	resp, err := orch.Respond(context.Background(), Request{
		AgentID:  "socrates",
		Question: "What is virtue?",
	})
	require.NoError(t, err)
	require.Equal(t, "socrates", resp.AgentID)
	require.Equal(t, "The unexamined life is not worth living.", resp.Text)
	require.NotEmpty(t, resp.ConversationID)

	require.Len(t, completer.calls, 1)
	messages := completer.calls[0]

	require.Equal(t, inference.RoleSystem, messages[0].Role)
	require.Contains(t, messages[0].Content, "You are Socrates")
	require.Contains(t, messages[0].Content, "IMPORTANT INSTRUCTIONS FOR GROUP CHAT")

	last := messages[len(messages)-1]
	require.Equal(t, inference.RoleUser, last.Role)
	require.Equal(t, "What is virtue?", last.Content)
}

func TestRespondUsesFallbackPrompt(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	_, err := orch.Respond(context.Background(), Request{AgentID: "einstein", Question: "Why?"})
	require.NoError(t, err)
	require.Contains(t, completer.calls[0][0].Content, agent.FallbackPrompt)
}

func TestRespondFewShotLimitedToTwo(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	// socrates ships with few-shot examples in the built-in registry.
	_, err := orch.Respond(context.Background(), Request{AgentID: "socrates", Question: "What is justice?"})
	require.NoError(t, err)

	pairs := 0
	for _, msg := range completer.calls[0] {
		if msg.Role == inference.RoleAssistant {
			pairs++
		}
	}
	require.LessOrEqual(t, pairs, 2)
}

func TestRespondPersonaStrengthGuidance(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	// nietzsche's built-in persona strength is above 1.0.
	_, err := orch.Respond(context.Background(), Request{AgentID: "nietzsche", Question: "What is power?"})
	require.NoError(t, err)

	found := false
	for _, msg := range completer.calls[0] {
		if strings.Contains(msg.Content, "Embody this persona very strongly") {
			found = true
		}
	}
	require.True(t, found)
}

func TestPersonaGuidanceLevels(t *testing.T) {
	require.Contains(t, personaGuidance(1.5), "Embody this persona very strongly (level 5/10)")
	require.Contains(t, personaGuidance(0.7), "level 3/10")
	require.Contains(t, personaGuidance(0.7), "neutral and balanced tone")
	require.Equal(t, "", personaGuidance(1.0))
	require.Contains(t, personaGuidance(2.5), "level 10/10")
}

func TestRespondNoGuidanceAtNeutralStrength(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	// einstein uses the defaults, strength 1.0.
	_, err := orch.Respond(context.Background(), Request{AgentID: "einstein", Question: "Why?"})
	require.NoError(t, err)

	for _, msg := range completer.calls[0] {
		require.NotContains(t, msg.Content, "persona strength")
		require.NotContains(t, msg.Content, "Embody this persona")
	}
}

func TestRespondCustomContextOverridesMemory(t *testing.T) {
	completer := &capturingCompleter{}
	orch, mem := newTestOrchestrator(t, completer)
	mem.Record("c1", "socrates", "earlier question", "earlier answer")

	custom := "Previous conversation:\n\nUser: hello"
	_, err := orch.Respond(context.Background(), Request{
		AgentID:        "socrates",
		Question:       "Continue.",
		ConversationID: "c1",
		IncludeContext: true,
		CustomContext:  &custom,
	})
	require.NoError(t, err)

	var sawCustom, sawMemory bool
	for _, msg := range completer.calls[0] {
		if strings.Contains(msg.Content, "Previous conversation:") {
			sawCustom = true
		}
		if strings.Contains(msg.Content, "earlier answer") {
			sawMemory = true
		}
	}
	require.True(t, sawCustom)
	require.False(t, sawMemory)
}

func TestRespondEmptyCustomContextSuppressesContext(t *testing.T) {
	completer := &capturingCompleter{}
	orch, mem := newTestOrchestrator(t, completer)
	mem.Record("c1", "socrates", "earlier question", "earlier answer")

	empty := ""
	_, err := orch.Respond(context.Background(), Request{
		AgentID:        "socrates",
		Question:       "Continue.",
		ConversationID: "c1",
		IncludeContext: true,
		CustomContext:  &empty,
	})
	require.NoError(t, err)

	for _, msg := range completer.calls[0] {
		require.NotContains(t, msg.Content, "earlier answer")
	}
}

func TestRespondTruncatesOversizedMemoryContext(t *testing.T) {
	completer := &capturingCompleter{}
	orch, mem := newTestOrchestrator(t, completer)
	mem.Record("c1", "socrates", "q", strings.Repeat("x", 6000))

	_, err := orch.Respond(context.Background(), Request{
		AgentID:        "socrates",
		Question:       "Continue.",
		ConversationID: "c1",
		IncludeContext: true,
	})
	require.NoError(t, err)

	found := false
	for _, msg := range completer.calls[0] {
		if strings.Contains(msg.Content, "[Context truncated for brevity]") {
			found = true
		}
	}
	require.True(t, found)
}

func TestRespondEnforcesTokenBudget(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	huge := strings.Repeat("y", 20000)
	_, err := orch.Respond(context.Background(), Request{
		AgentID:       "socrates",
		Question:      "Continue.",
		CustomContext: &huge,
	})
	require.NoError(t, err)

	var truncated string
	for _, msg := range completer.calls[0] {
		if strings.HasPrefix(msg.Content, "[Context truncated]...") {
			truncated = msg.Content
		}
	}
	require.NotEmpty(t, truncated)
	// Tail capped at 1500 chars plus the marker line.
	require.LessOrEqual(t, len(truncated), 1500+len("[Context truncated]...\n"))
}

func TestEnforceBudgetShrinksLargestAuxiliaryMessage(t *testing.T) {
	completer := &capturingCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	smaller := strings.Repeat("s", 1_200)
	larger := strings.Repeat("L", 13_000)
	messages := orch.enforceBudget("socrates", []inference.Message{
		{Role: inference.RoleSystem, Content: "persona"},
		{Role: inference.RoleSystem, Content: smaller},
		{Role: inference.RoleSystem, Content: larger},
		{Role: inference.RoleUser, Content: "question"},
	})

	require.Equal(t, smaller, messages[1].Content)
	require.True(t, strings.HasPrefix(messages[2].Content, "[Context truncated]...\n"))
	require.Len(t, messages[2].Content, len("[Context truncated]...\n")+1500)
}

func TestRespondRecordsExchange(t *testing.T) {
	completer := &capturingCompleter{response: "recorded reply"}
	orch, mem := newTestOrchestrator(t, completer)

	resp, err := orch.Respond(context.Background(), Request{
		AgentID:        "socrates",
		Question:       "What is memory?",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	require.Equal(t, "recorded reply", resp.Text)

	ctx := mem.Context("c1", "socrates", false)
	require.Contains(t, ctx, "recorded reply")
}

func TestRespondEmitsEvents(t *testing.T) {
	completer := &capturingCompleter{}
	events := &eventLog{}
	orch, _ := newTestOrchestrator(t, completer, func(o *Options) { o.Events = events })

	_, err := orch.Respond(context.Background(), Request{AgentID: "socrates", Question: "Hello?"})
	require.NoError(t, err)

	require.Equal(t, []string{"typing:socrates:true", "response:socrates", "typing:socrates:false"}, events.entries)
}

func TestRespondErrorEmitsErrorEvent(t *testing.T) {
	completer := &capturingCompleter{err: errors.New("authentication failed: bad api key")}
	events := &eventLog{}
	orch, _ := newTestOrchestrator(t, completer, func(o *Options) { o.Events = events })

	_, err := orch.Respond(context.Background(), Request{AgentID: "socrates", Question: "Hello?"})
	require.Error(t, err)
	require.Equal(t, inference.KindAuthentication, inference.KindOf(err))
	require.Equal(t, []string{"typing:socrates:true", "error:socrates", "typing:socrates:false"}, events.entries)
}

func TestRespondAllCollectsSuccesses(t *testing.T) {
	completer := &perAgentCompleter{fail: map[string]bool{"nietzsche": true}}
	orch, _ := newTestOrchestrator(t, completer)

	responses, err := orch.RespondAll(context.Background(), []string{"socrates", "nietzsche", "einstein"}, "What is truth?", "c1")
	require.NoError(t, err)
	require.Len(t, responses, 2)
	for _, resp := range responses {
		require.NotEqual(t, "nietzsche", resp.AgentID)
		require.Equal(t, "c1", resp.ConversationID)
	}
}

func TestRespondAllAllFailed(t *testing.T) {
	completer := &capturingCompleter{err: errors.New("authentication failed")}
	orch, _ := newTestOrchestrator(t, completer)

	_, err := orch.RespondAll(context.Background(), []string{"socrates", "nietzsche"}, "What is truth?", "")
	require.ErrorIs(t, err, ErrNoValidResponses)
}

// perAgentCompleter fails for selected agents, keyed off the persona text in
// the first system message.
type perAgentCompleter struct {
	mu   sync.Mutex
	fail map[string]bool
}

func (c *perAgentCompleter) Complete(_ context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.fail {
		if strings.Contains(strings.ToLower(messages[0].Content), strings.ReplaceAll(id, "_", " ")) {
			return nil, errors.New("authentication failed: bad api key")
		}
	}
	return &inference.Completion{Text: "fine", Model: params.Model}, nil
}
