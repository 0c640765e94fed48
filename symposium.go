// Package symposium provides a high-level façade over the seminar machinery
// (agents, memory, transcripts, real-time events and round scheduling).
// Most applications interact with this package by:
//  1. Creating a Symposium via New() with a model backend (huggingface,
//     openai or anthropic gateway, or any inference.Completer)
//  2. Running seminars (Seminar) and continuations (Continue), or querying a
//     single agent directly (Respond)
//  3. Serving the results over the server package, which consumes the same
//     components
//
// All defaults are safe for local development: built-in agent roster,
// in-memory stores and a no-op logger.
package symposium

import (
	"context"
	"fmt"
	"time"

	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/conversation"
	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/logging"
	"github.com/symposium-ai/symposium/memory"
	"github.com/symposium-ai/symposium/orchestrator"
	"github.com/symposium-ai/symposium/realtime"
	"github.com/symposium-ai/symposium/seminar"
)

// Options configure a Symposium instance.
type Options struct {
	// Registry resolves agent parameters. Defaults to the built-in roster.
	Registry *agent.Registry
	// Prompts supplies persona system prompts. Defaults to none, meaning
	// every agent speaks with the generic fallback persona.
	Prompts agent.PromptSource
	// IdleTimeout evicts conversations untouched this long (memory and
	// transcript both). Zero keeps them for the process lifetime.
	IdleTimeout time.Duration
	// Retry governs upstream model-call retries.
	Retry inference.RetryPolicy
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Symposium aggregates the seminar components behind a single entry point.
type Symposium struct {
	registry    *agent.Registry
	memory      *memory.Store
	transcripts *conversation.Store
	hub         *realtime.Hub
	orch        *orchestrator.Orchestrator
	scheduler   *seminar.Scheduler
}

// New creates a Symposium over the given model backend. Any unset option is
// initialized with an in-memory default.
func New(completer inference.Completer, optFns ...func(o *Options)) (*Symposium, error) {
	opts := Options{
		Prompts: agent.StaticPrompts{},
		Retry:   inference.DefaultRetryPolicy(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		registry, err := agent.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("built-in registry: %w", err)
		}
		opts.Registry = registry
	}

	mem := memory.NewStore(opts.Registry)
	hub := realtime.NewHub(func(o *realtime.HubOptions) { o.Logger = opts.Logger })
	transcripts := conversation.NewStore(func(o *conversation.Options) {
		o.IdleTimeout = opts.IdleTimeout
		o.OnEvict = func(conversationID string) {
			mem.Clear(conversationID)
			hub.Forget(conversationID)
			opts.Logger.Info("evicted idle conversation", "conversation_id", conversationID)
		}
	})

	orch := orchestrator.New(completer, opts.Registry, opts.Prompts, mem, func(o *orchestrator.Options) {
		o.Events = hub
		o.Retry = opts.Retry
		o.Logger = opts.Logger
	})
	scheduler := seminar.NewScheduler(orch, transcripts, func(o *seminar.Options) {
		o.Logger = opts.Logger
	})

	return &Symposium{
		registry:    opts.Registry,
		memory:      mem,
		transcripts: transcripts,
		hub:         hub,
		orch:        orch,
		scheduler:   scheduler,
	}, nil
}

// Seminar runs a multi-agent discussion.
func (s *Symposium) Seminar(ctx context.Context, req seminar.Request) (*seminar.Result, error) {
	return s.scheduler.Run(ctx, req)
}

// Continue resumes an existing conversation.
func (s *Symposium) Continue(ctx context.Context, req seminar.ContinueRequest) (*seminar.Result, error) {
	return s.scheduler.Continue(ctx, req)
}

// Respond queries a single agent outside the round structure.
func (s *Symposium) Respond(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error) {
	return s.orch.Respond(ctx, req)
}

// Agents lists the available agents grouped by category.
func (s *Symposium) Agents() []agent.Category {
	return s.registry.Categories()
}

// DeleteConversation drops a conversation's memory, transcript and typing
// state.
func (s *Symposium) DeleteConversation(conversationID string) {
	s.memory.Clear(conversationID)
	s.transcripts.Delete(conversationID)
	s.hub.Forget(conversationID)
}

// Registry exposes the agent registry for server wiring.
func (s *Symposium) Registry() *agent.Registry { return s.registry }

// Memory exposes the per-agent memory store for server wiring.
func (s *Symposium) Memory() *memory.Store { return s.memory }

// Transcripts exposes the transcript store for server wiring and for running
// the idle-eviction sweep.
func (s *Symposium) Transcripts() *conversation.Store { return s.transcripts }

// Hub exposes the real-time hub for server wiring and for running the
// heartbeat loop.
func (s *Symposium) Hub() *realtime.Hub { return s.hub }

// Scheduler exposes the seminar scheduler for server wiring.
func (s *Symposium) Scheduler() *seminar.Scheduler { return s.scheduler }
