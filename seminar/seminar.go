// Package seminar runs multi-agent discussions: an opening round where every
// requested agent answers the user's question, followed by optional automatic
// rounds where a rotating subset of agents responds to the transcript so far.
package seminar

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/symposium-ai/symposium/agent"
	"github.com/symposium-ai/symposium/conversation"
	"github.com/symposium-ai/symposium/logging"
	"github.com/symposium-ai/symposium/orchestrator"
)

// ClosingMessage ends every auto-conversation.
const ClosingMessage = "The discussion has concluded. You may now respond or ask a follow-up question."

// DefaultContinuePrompt is used when a continuation request carries no
// question.
const DefaultContinuePrompt = "Please continue the discussion, building on the previous exchanges."

// DefaultMaxRounds bounds auto-conversations that don't specify a limit.
const DefaultMaxRounds = 3

// Responder is the orchestration surface the scheduler drives.
// *orchestrator.Orchestrator satisfies it.
type Responder interface {
	Respond(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
	RespondAll(ctx context.Context, agentIDs []string, question, conversationID string) ([]orchestrator.Response, error)
}

var _ Responder = (*orchestrator.Orchestrator)(nil)

// Request starts a seminar.
type Request struct {
	Question       string   `json:"question"`
	AgentIDs       []string `json:"agent_ids"`
	ConversationID string   `json:"conversation_id,omitempty"`
	// AutoConversation lets the agents keep talking after the opening
	// round, up to MaxRounds rounds total.
	AutoConversation bool `json:"auto_conversation,omitempty"`
	MaxRounds        int  `json:"max_rounds,omitempty"`
	// DirectMention prioritizes one agent: it answers first in the opening
	// round, and the next round references its points.
	DirectMention string `json:"direct_mention,omitempty"`
}

// ContinueRequest resumes an existing conversation.
type ContinueRequest struct {
	ConversationID string   `json:"conversation_id"`
	Question       string   `json:"question,omitempty"`
	AgentIDs       []string `json:"agent_ids"`
}

// Result is the ordered output of a seminar or continuation.
type Result struct {
	Answers        []orchestrator.Response `json:"answers"`
	ConversationID string                  `json:"conversation_id"`
}

// Scheduler sequences seminar rounds over a Responder, maintaining the
// transcript that later rounds and continuations build on.
type Scheduler struct {
	responder   Responder
	transcripts *conversation.Store
	logger      logging.Logger

	mu   sync.Mutex
	rand *rand.Rand

	sleep    func(ctx context.Context, d time.Duration)
	minPause time.Duration
	maxPause time.Duration
}

// Options configure a Scheduler.
type Options struct {
	Logger logging.Logger
	// Rand drives round-subset selection and pacing jitter. Defaults to a
	// time-seeded source; tests inject a fixed seed.
	Rand *rand.Rand
	// Sleep overrides the pacing wait between responses in auto rounds.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewScheduler creates a Scheduler.
func NewScheduler(responder Responder, transcripts *conversation.Store, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep:  sleepCtx,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scheduler{
		responder:   responder,
		transcripts: transcripts,
		logger:      opts.Logger,
		rand:        opts.Rand,
		sleep:       opts.Sleep,
		minPause:    500 * time.Millisecond,
		maxPause:    1500 * time.Millisecond,
	}
}

// Run executes the opening round and, when requested, the automatic
// follow-on rounds. Per-agent failures inside auto rounds are logged and
// skipped; they never abort the seminar.
func (s *Scheduler) Run(ctx context.Context, req Request) (*Result, error) {
	maxRounds := req.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	conversationID := s.transcripts.Create(req.ConversationID)
	s.logger.Info("starting seminar",
		"conversation_id", conversationID, "agents", len(req.AgentIDs), "max_rounds", maxRounds)

	order := prioritize(req.AgentIDs, req.DirectMention)
	s.transcripts.Append(conversationID, conversation.Turn{Role: "user", Content: req.Question})

	initial, err := s.responder.RespondAll(ctx, order, req.Question, conversationID)
	if err != nil {
		return nil, err
	}
	answers := initial
	for _, resp := range initial {
		s.transcripts.Append(conversationID, assistantTurn(resp))
	}

	if req.AutoConversation && len(req.AgentIDs) > 1 {
		answers = s.runAutoRounds(ctx, req, conversationID, maxRounds, answers)
		answers = append(answers, orchestrator.Response{
			AgentID:        "system",
			Text:           ClosingMessage,
			Model:          "system",
			ConversationID: conversationID,
		})
		s.logger.Info("auto-conversation completed",
			"conversation_id", conversationID, "responses", len(answers))
	}

	return &Result{Answers: answers, ConversationID: conversationID}, nil
}

// Continue resumes a conversation with a fresh round from the given agents.
// Unknown conversations return conversation.ErrNotFound.
func (s *Scheduler) Continue(ctx context.Context, req ContinueRequest) (*Result, error) {
	if !s.transcripts.Exists(req.ConversationID) {
		return nil, conversation.ErrNotFound
	}
	question := req.Question
	if question == "" {
		question = DefaultContinuePrompt
	}

	s.transcripts.Append(req.ConversationID, conversation.Turn{Role: "user", Content: question})
	responses, err := s.responder.RespondAll(ctx, req.AgentIDs, question, req.ConversationID)
	if err != nil {
		return nil, err
	}
	for _, resp := range responses {
		s.transcripts.Append(req.ConversationID, assistantTurn(resp))
	}
	return &Result{Answers: responses, ConversationID: req.ConversationID}, nil
}

// runAutoRounds executes rounds 2..maxRounds sequentially. Each round picks a
// subset of agents, feeds each the transcript so far and paces responses with
// a small jittered delay. Context cancellation ends the rounds early with
// whatever has been collected.
func (s *Scheduler) runAutoRounds(ctx context.Context, req Request, conversationID string, maxRounds int, answers []orchestrator.Response) []orchestrator.Response {
	for round := 2; round <= maxRounds; round++ {
		if ctx.Err() != nil {
			s.logger.Warn("auto-conversation interrupted",
				"conversation_id", conversationID, "round", round)
			return answers
		}
		responding := s.selectResponders(req.AgentIDs)
		s.logger.Info("starting round",
			"conversation_id", conversationID, "round", round, "responding", len(responding))

		mentionNote := ""
		if req.DirectMention != "" && round == 2 && respondedIn(answers, req.DirectMention) {
			mentionNote = "\n\nMake sure to reference the points made by " +
				agent.DisplayName(req.DirectMention) + " in your response."
		}

		for _, agentID := range responding {
			if round == 2 && agentID == req.DirectMention {
				continue
			}
			if ctx.Err() != nil {
				return answers
			}

			roundContext := s.buildContext(conversationID)
			prompt := continuationPrompt(agentID, req.AgentIDs) + mentionNote

			resp, err := s.responder.Respond(ctx, orchestrator.Request{
				AgentID:        agentID,
				Question:       prompt,
				ConversationID: conversationID,
				IncludeContext: false,
				CustomContext:  &roundContext,
			})
			if err != nil {
				s.logger.Error("skipping agent in round",
					"conversation_id", conversationID, "round", round, "agent_id", agentID, "error", err)
				continue
			}

			answers = append(answers, *resp)
			s.transcripts.Append(conversationID, assistantTurn(*resp))
			s.sleep(ctx, s.pause())
		}
	}
	return answers
}

// selectResponders returns the agents speaking this round: everyone when the
// roster is small, otherwise a random subset of 2-3 to keep the exchange
// conversational.
func (s *Scheduler) selectResponders(agentIDs []string) []string {
	out := make([]string, len(agentIDs))
	copy(out, agentIDs)
	if len(out) <= 3 {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 2 + s.rand.Intn(2)
	if n > len(out) {
		n = len(out)
	}
	perm := s.rand.Perm(len(out))
	selected := make([]string, 0, n)
	for _, idx := range perm[:n] {
		selected = append(selected, out[idx])
	}
	return selected
}

func (s *Scheduler) pause() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	jitter := time.Duration(s.rand.Int63n(int64(s.maxPause - s.minPause)))
	return s.minPause + jitter
}

// buildContext renders the transcript for injection into a round prompt.
func (s *Scheduler) buildContext(conversationID string) string {
	turns, err := s.transcripts.History(conversationID)
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n\n")
	for _, turn := range turns {
		if turn.Role == "user" {
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// continuationPrompt frames a round reply for one agent, naming the other
// participants it may address.
func continuationPrompt(agentID string, agentIDs []string) string {
	var others []string
	for _, id := range agentIDs {
		if id != agentID {
			others = append(others, agent.DisplayName(id))
		}
	}
	reference := ""
	switch {
	case len(others) == 1:
		reference = "You may directly address " + others[0] + " by name in your response."
	case len(others) > 1:
		formatted := strings.Join(others[:len(others)-1], ", ") + " and " + others[len(others)-1]
		reference = "You may directly address any of these participants by name in your response: " + formatted + "."
	}

	return "You are " + agent.DisplayName(agentID) + " in a group chat. " +
		"Please respond to the ongoing discussion ONLY IF you have a valuable perspective or can challenge an idea constructively. " +
		reference + "\n\n" +
		"Be selective about which points you address - you don't need to respond to everything. " +
		"When appropriate, address specific agents by name. Keep your response brief and focused on making a single strong point. " +
		"Your response should be 2-3 short paragraphs at most."
}

// prioritize moves the mentioned agent to the front so it answers first in
// the opening round. Unknown mentions leave the order untouched.
func prioritize(agentIDs []string, mention string) []string {
	out := make([]string, 0, len(agentIDs))
	found := false
	for _, id := range agentIDs {
		if id == mention {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		return out
	}
	return append([]string{mention}, out...)
}

func respondedIn(answers []orchestrator.Response, agentID string) bool {
	for _, resp := range answers {
		if resp.AgentID == agentID {
			return true
		}
	}
	return false
}

func assistantTurn(resp orchestrator.Response) conversation.Turn {
	return conversation.Turn{
		Role:    "assistant",
		Content: resp.AgentID + ": " + resp.Text,
		Agent:   resp.AgentID,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
