package symposium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/inference"
	"github.com/symposium-ai/symposium/orchestrator"
	"github.com/symposium-ai/symposium/seminar"
)

func echoCompleter() inference.Completer {
	return inference.CompleterFunc(func(_ context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
		return &inference.Completion{Text: "echo: " + messages[len(messages)-1].Content, Model: params.Model}, nil
	})
}

func TestSeminarEndToEnd(t *testing.T) {
	sym, err := New(echoCompleter())
	require.NoError(t, err)

	result, err := sym.Seminar(context.Background(), seminar.Request{
		Question: "What is truth?",
		AgentIDs: []string{"socrates", "nietzsche"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ConversationID)
	require.Len(t, result.Answers, 2)

	turns, err := sym.Transcripts().History(result.ConversationID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
}

func TestContinueAfterSeminar(t *testing.T) {
	sym, err := New(echoCompleter())
	require.NoError(t, err)

	started, err := sym.Seminar(context.Background(), seminar.Request{
		Question: "What is truth?",
		AgentIDs: []string{"socrates"},
	})
	require.NoError(t, err)

	continued, err := sym.Continue(context.Background(), seminar.ContinueRequest{
		ConversationID: started.ConversationID,
		AgentIDs:       []string{"socrates"},
	})
	require.NoError(t, err)
	require.Equal(t, started.ConversationID, continued.ConversationID)
	require.Len(t, continued.Answers, 1)
}

func TestRespondRecordsMemory(t *testing.T) {
	sym, err := New(echoCompleter())
	require.NoError(t, err)

	resp, err := sym.Respond(context.Background(), orchestrator.Request{
		AgentID:        "socrates",
		Question:       "What is virtue?",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	require.Contains(t, resp.Text, "What is virtue?")
	require.Contains(t, sym.Memory().Context("c1", "socrates", false), resp.Text)
}

func TestDeleteConversation(t *testing.T) {
	sym, err := New(echoCompleter())
	require.NoError(t, err)

	_, err = sym.Respond(context.Background(), orchestrator.Request{
		AgentID:        "socrates",
		Question:       "What is virtue?",
		ConversationID: "c1",
	})
	require.NoError(t, err)
	sym.Transcripts().Create("c1")

	sym.DeleteConversation("c1")
	require.Empty(t, sym.Memory().Context("c1", "socrates", true))
	require.False(t, sym.Transcripts().Exists("c1"))
}

func TestAgentsListing(t *testing.T) {
	sym, err := New(echoCompleter())
	require.NoError(t, err)

	categories := sym.Agents()
	require.NotEmpty(t, categories)
	total := 0
	for _, cat := range categories {
		total += len(cat.Agents)
	}
	require.Equal(t, 21, total)
}
