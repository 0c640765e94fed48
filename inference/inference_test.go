package inference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeSystemMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "persona"},
		{Role: "system", Content: "context"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}
	merged := MergeSystemMessages(messages)
	require.Len(t, merged, 4)
	require.Equal(t, "system", merged[0].Role)
	require.Equal(t, "persona\n\ncontext", merged[0].Content)
	require.Equal(t, []Message{{Role: "user", Content: "q1"}, {Role: "assistant", Content: "a1"}, {Role: "user", Content: "q2"}}, merged[1:])
}

func TestMergeSystemMessagesWithoutSystem(t *testing.T) {
	messages := []Message{{Role: "user", Content: "hi"}}
	merged := MergeSystemMessages(messages)
	require.Equal(t, messages, merged)
}
