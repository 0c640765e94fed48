// Package openai implements inference.Completer using the OpenAI Chat
// Completions API. It adapts the normalized message sequence into the SDK's
// message format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/symposium-ai/symposium/inference"
)

// Options configure the OpenAI gateway.
type Options struct {
	Model string
}

// Gateway wraps the OpenAI Chat Completions API behind inference.Completer.
type Gateway struct {
	client *openai.Client
	opts   Options
}

var _ inference.Completer = (*Gateway)(nil)

// New creates a new OpenAI gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model: openai.ChatModelGPT4oMini,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Complete implements inference.Completer.
func (g *Gateway) Complete(ctx context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
	model := params.Model
	if model == "" {
		model = g.opts.Model
	}

	// System messages are merged so every backend sees the same prompt shape.
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range inference.MergeSystemMessages(messages) {
		switch m.Role {
		case "system":
			converted = append(converted, openai.SystemMessage(m.Content))
		case "assistant":
			converted = append(converted, openai.AssistantMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}

	req := openai.ChatCompletionNewParams{
		Messages:            converted,
		Model:               model,
		Temperature:         openai.Float(params.Temperature),
		TopP:                openai.Float(params.TopP),
		MaxCompletionTokens: openai.Int(int64(params.MaxTokens)),
		FrequencyPenalty:    openai.Float(params.FrequencyPenalty),
		PresencePenalty:     openai.Float(params.PresencePenalty),
	}

	resp, err := g.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned no choices")
	}
	return &inference.Completion{Text: resp.Choices[0].Message.Content, Model: model}, nil
}
