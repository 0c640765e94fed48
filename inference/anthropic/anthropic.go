// Package anthropic implements inference.Completer for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/symposium-ai/symposium/inference"
)

// Options configure the Anthropic gateway (model id, API key).
type Options struct {
	Model  anthropic.Model
	APIKey string
}

// Gateway wraps the Anthropic Messages API behind inference.Completer.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

var _ inference.Completer = (*Gateway)(nil)

// New creates a new Anthropic gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic gateway from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Complete implements inference.Completer. System messages become native
// system blocks; frequency and presence penalties have no Anthropic
// equivalent and are ignored.
func (g *Gateway) Complete(ctx context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
	model := g.opts.Model
	if params.Model != "" {
		model = anthropic.Model(params.Model)
	}

	var system []anthropic.TextBlockParam
	var converted []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case "system":
			if m.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	req := anthropic.MessageNewParams{
		Model:       model,
		Messages:    converted,
		MaxTokens:   int64(params.MaxTokens),
		Temperature: anthropic.Float(params.Temperature),
		TopP:        anthropic.Float(params.TopP),
	}
	if len(system) > 0 {
		req.System = system
	}

	resp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("anthropic api returned no text content")
	}
	return &inference.Completion{Text: text, Model: string(model)}, nil
}
