// Package huggingface implements inference.Completer against the Hugging Face
// Inference API. It adapts the normalized message sequence and generation
// parameters into the text-generation payload the API expects and normalizes
// the list- or object-wrapped reply back into a Completion.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/symposium-ai/symposium/inference"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

// Options configure the Hugging Face gateway.
type Options struct {
	// BaseURL overrides the inference endpoint root (testing, proxies).
	BaseURL string
	// Model is the default model id when a request does not name one.
	Model string
	// Timeout bounds the whole network call.
	Timeout time.Duration
	// HTTPClient allows injecting a custom client. Timeout is applied per
	// request via context, so a shared client is fine.
	HTTPClient *http.Client
}

// Gateway is an inference.Completer backed by the Hugging Face Inference API.
type Gateway struct {
	apiKey string
	opts   Options
}

var _ inference.Completer = (*Gateway)(nil)

// New creates a Hugging Face gateway. The API key is read from the
// HF_API_KEY environment variable when empty.
func New(apiKey string, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		BaseURL: defaultBaseURL,
		Model:   "meta-llama/Llama-3.1-8B-Instruct",
		Timeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if apiKey == "" {
		apiKey = os.Getenv("HF_API_KEY")
	}
	return &Gateway{apiKey: apiKey, opts: opts}
}

type generationParameters struct {
	MaxNewTokens      int      `json:"max_new_tokens,omitempty"`
	Temperature       float64  `json:"temperature,omitempty"`
	TopP              float64  `json:"top_p,omitempty"`
	RepetitionPenalty float64  `json:"repetition_penalty,omitempty"`
	DoSample          bool     `json:"do_sample"`
	ReturnFullText    bool     `json:"return_full_text"`
	Stop              []string `json:"stop,omitempty"`
}

type generationRequest struct {
	Inputs     []inference.Message  `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

// Complete implements inference.Completer. Consecutive system messages are
// merged into one leading system message, generic parameters are translated
// into the API's native names, and the reply text is extracted from either a
// list-wrapped or object-wrapped response body.
func (g *Gateway) Complete(ctx context.Context, messages []inference.Message, params inference.Params) (*inference.Completion, error) {
	model := params.Model
	if model == "" {
		model = g.opts.Model
	}

	payload := generationRequest{
		Inputs: inference.MergeSystemMessages(messages),
		Parameters: generationParameters{
			MaxNewTokens: params.MaxTokens,
			Temperature:  params.Temperature,
			TopP:         params.TopP,
			// The API has no frequency penalty; its repetition penalty is
			// centered on 1.0, hence the offset.
			RepetitionPenalty: params.FrequencyPenalty + 0.3,
			DoSample:          true,
			ReturnFullText:    false,
			Stop:              []string{"<|endoftext|>"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.opts.BaseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Status and body text are preserved for the error classifier.
		return nil, fmt.Errorf("inference request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	text, err := extractGeneratedText(raw)
	if err != nil {
		return nil, err
	}
	return &inference.Completion{Text: text, Model: model}, nil
}

// extractGeneratedText handles both response shapes the API emits:
// a list of results or a single result object.
func extractGeneratedText(raw []byte) (string, error) {
	var list []generationResult
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}
	var single generationResult
	if err := json.Unmarshal(raw, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText, nil
	}
	return "", fmt.Errorf("unexpected response shape: %s", string(raw))
}
