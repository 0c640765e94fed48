package inference

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"rate limit", errors.New("429: Rate limit exceeded for requests"), KindRateLimited},
		{"context length", errors.New("This model's maximum context length is 4096 tokens"), KindTokenLimit},
		{"token cue", errors.New("too many tokens in request"), KindTokenLimit},
		{"context window", errors.New("request exceeds the context window"), KindTokenLimit},
		{"auth", errors.New("Authentication failed: bad credentials"), KindAuthentication},
		{"api key", errors.New("Incorrect API key provided"), KindAuthentication},
		{"model not found", errors.New("model meta-llama/Llama-3.1-8B-Instruct not found"), KindModelUnavailable},
		{"model overloaded", errors.New("the model is currently overloaded"), KindModelUnavailable},
		{"unknown", errors.New("connection reset by peer"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Kind != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.err, got.Kind, tc.want)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("classified error should wrap the original")
			}
		})
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := &Error{Kind: KindRateLimited, Err: errors.New("slow down")}
	wrapped := fmt.Errorf("call failed: %w", orig)
	if got := Classify(wrapped); got.Kind != KindRateLimited {
		t.Fatalf("already-classified error reclassified to %s", got.Kind)
	}
}

func TestKindStatusCodes(t *testing.T) {
	codes := map[Kind]int{
		KindRateLimited:      429,
		KindTokenLimit:       400,
		KindAuthentication:   401,
		KindModelUnavailable: 503,
		KindUnknown:          500,
	}
	for kind, want := range codes {
		if got := kind.StatusCode(); got != want {
			t.Errorf("%s status = %d, want %d", kind, got, want)
		}
		if len(kind.Suggestions()) == 0 {
			t.Errorf("%s has no remediation suggestions", kind)
		}
		if kind.UserMessage() == "" {
			t.Errorf("%s has no user message", kind)
		}
	}
}

func TestKindRetryable(t *testing.T) {
	if !KindRateLimited.Retryable() || !KindModelUnavailable.Retryable() {
		t.Fatal("rate limited and model unavailable must be retryable")
	}
	for _, k := range []Kind{KindTokenLimit, KindAuthentication, KindUnknown} {
		if k.Retryable() {
			t.Fatalf("%s must not be retryable", k)
		}
	}
}
