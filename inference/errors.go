package inference

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed taxonomy of upstream model-API failures.
type Kind int

const (
	// KindUnknown covers any failure that matches no other kind.
	KindUnknown Kind = iota
	// KindRateLimited indicates the backend rejected the call for quota reasons.
	KindRateLimited
	// KindTokenLimit indicates the prompt exceeded the model's context window.
	KindTokenLimit
	// KindAuthentication indicates the backend rejected our credentials.
	KindAuthentication
	// KindModelUnavailable indicates the requested model is missing or overloaded.
	KindModelUnavailable
)

// String returns the stable identifier used in logs and API payloads.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTokenLimit:
		return "token_limit_exceeded"
	case KindAuthentication:
		return "authentication_failed"
	case KindModelUnavailable:
		return "model_unavailable"
	default:
		return "unknown"
	}
}

// StatusCode returns the fixed HTTP-style status associated with the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindRateLimited:
		return 429
	case KindTokenLimit:
		return 400
	case KindAuthentication:
		return 401
	case KindModelUnavailable:
		return 503
	default:
		return 500
	}
}

// Retryable reports whether a failure of this kind is transient. Only rate
// limiting and model unavailability warrant another attempt; everything else
// propagates on first occurrence.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindModelUnavailable
}

// UserMessage returns the safe, generic message surfaced to callers in place
// of internal error text.
func (k Kind) UserMessage() string {
	switch k {
	case KindRateLimited:
		return "The service is experiencing high demand. Please try again in a few moments."
	case KindTokenLimit:
		return "The conversation is too long for the AI to process."
	case KindAuthentication:
		return "There was an authentication error with the AI service."
	case KindModelUnavailable:
		return "The AI model is temporarily unavailable."
	default:
		return "An unexpected error occurred. Please try again later."
	}
}

// Suggestions returns the fixed list of user-facing remediation steps for the kind.
func (k Kind) Suggestions() []string {
	switch k {
	case KindRateLimited:
		return []string{
			"Wait a few seconds and try again",
			"Try with a shorter prompt or fewer agents",
			"Start a new conversation if this persists",
		}
	case KindTokenLimit:
		return []string{
			"Try sending a shorter message",
			"Start a new conversation",
			"Reduce the number of agents in the conversation",
			"Focus on one specific topic at a time",
		}
	case KindAuthentication:
		return []string{
			"Refresh the page and try again",
			"Contact support if this persists",
			"Check if the service is currently experiencing issues",
		}
	case KindModelUnavailable:
		return []string{
			"Try again in a few minutes",
			"Try with a different agent or fewer agents",
			"Check the provider status page for any ongoing issues",
		}
	default:
		return []string{
			"Refresh and try again",
			"Start a new conversation",
			"Try with a different question or fewer agents",
		}
	}
}

// Error is a classified upstream failure. It wraps the original error so
// callers can still unwrap the raw cause.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the original failure for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP-style status of the underlying kind.
func (e *Error) StatusCode() int { return e.Kind.StatusCode() }

// UserMessage returns the kind's safe user-facing message.
func (e *Error) UserMessage() string { return e.Kind.UserMessage() }

// Suggestions returns the kind's remediation steps.
func (e *Error) Suggestions() []string { return e.Kind.Suggestions() }

// Classify maps an arbitrary failure from the inference call path to exactly
// one Kind by inspecting its textual description. Already-classified errors
// pass through unchanged.
func Classify(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "rate limit"):
		return &Error{Kind: KindRateLimited, Err: err}
	case containsAny(text, "maximum context length", "token", "too many tokens", "exceed", "context window", "input is too long"):
		return &Error{Kind: KindTokenLimit, Err: err}
	case containsAny(text, "authentication", "api key", "invalid key"):
		return &Error{Kind: KindAuthentication, Err: err}
	case strings.Contains(text, "model") && containsAny(text, "not found", "currently unavailable", "unavailable", "overloaded", "capacity"):
		return &Error{Kind: KindModelUnavailable, Err: err}
	default:
		return &Error{Kind: KindUnknown, Err: err}
	}
}

// KindOf returns the classified kind of err, KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func containsAny(s string, cues ...string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}
