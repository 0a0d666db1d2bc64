package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// checkTruncated reports ErrMaxTokensExceeded when structured output was
// cut off. Truncated free text is returned as-is.
func checkTruncated(req Request, stopReason string, content json.RawMessage) error {
	if req.Schema != nil && stopReason == "max_tokens" {
		return &ErrMaxTokensExceeded{Content: content}
	}
	return nil
}

// UserMessage renders err as a short learner-facing sentence.
func UserMessage(err error) string {
	var (
		rl      *ErrRateLimit
		inv     *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
		unavail *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &rl):
		return "The tutor is busy right now. Please try again in a moment."
	case errors.As(err, &inv), errors.As(err, &maxTok):
		return "The tutor gave an unreadable answer. Please try again."
	case errors.As(err, &unavail):
		return "The tutor is unavailable. Check your connection and API key."
	case errors.Is(err, context.DeadlineExceeded):
		return "The tutor took too long to answer. Please try again."
	default:
		return "Something went wrong while contacting the tutor."
	}
}
