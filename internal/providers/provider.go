// Package providers holds the model-adapter boundary: a pull-based streaming
// chat contract, an OpenAI-compatible implementation, and the retry and
// rate-limit plumbing around it. The generation pipeline only ever sees
// LLMClient and Stream.
package providers

import (
	"context"
	"errors"
	"time"
)

// ErrInterrupted signals cooperative cancellation. It is distinct from an
// ordinary failure: polling and pipeline layers stop the whole step instead
// of failing over to another configuration.
var ErrInterrupted = errors.New("generation interrupted")

// ChatRequest is one generation request.
type ChatRequest struct {
	System string
	Prompt string

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	// RequestID is used for logging only; generated when empty.
	RequestID string
}

// Stream yields successive text fragments of one model response.
// Next reports whether another fragment is available; Err must be checked
// after Next returns false. Close releases the underlying transport.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// LLMClient is the contract every model configuration satisfies.
type LLMClient interface {
	// StreamChat starts a streaming completion. Iteration may fail at any
	// point with a transport error; normal exhaustion signals completion.
	StreamChat(ctx context.Context, req *ChatRequest) (Stream, error)

	// Name returns the configuration name, used only for logging.
	Name() string

	// ModelName returns the underlying model identifier, for logging.
	ModelName() string

	// MaxRetries bounds the in-client streaming retry.
	MaxRetries() int

	// RequestsPerMinute is the configured rate limit.
	RequestsPerMinute() int
}

// textStream is a Stream over an in-memory fragment list. Used by the mock
// client and by tests.
type textStream struct {
	fragments []string
	pos       int
	err       error
	failAt    int // fail before yielding fragment at this index; -1 = never
}

func newTextStream(fragments []string, failAt int, err error) *textStream {
	return &textStream{fragments: fragments, pos: -1, failAt: failAt, err: err}
}

func (s *textStream) Next() bool {
	next := s.pos + 1
	if s.failAt >= 0 && next >= s.failAt {
		return false
	}
	if next >= len(s.fragments) {
		return false
	}
	s.pos = next
	return true
}

func (s *textStream) Current() string {
	if s.pos < 0 || s.pos >= len(s.fragments) {
		return ""
	}
	return s.fragments[s.pos]
}

func (s *textStream) Err() error {
	if s.failAt >= 0 && s.pos+1 >= s.failAt {
		return s.err
	}
	return nil
}

func (s *textStream) Close() error { return nil }
