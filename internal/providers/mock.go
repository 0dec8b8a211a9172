package providers

import (
	"context"
	"errors"
	"sync/atomic"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	ConfigName   string
	Model        string
	ResponseText string
	ChunkSize    int // fragment length for splitting ResponseText; 0 = whole text

	ShouldFail bool
	FailErr    error
	FailAfter  int64 // fail requests after the first N succeed (0 = per ShouldFail)

	// ResponseFn overrides ResponseText when set; called per request.
	ResponseFn func(req *ChatRequest) (string, error)

	Retries int
	RPM     int

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ConfigName:   MockClientName,
		Model:        "mock-model",
		ResponseText: "mock response",
		Retries:      1,
		RPM:          0,
	}
}

func (c *MockClient) Name() string {
	if c.ConfigName == "" {
		return MockClientName
	}
	return c.ConfigName
}

func (c *MockClient) ModelName() string {
	return c.Model
}

func (c *MockClient) MaxRetries() int {
	if c.Retries <= 0 {
		return 1
	}
	return c.Retries
}

func (c *MockClient) RequestsPerMinute() int { return c.RPM }

// RequestCount returns how many StreamChat calls were made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// StreamChat returns a scripted stream.
func (c *MockClient) StreamChat(ctx context.Context, req *ChatRequest) (Stream, error) {
	n := c.requestCount.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fail := c.ShouldFail
	if c.FailAfter > 0 {
		fail = n > c.FailAfter
	}
	if fail {
		err := c.FailErr
		if err == nil {
			err = errors.New("mock failure")
		}
		return nil, err
	}

	text := c.ResponseText
	if c.ResponseFn != nil {
		var err error
		text, err = c.ResponseFn(req)
		if err != nil {
			return nil, err
		}
	}

	return newTextStream(splitChunks(text, c.ChunkSize), -1, nil), nil
}

func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	var out []string
	for len(text) > 0 {
		cut := size
		if cut > len(text) {
			cut = len(text)
		}
		// Avoid splitting a UTF-8 sequence.
		for cut < len(text) && !utf8Start(text[cut]) {
			cut++
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	return out
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

// FailingStream returns a stream that yields the given fragments then fails.
// Test helper for mid-stream transport errors.
func FailingStream(fragments []string, err error) Stream {
	return newTextStream(append([]string{}, fragments...), len(fragments), err)
}

var _ LLMClient = (*MockClient)(nil)
