package providers

import (
	"context"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// OpenAICompatConfig configures one OpenAI-compatible endpoint. Most hosted
// model gateways speak this protocol, so one adapter covers the pool.
type OpenAICompatConfig struct {
	Name              string
	Model             string
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	MaxRetries        int

	// Per-endpoint defaults, applied when the request leaves them unset.
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
}

// OpenAICompatClient is the LLMClient over the OpenAI chat completions
// streaming API.
type OpenAICompatClient struct {
	cfg     OpenAICompatConfig
	client  openai.Client
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewOpenAICompatClient creates a client for one endpoint configuration.
// A nil logger defaults to slog.Default().
func NewOpenAICompatClient(cfg OpenAICompatConfig, logger *slog.Logger) *OpenAICompatClient {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &OpenAICompatClient{
		cfg:     cfg,
		client:  openai.NewClient(opts...),
		limiter: NewRateLimiter(cfg.RequestsPerMinute),
		logger:  logger.With("config", cfg.Name, "model", cfg.Model),
	}
}

func (c *OpenAICompatClient) Name() string           { return c.cfg.Name }
func (c *OpenAICompatClient) ModelName() string      { return c.cfg.Model }
func (c *OpenAICompatClient) MaxRetries() int        { return c.cfg.MaxRetries }
func (c *OpenAICompatClient) RequestsPerMinute() int { return c.cfg.RequestsPerMinute }

// StreamChat starts a streaming completion after waiting for a rate-limit
// token. The returned Stream yields content deltas.
func (c *OpenAICompatClient) StreamChat(ctx context.Context, req *ChatRequest) (Stream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	st := c.limiter.Status()
	c.logger.Debug("rate limit token acquired",
		"available", st.TokensAvailable,
		"consumed", st.TotalConsumed,
		"waited", st.TotalWaited)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    c.cfg.Model,
		Messages: messages,
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = time.Duration(c.cfg.TimeoutSeconds) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		sse := c.client.Chat.Completions.NewStreaming(ctx, params)
		return &openaiStream{inner: sse, cancel: cancel}, nil
	}

	sse := c.client.Chat.Completions.NewStreaming(ctx, params)
	return &openaiStream{inner: sse}, nil
}

// openaiStream adapts the SDK's SSE stream to the Stream contract.
type openaiStream struct {
	inner  *ssestream.Stream[openai.ChatCompletionChunk]
	cancel context.CancelFunc
	delta  string
}

func (s *openaiStream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		s.delta = chunk.Choices[0].Delta.Content
		return true
	}
	return false
}

func (s *openaiStream) Current() string { return s.delta }

func (s *openaiStream) Err() error { return s.inner.Err() }

func (s *openaiStream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.inner.Close()
}

// Verify interface compliance
var _ LLMClient = (*OpenAICompatClient)(nil)
