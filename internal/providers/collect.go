package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell/internal/logsink"
)

// ErrEmptyOutput marks a completed stream that produced only whitespace.
// Treated as a failure so retry and failover logic engage.
var ErrEmptyOutput = errors.New("model returned empty output")

// CollectOptions controls stream consumption.
type CollectOptions struct {
	// Sink receives fragments for live display. Optional.
	Sink logsink.Sink

	// CheckInterrupted is probed between received fragments. Returning true
	// aborts the collection with ErrInterrupted. Optional.
	CheckInterrupted func() bool
}

// Collect drains a stream into a single string. The stream is always closed.
func Collect(stream Stream, opts CollectOptions) (string, error) {
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		if opts.CheckInterrupted != nil && opts.CheckInterrupted() {
			return "", ErrInterrupted
		}
		fragment := stream.Current()
		if fragment == "" {
			continue
		}
		b.WriteString(fragment)
		if opts.Sink != nil {
			opts.Sink.Fragment(fragment)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("stream failed: %w", err)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

// StreamAndCollect runs one request against one client with the client's
// in-call retry budget: transport failures and empty output are retried with
// exponential backoff, cancellation and context errors are not.
func StreamAndCollect(ctx context.Context, client LLMClient, req *ChatRequest, opts CollectOptions, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	attempts := uint(client.MaxRetries())
	if attempts == 0 {
		attempts = 1
	}

	var text string
	err := retry.Do(
		func() error {
			stream, err := client.StreamChat(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to start stream: %w", err)
			}
			text, err = Collect(stream, opts)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(30*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrInterrupted) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn("model call failed, retrying",
				"config", client.Name(),
				"model", client.ModelName(),
				"request_id", req.RequestID,
				"attempt", attempt+1,
				"error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}
