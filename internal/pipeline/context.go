package pipeline

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenBudget estimates prompt sizes and trims oversized context blocks.
// The encoder is loaded lazily; when unavailable the budget falls back to a
// rune-based estimate so generation never blocks on tokenizer data.
type TokenBudget struct {
	once    sync.Once
	encoder *tiktoken.Tiktoken
	logger  *slog.Logger
}

// NewTokenBudget creates a TokenBudget. A nil logger defaults to
// slog.Default().
func NewTokenBudget(logger *slog.Logger) *TokenBudget {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenBudget{logger: logger}
}

func (b *TokenBudget) load() {
	b.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			b.logger.Warn("tokenizer unavailable, using rune estimate", "error", err)
			return
		}
		b.encoder = enc
	})
}

// Count returns the token count of text.
func (b *TokenBudget) Count(text string) int {
	b.load()
	if b.encoder == nil {
		return len([]rune(text))
	}
	return len(b.encoder.Encode(text, nil, nil))
}

// TrimHead drops leading blocks (separated by blank lines) until text fits
// the budget. The most recent context lives at the tail, so trimming eats the
// oldest material first. A single oversized block is returned as-is rather
// than cut mid-record.
func (b *TokenBudget) TrimHead(text string, maxTokens int) string {
	if maxTokens <= 0 || b.Count(text) <= maxTokens {
		return text
	}

	blocks := strings.Split(text, "\n\n")
	for len(blocks) > 1 {
		blocks = blocks[1:]
		candidate := strings.Join(blocks, "\n\n")
		if b.Count(candidate) <= maxTokens {
			b.logger.Debug("trimmed context to budget", "max_tokens", maxTokens)
			return candidate
		}
	}
	return blocks[0]
}
