// Package pipeline wires the generation workflow together: the staged
// architecture chain, chunked volume-outline and chapter-blueprint
// generation, and per-chapter finalization. Every stage persists its output
// before the next model call so an interrupted run resumes where it stopped.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/inkwell-ai/inkwell/internal/characters"
	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/foreshadow"
	"github.com/inkwell-ai/inkwell/internal/home"
	"github.com/inkwell-ai/inkwell/internal/logsink"
	"github.com/inkwell-ai/inkwell/internal/polling"
	"github.com/inkwell-ai/inkwell/internal/prompts"
	"github.com/inkwell-ai/inkwell/internal/providers"
	"github.com/inkwell-ai/inkwell/internal/textstore"
)

// Pipeline holds the shared dependencies of all generation stages.
type Pipeline struct {
	project    *home.Project
	resolver   *prompts.Resolver
	executor   *polling.Executor
	foreshadow *foreshadow.Tracker
	characters *characters.Tracker
	gen        config.GenerationConfig
	budget     *TokenBudget
	sink       logsink.Sink
	logger     *slog.Logger
}

// New creates a Pipeline over one project. A nil sink discards progress
// output; a nil logger defaults to slog.Default().
func New(project *home.Project, resolver *prompts.Resolver, executor *polling.Executor, gen config.GenerationConfig, sink logsink.Sink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = logsink.Nop{}
	}
	store := textstore.NewStore(project.CollectionsPath(), logger)
	return &Pipeline{
		project:    project,
		resolver:   resolver,
		executor:   executor,
		foreshadow: foreshadow.NewTracker(store, logger),
		characters: characters.NewTracker(store, logger),
		gen:        gen,
		budget:     NewTokenBudget(logger),
		sink:       sink,
		logger:     logger,
	}
}

// Foreshadowing exposes the project's foreshadowing tracker.
func (p *Pipeline) Foreshadowing() *foreshadow.Tracker {
	return p.foreshadow
}

// Characters exposes the project's character tracker.
func (p *Pipeline) Characters() *characters.Tracker {
	return p.characters
}

// runStep renders a prompt, executes it through the polling executor and
// returns the collected text. The work function delegates streaming, retry
// and live display to the providers package.
func (p *Pipeline) runStep(ctx context.Context, stepName, promptKey string, data any) (string, error) {
	prompt, err := p.resolver.Render(promptKey, data)
	if err != nil {
		return "", err
	}

	step := polling.Step{Name: stepName, InputSize: len([]rune(prompt))}
	return p.executor.Execute(ctx, step, func(ctx context.Context, client providers.LLMClient) (string, error) {
		// Temperature and timeout stay zero here so each endpoint's
		// configured defaults apply.
		req := &providers.ChatRequest{
			Prompt:    prompt,
			MaxTokens: p.gen.MaxOutputTokens,
		}
		return providers.StreamAndCollect(ctx, client, req, providers.CollectOptions{
			Sink:             p.sink,
			CheckInterrupted: p.executor.CheckInterrupted,
		}, p.logger)
	})
}

// readFileOrEmpty returns the file's contents, or "" when it doesn't exist.
// Other read errors are logged and degrade to "" as well: generation context
// is best-effort, persistence is not.
func (p *Pipeline) readFileOrEmpty(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("failed to read context file", "path", path, "error", err)
		}
		return ""
	}
	return string(data)
}

// appendDocument appends a block of text to a document file, separated from
// existing content by a blank line.
func appendDocument(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	text = strings.TrimSpace(text)
	if _, err := f.WriteString("\n\n" + text + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

// writeDocument atomically replaces a document file.
func writeDocument(path, text string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.TrimSpace(text)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
