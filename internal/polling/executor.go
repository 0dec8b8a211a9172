// Package polling executes LLM-backed steps against a single configured
// model or a failover pool, with uniform logging and failure semantics.
// One Executor is constructed per application run and passed by reference to
// every pipeline stage.
package polling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell/internal/logsink"
	"github.com/inkwell-ai/inkwell/internal/providers"
)

// Mode selects how configurations are chosen.
type Mode string

const (
	// ModeSingle uses one fixed configuration, no failover.
	ModeSingle Mode = "single"

	// ModeSequential rotates through the pool round-robin, resuming after
	// the configuration used last.
	ModeSequential Mode = "sequential"

	// ModeRandom shuffles the pool order once per round.
	ModeRandom Mode = "random"
)

// DefaultRounds is how many full passes over the pool are attempted before
// giving up.
const DefaultRounds = 2

// ErrAllConfigsFailed is the sentinel returned when every configuration in
// every round failed. Callers decide whether to abort the larger workflow;
// it deliberately does not carry the individual attempt errors, which are
// already logged.
var ErrAllConfigsFailed = errors.New("all llm configurations failed")

// StepError wraps a single-mode failure with the step and configuration it
// occurred in, preserving the original message.
type StepError struct {
	Step   string
	Config string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed on config %q: %v", e.Step, e.Config, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Options configures an Executor.
type Options struct {
	Mode    Mode
	Rounds  int      // pool mode; defaults to DefaultRounds
	Primary string   // single mode; defaults to the sole registered config
	Pool    []string // pool mode configuration names

	// CheckInterrupted is probed before every attempt; it is also threaded
	// into work functions that consume streams. Optional.
	CheckInterrupted func() bool

	// RunLog receives one append-only line per attempt. Optional.
	RunLog io.Writer
}

// Step names one unit of work for logging purposes.
type Step struct {
	Name      string
	InputSize int    // prompt size in runes, logged on success
	Override  string // per-step configuration override (single mode)
}

// WorkFn performs the actual model call for one attempt. It must return
// non-empty text or an error.
type WorkFn func(ctx context.Context, client providers.LLMClient) (string, error)

// Executor runs steps per its configured mode.
type Executor struct {
	registry *providers.Registry
	opts     Options
	sink     logsink.Sink
	logger   *slog.Logger

	mu        sync.Mutex
	lastIndex int
	rng       *rand.Rand
}

// NewExecutor creates an Executor. A nil sink discards progress output; a nil
// logger defaults to slog.Default().
func NewExecutor(registry *providers.Registry, opts Options, sink logsink.Sink, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = logsink.Nop{}
	}
	if opts.Rounds <= 0 {
		opts.Rounds = DefaultRounds
	}
	if opts.Mode == "" {
		opts.Mode = ModeSingle
	}
	return &Executor{
		registry:  registry,
		opts:      opts,
		sink:      sink,
		logger:    logger,
		lastIndex: -1,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CheckInterrupted reports whether cooperative cancellation was requested.
func (e *Executor) CheckInterrupted() bool {
	return e.opts.CheckInterrupted != nil && e.opts.CheckInterrupted()
}

// Execute runs one step. In single mode the first failure propagates as a
// *StepError; in pool modes failures rotate to the next configuration and
// only full exhaustion surfaces, as ErrAllConfigsFailed.
// Cancellation always propagates as providers.ErrInterrupted.
func (e *Executor) Execute(ctx context.Context, step Step, work WorkFn) (string, error) {
	runID := uuid.New().String()

	if e.opts.Mode == ModeSingle || step.Override != "" {
		return e.executeSingle(ctx, runID, step, work)
	}
	return e.executePool(ctx, runID, step, work)
}

func (e *Executor) executeSingle(ctx context.Context, runID string, step Step, work WorkFn) (string, error) {
	name := step.Override
	if name == "" {
		name = e.opts.Primary
	}
	if name == "" {
		names := e.registry.Names()
		if len(names) != 1 {
			return "", &StepError{Step: step.Name, Err: errors.New("no primary llm configuration selected")}
		}
		name = names[0]
	}

	client, err := e.registry.Get(name)
	if err != nil {
		return "", &StepError{Step: step.Name, Config: name, Err: err}
	}

	text, err := e.attempt(ctx, runID, step, client, work)
	if err != nil {
		if errors.Is(err, providers.ErrInterrupted) {
			return "", err
		}
		return "", &StepError{Step: step.Name, Config: name, Err: err}
	}
	return text, nil
}

func (e *Executor) executePool(ctx context.Context, runID string, step Step, work WorkFn) (string, error) {
	clients := e.registry.Clients(e.poolNames())
	if len(clients) == 0 {
		return "", &StepError{Step: step.Name, Err: errors.New("llm pool is empty")}
	}

	for round := 0; round < e.opts.Rounds; round++ {
		for _, client := range e.roundOrder(clients) {
			text, err := e.attempt(ctx, runID, step, client, work)
			if err == nil {
				e.rememberLast(clients, client)
				return text, nil
			}
			if errors.Is(err, providers.ErrInterrupted) || errors.Is(err, context.Canceled) {
				return "", providers.ErrInterrupted
			}
			e.logger.Warn("configuration failed, trying next",
				"step", step.Name, "round", round+1,
				"config", client.Name(), "error", err)
		}
	}

	e.sink.Line(fmt.Sprintf("【%s】所有模型配置均失败，共 %d 轮", step.Name, e.opts.Rounds))
	return "", ErrAllConfigsFailed
}

func (e *Executor) poolNames() []string {
	if len(e.opts.Pool) > 0 {
		return e.opts.Pool
	}
	return e.registry.Names()
}

// roundOrder returns the client order for one round: rotated after the last
// successful configuration in sequential mode, shuffled in random mode.
func (e *Executor) roundOrder(clients []providers.LLMClient) []providers.LLMClient {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]providers.LLMClient, len(clients))
	copy(out, clients)

	switch e.opts.Mode {
	case ModeRandom:
		e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default:
		start := (e.lastIndex + 1) % len(out)
		rotated := append(out[start:], out[:start]...)
		out = rotated
	}
	return out
}

func (e *Executor) rememberLast(clients []providers.LLMClient, used providers.LLMClient) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, c := range clients {
		if c.Name() == used.Name() {
			e.lastIndex = i
			return
		}
	}
}

// attempt performs one configuration attempt with interrupt checks and
// uniform logging.
func (e *Executor) attempt(ctx context.Context, runID string, step Step, client providers.LLMClient, work WorkFn) (string, error) {
	if e.CheckInterrupted() {
		e.logAttempt(runID, step, client, 0, providers.ErrInterrupted)
		return "", providers.ErrInterrupted
	}
	if err := ctx.Err(); err != nil {
		return "", providers.ErrInterrupted
	}

	start := time.Now()
	e.sink.Line(fmt.Sprintf("【%s】使用配置 %s（%s）...", step.Name, client.Name(), client.ModelName()))

	text, err := work(ctx, client)
	if err == nil && strings.TrimSpace(text) == "" {
		err = providers.ErrEmptyOutput
	}
	if err != nil {
		e.sink.Line(fmt.Sprintf("【%s】配置 %s 失败：%v", step.Name, client.Name(), err))
		e.logAttempt(runID, step, client, 0, err)
		return "", err
	}

	e.sink.Line(fmt.Sprintf("【%s】完成，用时 %s，输出 %d 字",
		step.Name, time.Since(start).Round(time.Millisecond), len([]rune(text))))
	e.logAttempt(runID, step, client, len([]rune(text)), nil)
	return text, nil
}

// logAttempt writes one structured record to the slog logger and, when
// configured, one line to the append-only run log. These are observational
// side effects only; nothing reads them back for control flow.
func (e *Executor) logAttempt(runID string, step Step, client providers.LLMClient, outputSize int, err error) {
	if err != nil {
		e.logger.Warn("step attempt failed",
			"run_id", runID, "step", step.Name,
			"config", client.Name(), "model", client.ModelName(),
			"error", err)
	} else {
		e.logger.Info("step attempt succeeded",
			"run_id", runID, "step", step.Name,
			"config", client.Name(), "model", client.ModelName(),
			"input_size", step.InputSize, "output_size", outputSize)
	}

	if e.opts.RunLog == nil {
		return
	}
	status := "ok"
	detail := fmt.Sprintf("in=%d out=%d", step.InputSize, outputSize)
	if err != nil {
		status = "fail"
		detail = strings.ReplaceAll(err.Error(), "\n", " ")
	}
	fmt.Fprintf(e.opts.RunLog, "%s run=%s step=%q config=%s model=%s status=%s %s\n",
		time.Now().Format(time.RFC3339), runID, step.Name,
		client.Name(), client.ModelName(), status, detail)
}
