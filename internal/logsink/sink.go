// Package logsink defines the minimal logging surface the generation pipeline
// needs: append a line, append a fragment (streaming token display), and
// replace the most recently emitted line (live counters).
package logsink

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Sink receives human-readable progress output from the pipeline.
// It is distinct from structured slog logging: slog records go to operators,
// Sink output goes to whatever front-end is driving the run.
type Sink interface {
	// Line appends msg as a complete line.
	Line(msg string)

	// Fragment appends msg without a trailing newline. Used for incremental
	// display of streamed model output.
	Fragment(msg string)

	// ReplaceLast replaces the most recently emitted line with msg.
	ReplaceLast(msg string)
}

// SlogSink adapts a *slog.Logger to the Sink interface. Fragments are
// buffered and flushed as a single line; ReplaceLast logs normally since
// structured logs are append-only.
type SlogSink struct {
	mu     sync.Mutex
	logger *slog.Logger
	buf    strings.Builder
}

// NewSlogSink creates a SlogSink. A nil logger defaults to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Line(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	s.logger.Info(msg)
}

func (s *SlogSink) Fragment(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.WriteString(msg)
}

func (s *SlogSink) ReplaceLast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	s.logger.Info(msg)
}

func (s *SlogSink) flushLocked() {
	if s.buf.Len() > 0 {
		s.logger.Info(s.buf.String())
		s.buf.Reset()
	}
}

// MemorySink collects emitted lines in memory. Used in tests and by
// front-ends that render their own log view.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
	open  bool // last line still receiving fragments
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Line(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, msg)
	s.open = false
}

func (s *MemorySink) Fragment(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open && len(s.lines) > 0 {
		s.lines[len(s.lines)-1] += msg
		return
	}
	s.lines = append(s.lines, msg)
	s.open = true
}

func (s *MemorySink) ReplaceLast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		s.lines = append(s.lines, msg)
	} else {
		s.lines[len(s.lines)-1] = msg
	}
	s.open = false
}

// Lines returns a copy of all emitted lines.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// WriterSink writes progress to an io.Writer, typically a terminal.
// Fragments print inline; ReplaceLast rewrites the current line with a
// carriage return.
type WriterSink struct {
	mu   sync.Mutex
	w    io.Writer
	open bool // fragments written without a closing newline
}

// NewWriterSink creates a WriterSink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Line(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		fmt.Fprintln(s.w)
		s.open = false
	}
	fmt.Fprintln(s.w, msg)
}

func (s *WriterSink) Fragment(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, msg)
	s.open = true
}

func (s *WriterSink) ReplaceLast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s", msg)
	s.open = true
}

// Nop is a Sink that discards everything.
type Nop struct{}

func (Nop) Line(string)        {}
func (Nop) Fragment(string)    {}
func (Nop) ReplaceLast(string) {}
