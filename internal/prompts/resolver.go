// Package prompts holds the generation prompt templates: embedded defaults
// keyed by step, optionally overridden per project by plain text files under
// <project>/prompts/<key>.txt. Templates are opaque formattable text; the
// pipeline fills them with Go text/template.
package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"text/template"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots,
// underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

// Prompt is one registered template.
type Prompt struct {
	Key         string
	Text        string
	Description string
	Variables   []string
	Hash        string
}

// Resolver resolves prompts with project-level overrides.
// Resolution order: override file > embedded default.
type Resolver struct {
	mu           sync.RWMutex
	embedded     map[string]Prompt
	overridesDir string
	logger       *slog.Logger
}

// NewResolver creates a resolver. overridesDir may be empty (no overrides).
// A nil logger defaults to slog.Default().
func NewResolver(overridesDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		embedded:     make(map[string]Prompt),
		overridesDir: overridesDir,
		logger:       logger,
	}
	for _, p := range defaultPrompts {
		r.Register(p)
	}
	return r
}

// Register registers an embedded prompt, computing hash and variables when
// not provided.
func (r *Resolver) Register(p Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Hash == "" {
		p.Hash = HashText(p.Text)
	}
	if p.Variables == nil {
		p.Variables = ExtractVariables(p.Text)
	}
	r.embedded[p.Key] = p
	r.logger.Debug("registered prompt", "key", p.Key, "vars", p.Variables)
}

// Get returns the effective prompt for a key: the project override when an
// override file exists, otherwise the embedded default.
func (r *Resolver) Get(key string) (Prompt, error) {
	if !validKeyPattern.MatchString(key) {
		return Prompt{}, fmt.Errorf("invalid prompt key: %s", key)
	}

	r.mu.RLock()
	p, ok := r.embedded[key]
	r.mu.RUnlock()
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt key: %s", key)
	}

	if r.overridesDir != "" {
		path := filepath.Join(r.overridesDir, key+".txt")
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) != "" {
			override := p
			override.Text = string(data)
			override.Variables = ExtractVariables(override.Text)
			override.Hash = HashText(override.Text)
			r.logger.Debug("using prompt override", "key", key, "path", path)
			return override, nil
		}
	}
	return p, nil
}

// Keys returns the registered prompt keys.
func (r *Resolver) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.embedded))
	for k := range r.embedded {
		keys = append(keys, k)
	}
	return keys
}

// Render resolves a key and fills its template with data. Missing fields
// render as zero values; the prompt text is model-facing so a hole is better
// than an aborted run.
func (r *Resolver) Render(key string, data any) (string, error) {
	p, err := r.Get(key)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(key).Option("missingkey=zero").Parse(p.Text)
	if err != nil {
		return "", fmt.Errorf("prompt %s does not parse: %w", key, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt %s failed to render: %w", key, err)
	}
	return b.String(), nil
}
