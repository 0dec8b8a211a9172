package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// RegistryConfig describes the configured model endpoints.
type RegistryConfig struct {
	LLMConfigs map[string]OpenAICompatConfig
}

// Registry holds the constructed clients, keyed by configuration name.
// Constructed once at startup and passed by reference; no package-level
// singleton.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry builds clients for every enabled configuration.
// A nil logger defaults to slog.Default().
func NewRegistry(cfg RegistryConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		clients: make(map[string]LLMClient, len(cfg.LLMConfigs)),
		logger:  logger,
	}
	for name, llm := range cfg.LLMConfigs {
		llm.Name = name
		r.clients[name] = NewOpenAICompatClient(llm, logger)
		logger.Debug("registered llm configuration", "name", name, "model", llm.Model)
	}
	return r
}

// Register adds or replaces a client. Used by tests to install mocks.
func (r *Registry) Register(client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name()] = client
}

// Get returns the client for a configuration name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm configuration %q", name)
	}
	return client, nil
}

// Names returns all configuration names, sorted for stable pool ordering.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clients returns the clients for the given names, skipping unknown ones.
func (r *Registry) Clients(names []string) []LLMClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LLMClient, 0, len(names))
	for _, name := range names {
		if c, ok := r.clients[name]; ok {
			out = append(out, c)
		} else {
			r.logger.Warn("pool references unknown llm configuration", "name", name)
		}
	}
	return out
}
