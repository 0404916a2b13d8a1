package llm

import (
	"fmt"
	"sort"

	"NewsDebate/internal/config"
	"NewsDebate/internal/ports"
)

// Registry keeps a mapping from provider names to engine implementations.
type Registry struct {
	engines map[string]ports.ConversationEngine
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: map[string]ports.ConversationEngine{}}
}

// NewDefaultRegistry registers every built-in provider from configuration.
func NewDefaultRegistry(cfg config.EngineConfig) *Registry {
	r := NewRegistry()
	r.Register(NewOpenAIEngine(cfg.OpenAI))
	r.Register(NewAnthropicEngine(cfg.Anthropic))
	r.Register(NewRemoteEngine(cfg.Remote))
	return r
}

// Register adds or replaces an engine implementation.
func (r *Registry) Register(engine ports.ConversationEngine) {
	if r.engines == nil {
		r.engines = map[string]ports.ConversationEngine{}
	}
	r.engines[engine.Name()] = engine
}

// Resolve returns an engine by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.ConversationEngine, error) {
	if engine, ok := r.engines[name]; ok {
		return engine, nil
	}
	return nil, fmt.Errorf("engine %s is not registered (have %v)", name, r.Names())
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
