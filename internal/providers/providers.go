// Package providers contains the language-model clients used to generate
// weather insights.
package providers

import (
	"context"
	"fmt"
	"sort"
)

// Request is a single prompt sent to a model.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Response is the raw text a model returned.
type Response struct {
	Content    string
	TokensUsed int
}

// Completer defines the interface that all language-model providers must implement
type Completer interface {
	// Name returns the name of the provider (e.g., "openai", "anthropic")
	Name() string

	// Complete sends req and returns the model's text. Transient failures
	// are retried inside the provider.
	Complete(ctx context.Context, req Request) (Response, error)
}

// Settings selects and configures one provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// New creates a provider by name.
func New(s Settings) (Completer, error) {
	switch s.Provider {
	case "openai":
		return NewOpenAI(s.APIKey, s.Model, s.BaseURL)
	case "anthropic":
		return NewAnthropic(s.APIKey, s.Model, s.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

// Registry manages the configured language-model providers
type Registry struct {
	providers map[string]Completer
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Completer),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Completer) {
	r.providers[provider.Name()] = provider
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Completer, bool) {
	provider, exists := r.providers[name]
	return provider, exists
}

// List returns all registered provider names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
