// Package app wires configuration into the cache, upstream clients and the
// two cache-fronted producers shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/cache"
	"github.com/briangreenhill/weatherinsight/internal/config"
	"github.com/briangreenhill/weatherinsight/internal/events"
	"github.com/briangreenhill/weatherinsight/internal/prompt"
	"github.com/briangreenhill/weatherinsight/internal/providers"
	"github.com/briangreenhill/weatherinsight/internal/weather"
	"github.com/briangreenhill/weatherinsight/openweather"
)

// defaultModels is used for providers other than the selected one
var defaultModels = map[string]string{
	"openai":    "o4-mini",
	"anthropic": "claude-sonnet-4-20250514",
}

type Services struct {
	Cache     *cache.TTL
	Fetcher   *weather.Fetcher
	Generator *weather.Generator
	Providers *providers.Registry
	Events    *events.Producer // nil when Kafka is not configured
}

// Build constructs the services for cfg. provider overrides LLM_PROVIDER
// when non-empty.
func Build(cfg config.Config, provider string, logger zerolog.Logger) (*Services, error) {
	source, err := openweather.New(cfg.OpenWeather.APIKey, openweather.WithBaseURL(cfg.OpenWeather.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}

	registry, err := setupProviderRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = cfg.LLM.Provider
	}
	llm, ok := registry.Get(provider)
	if !ok {
		available := registry.List()
		if len(available) == 0 {
			return nil, fmt.Errorf("no language-model providers are configured. Please set OPENAI_API_KEY or ANTHROPIC_API_KEY")
		}
		return nil, fmt.Errorf("provider '%s' not configured. Available providers: %v", provider, available)
	}

	s := &Services{Cache: cache.New(), Providers: registry}

	fetchOpts := []weather.Option{weather.WithTTL(cfg.WeatherTTL()), weather.WithLogger(logger.With().Str("component", "fetcher").Logger())}
	genOpts := []weather.Option{weather.WithTTL(cfg.InsightTTL()), weather.WithLogger(logger.With().Str("component", "generator").Logger())}
	if cfg.HasEvents() {
		s.Events, err = events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic, logger.With().Str("component", "events").Logger())
		if err != nil {
			return nil, err
		}
		fetchOpts = append(fetchOpts, weather.WithPublisher(s.Events))
		genOpts = append(genOpts, weather.WithPublisher(s.Events))
	}

	prompts := prompt.LoadWithFallback(cfg.LLM.PromptPath, logger)
	model := providers.NewInsightModel(llm, prompts, logger.With().Str("component", "llm").Logger())

	s.Fetcher = weather.NewFetcher(s.Cache, source, fetchOpts...)
	s.Generator = weather.NewGenerator(s.Cache, model, genOpts...)
	return s, nil
}

// setupProviderRegistry registers every provider that has an API key
func setupProviderRegistry(cfg config.Config) (*providers.Registry, error) {
	registry := providers.NewRegistry()
	keys := map[string]providers.Settings{
		"openai":    {Provider: "openai", APIKey: cfg.LLM.OpenAIAPIKey, BaseURL: cfg.LLM.OpenAIBaseURL},
		"anthropic": {Provider: "anthropic", APIKey: cfg.LLM.AnthropicAPIKey},
	}
	for name, s := range keys {
		if s.APIKey == "" {
			continue
		}
		s.Model = defaultModels[name]
		if name == cfg.LLM.Provider && cfg.LLM.Model != "" {
			s.Model = cfg.LLM.Model
		}
		p, err := providers.New(s)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}
	return registry, nil
}

// Close flushes pending events and empties the cache
func (s *Services) Close(ctx context.Context) error {
	s.Cache.Clear()
	if s.Events != nil {
		return s.Events.Close(ctx)
	}
	return nil
}
