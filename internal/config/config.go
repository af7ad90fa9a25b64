// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OpenWeather OpenWeatherConfig
	LLM         LLMConfig
	Cache       CacheConfig
	Jobs        JobsConfig
	Events      EventsConfig
}

// OpenWeatherConfig holds OpenWeatherMap settings
type OpenWeatherConfig struct {
	APIKey  string `env:"OPENWEATHER_API_KEY"`
	BaseURL string `env:"OPENWEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`
}

// LLMConfig selects the language model used for insights
type LLMConfig struct {
	Provider        string `env:"LLM_PROVIDER" envDefault:"openai"`
	Model           string `env:"LLM_MODEL" envDefault:"o4-mini"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	PromptPath      string `env:"INSIGHT_PROMPT_PATH"`
}

// CacheConfig holds cache lifetimes, in seconds
type CacheConfig struct {
	WeatherTTLSeconds    int `env:"WEATHER_CACHE_TTL" envDefault:"600"`
	InsightTTLSeconds    int `env:"LLM_CACHE_TTL" envDefault:"1800"`
	SweepIntervalSeconds int `env:"CACHE_SWEEP_INTERVAL" envDefault:"0"`
}

// JobsConfig configures the optional cache-warm task queue
type JobsConfig struct {
	RedisURL     string   `env:"REDIS_URL"`
	WarmCities   []string `env:"WARM_CITIES" envSeparator:","`
	WarmSchedule string   `env:"WARM_SCHEDULE" envDefault:"@every 10m"`
}

// EventsConfig configures the optional Kafka publisher
type EventsConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"weather-insights"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists. Variables already set win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Jobs.WarmCities = trimAll(cfg.Jobs.WarmCities)
	cfg.Events.Brokers = trimAll(cfg.Events.Brokers)
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return cfg, nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate reports every missing or invalid setting at once
func (c Config) Validate() error {
	var errs []error
	if c.OpenWeather.APIKey == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY is required"))
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
		if c.LLMAPIKey() == "" {
			errs = append(errs, fmt.Errorf("%s is required for LLM_PROVIDER=%s", c.llmKeyVar(), c.LLM.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLM.Provider))
	}
	if c.Cache.WeatherTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("WEATHER_CACHE_TTL must be positive, got %d", c.Cache.WeatherTTLSeconds))
	}
	if c.Cache.InsightTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("LLM_CACHE_TTL must be positive, got %d", c.Cache.InsightTTLSeconds))
	}
	if c.Cache.SweepIntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("CACHE_SWEEP_INTERVAL must not be negative, got %d", c.Cache.SweepIntervalSeconds))
	}
	return errors.Join(errs...)
}

// LLMAPIKey returns the key for the selected provider
func (c Config) LLMAPIKey() string {
	if c.LLM.Provider == "anthropic" {
		return c.LLM.AnthropicAPIKey
	}
	return c.LLM.OpenAIAPIKey
}

// LLMBaseURL returns the endpoint override for the selected provider, if any
func (c Config) LLMBaseURL() string {
	if c.LLM.Provider == "openai" {
		return c.LLM.OpenAIBaseURL
	}
	return ""
}

func (c Config) llmKeyVar() string {
	if c.LLM.Provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (c Config) WeatherTTL() time.Duration {
	return time.Duration(c.Cache.WeatherTTLSeconds) * time.Second
}

func (c Config) InsightTTL() time.Duration {
	return time.Duration(c.Cache.InsightTTLSeconds) * time.Second
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalSeconds) * time.Second
}

// HasJobs returns true if the task queue is configured
func (c Config) HasJobs() bool {
	return c.Jobs.RedisURL != ""
}

// HasEvents returns true if Kafka publishing is configured
func (c Config) HasEvents() bool {
	return len(c.Events.Brokers) > 0
}
