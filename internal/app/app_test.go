package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/weatherinsight/internal/config"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.OpenWeather.APIKey = "owm"
	cfg.OpenWeather.BaseURL = "http://127.0.0.1:1/data/2.5"
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "o4-mini"
	cfg.LLM.OpenAIAPIKey = "sk"
	cfg.Cache.WeatherTTLSeconds = 600
	cfg.Cache.InsightTTLSeconds = 1800
	return cfg
}

func TestBuild(t *testing.T) {
	s, err := Build(testConfig(), "", zerolog.Nop())
	require.NoError(t, err)

	assert.NotNil(t, s.Fetcher)
	assert.NotNil(t, s.Generator)
	assert.Nil(t, s.Events)
	assert.Equal(t, []string{"openai"}, s.Providers.List())
	require.NoError(t, s.Close(context.Background()))
}

func TestBuild_ProviderOverride(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.AnthropicAPIKey = "ant"

	s, err := Build(cfg, "anthropic", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "openai"}, s.Providers.List())

	_, err = Build(cfg, "gemini", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available providers: [anthropic openai]")
}

func TestBuild_NoProviders(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.OpenAIAPIKey = ""

	_, err := Build(cfg, "", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no language-model providers")
}

func TestBuild_MissingWeatherKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenWeather.APIKey = ""

	_, err := Build(cfg, "", zerolog.Nop())
	assert.Error(t, err)
}

func TestClose_ClearsCache(t *testing.T) {
	s, err := Build(testConfig(), "", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Cache.Set("weather:London:metric", "x", time.Minute))

	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, s.Cache.Len())
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, NewLogger(io.Discard, "debug").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, NewLogger(io.Discard, "WARN").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(io.Discard, "loud").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(io.Discard, "").GetLevel())
}
