package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// upstreams fakes OpenWeatherMap and the OpenAI chat completions API
type upstreams struct {
	weather *httptest.Server
	llm     *httptest.Server

	weatherCalls atomic.Int32
	llmCalls     atomic.Int32
}

const insightContent = `{"summary":"Cool and rainy day in London with temperatures around 15°C.","recommendation":"Wear a light jacket and bring an umbrella.","comfort_level":"moderate","should_bring_umbrella":true}`

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{}

	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		u.weatherCalls.Add(1)
		if !strings.EqualFold(r.URL.Query().Get("q"), "London") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"London","dt":1234567890,"sys":{"country":"GB"},
			"main":{"temp":15.2,"feels_like":13.8,"humidity":75},
			"weather":[{"description":"light rain"}],"wind":{"speed":5.5}}`))
	})
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		u.weatherCalls.Add(1)
		_, _ = w.Write([]byte(`{"city":{"name":"London","country":"GB"},"list":[
			{"dt":1700000000,"main":{"temp":10.1,"feels_like":8,"humidity":80},"weather":[{"description":"overcast clouds"}],"wind":{"speed":3.2},"pop":0.2}]}`))
	})
	u.weather = httptest.NewServer(mux)
	t.Cleanup(u.weather.Close)

	u.llm = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.llmCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": insightContent}}},
			"usage":   map[string]int{"total_tokens": 120},
		})
	}))
	t.Cleanup(u.llm.Close)

	return u
}

// setEnv points configuration at the fakes
func (u *upstreams) setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "owm-test")
	t.Setenv("OPENWEATHER_BASE_URL", u.weather.URL+"/data/2.5")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", u.llm.URL)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("INSIGHT_PROMPT_PATH", "")
}
