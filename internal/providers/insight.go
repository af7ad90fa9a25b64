package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/internal/prompt"
	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const insightMaxTokens = 1024

// InsightModel turns weather snapshots into insights using a Completer
type InsightModel struct {
	llm     Completer
	prompts *prompt.Builder
	logger  zerolog.Logger
}

var _ weather.Model = (*InsightModel)(nil)

// NewInsightModel wraps llm. A nil prompts uses the built-in prompt.
func NewInsightModel(llm Completer, prompts *prompt.Builder, logger zerolog.Logger) *InsightModel {
	if prompts == nil {
		prompts = prompt.NewBuilder()
	}
	return &InsightModel{llm: llm, prompts: prompts, logger: logger}
}

// Generate asks the model about snap. Every error wraps weather.ErrGeneration;
// provider authentication failures also wrap weather.ErrUpstreamAuth.
func (m *InsightModel) Generate(ctx context.Context, snap weather.Snapshot) (weather.Insight, error) {
	log := m.logger.With().
		Str("llm_request_id", uuid.NewString()).
		Str("provider", m.llm.Name()).
		Str("city", snap.City).
		Logger()

	start := time.Now()
	resp, err := m.llm.Complete(ctx, Request{
		System:    m.prompts.System(),
		User:      m.prompts.User(snap),
		MaxTokens: insightMaxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("insight generation failed")
		if IsAuthError(err) {
			return weather.Insight{}, fmt.Errorf("%s: %w: %w", m.llm.Name(), weather.ErrGeneration, weather.ErrUpstreamAuth)
		}
		return weather.Insight{}, fmt.Errorf("%s: %w: %w", m.llm.Name(), weather.ErrGeneration, err)
	}

	insight, err := parseInsight(resp.Content)
	if err != nil {
		log.Warn().Err(err).Str("content", truncate(resp.Content, 200)).Msg("unparseable model output")
		return weather.Insight{}, fmt.Errorf("%s: %w: %w", m.llm.Name(), weather.ErrGeneration, err)
	}

	log.Debug().
		Int("tokens", resp.TokensUsed).
		Dur("took", time.Since(start)).
		Str("comfort_level", string(insight.ComfortLevel)).
		Msg("insight generated")
	return insight, nil
}

type insightJSON struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
	ComfortLevel   string `json:"comfort_level"`
	BringUmbrella  *bool  `json:"should_bring_umbrella"`
}

// parseInsight extracts the JSON object from model output, tolerating
// markdown fences and surrounding prose.
func parseInsight(content string) (weather.Insight, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return weather.Insight{}, errors.New("no JSON object in model output")
	}

	var raw insightJSON
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return weather.Insight{}, fmt.Errorf("decode model output: %w", err)
	}

	if strings.TrimSpace(raw.Summary) == "" {
		return weather.Insight{}, errors.New("model output missing summary")
	}
	if strings.TrimSpace(raw.Recommendation) == "" {
		return weather.Insight{}, errors.New("model output missing recommendation")
	}
	level, ok := weather.ParseComfortLevel(raw.ComfortLevel)
	if !ok {
		return weather.Insight{}, fmt.Errorf("model output has unknown comfort_level %q", raw.ComfortLevel)
	}
	if raw.BringUmbrella == nil {
		return weather.Insight{}, errors.New("model output missing should_bring_umbrella")
	}

	return weather.Insight{
		Summary:        strings.TrimSpace(raw.Summary),
		Recommendation: strings.TrimSpace(raw.Recommendation),
		ComfortLevel:   level,
		BringUmbrella:  *raw.BringUmbrella,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
