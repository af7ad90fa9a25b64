package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

// CurrentFetcher is satisfied by *weather.Fetcher
type CurrentFetcher interface {
	FetchCurrent(ctx context.Context, city string, units weather.Units) (weather.Snapshot, error)
}

// InsightGenerator is satisfied by *weather.Generator
type InsightGenerator interface {
	Generate(ctx context.Context, snap weather.Snapshot) (weather.Insight, error)
}

// Warmer processes warm tasks by running the normal fetch-then-generate
// pipeline, which leaves both results cached.
type Warmer struct {
	fetcher   CurrentFetcher
	generator InsightGenerator
	logger    zerolog.Logger
}

func NewWarmer(f CurrentFetcher, g InsightGenerator, logger zerolog.Logger) *Warmer {
	return &Warmer{fetcher: f, generator: g, logger: logger}
}

// HandleWarm is the asynq handler for TaskWarmCity. Transient upstream
// failures are retried by asynq; everything else is dropped.
func (w *Warmer) HandleWarm(ctx context.Context, t *asynq.Task) error {
	var p WarmPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.logger.Error().Err(err).Msg("bad warm payload")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	units, err := weather.ParseUnits(string(p.Units))
	if err != nil || p.City == "" {
		w.logger.Error().Str("city", p.City).Str("units", string(p.Units)).Msg("invalid warm payload")
		return fmt.Errorf("%w: invalid payload city=%q units=%q", asynq.SkipRetry, p.City, p.Units)
	}

	log := w.logger.With().Str("city", p.City).Str("units", string(units)).Logger()
	start := time.Now()

	snap, err := w.fetcher.FetchCurrent(ctx, p.City, units)
	if err == nil {
		_, err = w.generator.Generate(ctx, snap)
	}
	if err != nil {
		if weather.IsRetryable(err) {
			log.Warn().Err(err).Dur("took", time.Since(start)).Msg("warm failed, will retry")
			return err
		}
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("warm failed, dropping task")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log.Info().Dur("took", time.Since(start)).Msg("cache warmed")
	return nil
}
