// cmd/worker/main.go runs the periodic cache-warm scheduler. Tasks are
// processed by the API servers, which own the caches being warmed. Run a
// single instance per Redis.
package main

import (
	"os"

	"github.com/briangreenhill/weatherinsight/internal/app"
	"github.com/briangreenhill/weatherinsight/internal/config"
	"github.com/briangreenhill/weatherinsight/internal/jobs"
	"github.com/briangreenhill/weatherinsight/internal/weather"
)

func main() {
	cfg, err := config.Load()
	logger := app.NewLogger(os.Stdout, cfg.LogLevel).With().Str("component", "scheduler").Logger()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if !cfg.HasJobs() {
		logger.Fatal().Msg("REDIS_URL is required")
	}
	if len(cfg.Jobs.WarmCities) == 0 {
		logger.Fatal().Msg("WARM_CITIES is empty, nothing to schedule")
	}

	opt, err := jobs.RedisOpt(cfg.Jobs.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue")
	}

	scheduler, err := jobs.NewScheduler(opt, cfg.Jobs.WarmSchedule, cfg.Jobs.WarmCities, weather.Metric, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("register warm tasks")
	}

	logger.Info().Strs("cities", cfg.Jobs.WarmCities).Str("schedule", cfg.Jobs.WarmSchedule).Msg("scheduler running...")
	// Run blocks until SIGINT/SIGTERM
	if err := scheduler.Run(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
}
