// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/cache"
	"github.com/briangreenhill/weatherinsight/internal/app"
	"github.com/briangreenhill/weatherinsight/internal/config"
	"github.com/briangreenhill/weatherinsight/internal/http/routes"
	"github.com/briangreenhill/weatherinsight/internal/jobs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logStartup(logger, cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.Build(cfg, "", logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build services")
	}

	if every := cfg.SweepInterval(); every > 0 {
		go cache.NewSweeper(svc.Cache, every, logger.With().Str("component", "sweeper").Logger()).Run(ctx)
	}

	// Task queue: on-demand warms are enqueued here and processed in-process
	// so they fill this server's cache.
	var queue routes.WarmQueue
	if cfg.HasJobs() {
		opt, err := jobs.RedisOpt(cfg.Jobs.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("task queue")
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = jobs.Ping(pingCtx, opt)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("task queue")
		}

		jobLog := logger.With().Str("component", "jobs").Logger()
		q := jobs.NewQueue(opt, jobLog)
		defer q.Close()
		queue = q

		worker, mux := jobs.NewServer(opt, jobs.NewWarmer(svc.Fetcher, svc.Generator, jobLog), jobLog)
		if err := worker.Start(mux); err != nil {
			logger.Fatal().Err(err).Msg("start task worker")
		}
		defer worker.Shutdown()
		logger.Info().Str("redis", opt.Addr).Msg("task queue enabled")
	}

	s := routes.New(routes.ServerOptions{
		Logger:    logger,
		Fetcher:   svc.Fetcher,
		Generator: svc.Generator,
		Cache:     svc.Cache,
		Queue:     queue,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := svc.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("close services")
	}
	logger.Info().Msg("cache cleared, bye")
}

// logStartup reports which credentials are present, never their values
func logStartup(logger zerolog.Logger, cfg config.Config) {
	logger.Info().
		Str("port", cfg.Port).
		Bool("openweather_key", cfg.OpenWeather.APIKey != "").
		Str("llm_provider", cfg.LLM.Provider).
		Str("llm_model", cfg.LLM.Model).
		Bool("llm_key", cfg.LLMAPIKey() != "").
		Int("weather_ttl_s", cfg.Cache.WeatherTTLSeconds).
		Int("llm_ttl_s", cfg.Cache.InsightTTLSeconds).
		Int("sweep_interval_s", cfg.Cache.SweepIntervalSeconds).
		Bool("task_queue", cfg.HasJobs()).
		Bool("events", cfg.HasEvents()).
		Msg("weatherinsight starting")
}
