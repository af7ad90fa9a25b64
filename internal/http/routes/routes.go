package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/weatherinsight/cache"
	appmw "github.com/briangreenhill/weatherinsight/internal/http/middleware"
	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const ServiceName = "weatherinsight"

type WeatherFetcher interface {
	FetchCurrent(ctx context.Context, city string, units weather.Units) (weather.Snapshot, error)
	FetchForecast(ctx context.Context, city string, units weather.Units) (weather.Forecast, error)
}

type InsightGenerator interface {
	Generate(ctx context.Context, snap weather.Snapshot) (weather.Insight, error)
}

type CacheAdmin interface {
	Stats() cache.Stats
	Clear()
}

type WarmQueue interface {
	EnqueueWarm(ctx context.Context, city string, units weather.Units) (string, error)
}

type Server struct {
	Router    *chi.Mux
	Fetcher   WeatherFetcher
	Generator InsightGenerator
	Cache     CacheAdmin
	Queue     WarmQueue // optional; nil disables POST /cache/warm
}

type ServerOptions struct {
	Logger    zerolog.Logger
	Fetcher   WeatherFetcher
	Generator InsightGenerator
	Cache     CacheAdmin
	Queue     WarmQueue
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Fetcher: opts.Fetcher, Generator: opts.Generator, Cache: opts.Cache, Queue: opts.Queue}

	r.Get("/health", s.handleHealth)
	r.Get("/weather", s.handleWeather)
	r.Get("/forecast", s.handleForecast)
	r.Route("/cache", func(cr chi.Router) {
		cr.Get("/stats", s.handleCacheStats)
		cr.Delete("/", s.handleCacheClear)
		cr.Post("/warm", s.handleCacheWarm)
	})

	return s
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type weatherResponse struct {
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Temperature float64         `json:"temperature"`
	FeelsLike   float64         `json:"feels_like"`
	Humidity    int             `json:"humidity"`
	Conditions  string          `json:"conditions"`
	WindSpeed   float64         `json:"wind_speed"`
	Insight     weather.Insight `json:"insight"`
}

type cacheStatsResponse struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type warmResponse struct {
	TaskID string        `json:"task_id"`
	City   string        `json:"city"`
	Units  weather.Units `json:"units"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Service: ServiceName})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city, units, ok := cityAndUnits(w, r)
	if !ok {
		return
	}

	snap, err := s.Fetcher.FetchCurrent(r.Context(), city, units)
	if err != nil {
		writeUpstreamError(w, r, city, err)
		return
	}
	insight, err := s.Generator.Generate(r.Context(), snap)
	if err != nil {
		writeUpstreamError(w, r, city, err)
		return
	}

	writeJSON(w, r, http.StatusOK, weatherResponse{
		City:        snap.City,
		Country:     snap.Country,
		Temperature: snap.Temperature,
		FeelsLike:   snap.FeelsLike,
		Humidity:    snap.Humidity,
		Conditions:  snap.Description,
		WindSpeed:   snap.WindSpeed,
		Insight:     insight,
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	city, units, ok := cityAndUnits(w, r)
	if !ok {
		return
	}

	fc, err := s.Fetcher.FetchForecast(r.Context(), city, units)
	if err != nil {
		writeUpstreamError(w, r, city, err)
		return
	}
	writeJSON(w, r, http.StatusOK, fc)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	st := s.Cache.Stats()
	keys := st.Keys
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, r, http.StatusOK, cacheStatsResponse{Size: st.Size, Keys: keys})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.Cache.Clear()
	hlog.FromRequest(r).Info().Msg("cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCacheWarm(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Cache warming is not configured.")
		return
	}
	city, units, ok := cityAndUnits(w, r)
	if !ok {
		return
	}

	id, err := s.Queue.EnqueueWarm(r.Context(), city, units)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("city", city).Msg("enqueue warm failed")
		writeError(w, r, http.StatusServiceUnavailable, "Could not queue cache warm. Please try again later.")
		return
	}
	writeJSON(w, r, http.StatusAccepted, warmResponse{TaskID: id, City: city, Units: units})
}

// cityAndUnits reads and validates the city and units query parameters,
// writing a 400 when they are unusable
func cityAndUnits(w http.ResponseWriter, r *http.Request) (string, weather.Units, bool) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		writeError(w, r, http.StatusBadRequest, "Query parameter 'city' is required.")
		return "", "", false
	}
	units, err := weather.ParseUnits(q.Get("units"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Query parameter 'units' must be metric, imperial or standard.")
		return "", "", false
	}
	return city, units, true
}

// writeUpstreamError maps the error taxonomy onto HTTP responses. Details of
// authentication and unexpected failures are logged, never returned.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, city string, err error) {
	log := hlog.FromRequest(r)
	switch {
	case errors.Is(err, weather.ErrNotFound):
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("City '%s' not found. Please check the spelling and try again.", city))
	case errors.Is(err, weather.ErrRateLimited):
		log.Warn().Err(err).Msg("upstream rate limited")
		writeError(w, r, http.StatusTooManyRequests, "API rate limit exceeded. Please try again later.")
	case errors.Is(err, weather.ErrUpstreamAuth):
		log.Error().Err(err).Msg("upstream authentication failed")
		writeError(w, r, http.StatusInternalServerError, "Upstream authentication failed. Please check API key configuration.")
	case errors.Is(err, weather.ErrTimeout):
		log.Warn().Err(err).Msg("upstream timed out")
		writeError(w, r, http.StatusGatewayTimeout, "Weather API request timed out. Please try again.")
	case errors.Is(err, weather.ErrGeneration):
		log.Error().Err(err).Msg("insight generation failed")
		writeError(w, r, http.StatusBadGateway, "Could not generate weather insight. Please try again later.")
	default:
		log.Error().Err(err).Msg("unexpected error")
		writeError(w, r, http.StatusInternalServerError, "Internal server error.")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write response")
	}
}
