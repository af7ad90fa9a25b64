// Package weather holds the domain types and the two cache-fronted
// producers: Fetcher for provider weather data and Generator for
// language-model insights. Both share a single cache instance.
package weather

import (
	"fmt"
	"strings"
	"time"
)

// Units selects the unit system requested from the weather provider
type Units string

const (
	Metric   Units = "metric"   // °C, m/s
	Imperial Units = "imperial" // °F, mph
	Standard Units = "standard" // K, m/s
)

// ParseUnits validates a units string. Empty means metric.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return Metric, nil
	case Metric, Imperial, Standard:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q (want metric, imperial or standard)", ErrInvalidUnits, s)
	}
}

// Symbol returns the temperature unit symbol
func (u Units) Symbol() string {
	switch u {
	case Imperial:
		return "°F"
	case Standard:
		return "K"
	default:
		return "°C"
	}
}

// Snapshot is the current weather for one city as reported by the provider
type Snapshot struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"conditions"`
	WindSpeed   float64   `json:"wind_speed"`
	ObservedAt  time.Time `json:"observed_at"`
	Units       Units     `json:"units"`
}

// ComfortLevel is the model's coarse judgement of how pleasant it is outside
type ComfortLevel string

const (
	Comfortable   ComfortLevel = "comfortable"
	Moderate      ComfortLevel = "moderate"
	Uncomfortable ComfortLevel = "uncomfortable"
)

// ParseComfortLevel accepts the three known levels, case-insensitively
func ParseComfortLevel(s string) (ComfortLevel, bool) {
	switch l := ComfortLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case Comfortable, Moderate, Uncomfortable:
		return l, true
	default:
		return "", false
	}
}

// Insight is the structured result of a language-model call
type Insight struct {
	Summary        string       `json:"summary"`
	Recommendation string       `json:"recommendation"`
	ComfortLevel   ComfortLevel `json:"comfort_level"`
	BringUmbrella  bool         `json:"should_bring_umbrella"`
}

// ForecastPoint is one 3-hourly step of a forecast
type ForecastPoint struct {
	At                  time.Time `json:"at"`
	Temperature         float64   `json:"temperature"`
	FeelsLike           float64   `json:"feels_like"`
	Humidity            int       `json:"humidity"`
	Description         string    `json:"conditions"`
	WindSpeed           float64   `json:"wind_speed"`
	PrecipitationChance float64   `json:"precipitation_chance"`
}

// Forecast is the multi-day forecast for one city
type Forecast struct {
	City    string          `json:"city"`
	Country string          `json:"country"`
	Units   Units           `json:"units"`
	Points  []ForecastPoint `json:"points"`
}
