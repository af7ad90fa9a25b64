package cache

import "fmt"

// Key namespaces. Each producer writes under its own prefix so that entries
// from different producers sharing one cache never collide.
const (
	WeatherPrefix  = "weather"
	InsightPrefix  = "insight"
	ForecastPrefix = "forecast"
)

// WeatherKey builds the key for a current-weather payload
func WeatherKey(city, units string) string {
	return fmt.Sprintf("%s:%s:%s", WeatherPrefix, city, units)
}

// ForecastKey builds the key for a forecast payload
func ForecastKey(city, units string) string {
	return fmt.Sprintf("%s:%s:%s", ForecastPrefix, city, units)
}

// InsightKey builds the key for a generated insight. hash identifies the
// weather reading the insight was generated from.
func InsightKey(city, hash string) string {
	return fmt.Sprintf("%s:%s:%s", InsightPrefix, city, hash)
}
