package weather

import (
	"context"
	"time"

	"github.com/briangreenhill/weatherinsight/cache"
)

// DefaultWeatherTTL is how long provider payloads are cached
const DefaultWeatherTTL = 600 * time.Second

// Source is the weather-data collaborator. Implementations own transport,
// authentication and error classification (see the Err* kinds).
type Source interface {
	Current(ctx context.Context, city string, units Units) (Snapshot, error)
	Forecast(ctx context.Context, city string, units Units) (Forecast, error)
}

// Fetcher serves weather data from the cache, falling back to the Source
type Fetcher struct {
	source Source
	p      *producer
}

// NewFetcher creates a Fetcher writing into c
func NewFetcher(c cache.ReadWriter, source Source, opts ...Option) *Fetcher {
	return &Fetcher{
		source: source,
		p:      &producer{cache: c, options: buildOptions(DefaultWeatherTTL, opts)},
	}
}

// FetchCurrent returns the current weather for city. A cached snapshot is
// returned as is; on a miss the Source is called once and its result cached.
// Source errors are returned unchanged and nothing is cached.
func (f *Fetcher) FetchCurrent(ctx context.Context, city string, units Units) (Snapshot, error) {
	key := cache.WeatherKey(city, string(units))
	return load(ctx, f.p, key, func(ctx context.Context) (Snapshot, error) {
		return f.source.Current(ctx, city, units)
	})
}

// FetchForecast is FetchCurrent for the multi-day forecast
func (f *Fetcher) FetchForecast(ctx context.Context, city string, units Units) (Forecast, error) {
	key := cache.ForecastKey(city, string(units))
	return load(ctx, f.p, key, func(ctx context.Context) (Forecast, error) {
		return f.source.Forecast(ctx, city, units)
	})
}
