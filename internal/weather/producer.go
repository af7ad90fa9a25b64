package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/weatherinsight/cache"
)

// Publisher receives every freshly produced value together with its cache
// key. Cache hits are not published.
type Publisher interface {
	Publish(ctx context.Context, key string, value any)
}

type options struct {
	ttl       time.Duration
	logger    zerolog.Logger
	publisher Publisher
}

// Option configures a Fetcher or Generator
type Option func(*options)

// WithTTL sets how long produced values stay cached. Non-positive values are
// ignored and the default is kept.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for cache hit/miss tracing
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPublisher sets a sink for freshly produced values
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func buildOptions(defaultTTL time.Duration, opts []Option) options {
	o := options{ttl: defaultTTL, logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// producer implements cache-or-produce for one key namespace. Concurrent
// misses on the same key share a single upstream call.
type producer struct {
	cache cache.ReadWriter
	group singleflight.Group
	options
}

func load[V any](ctx context.Context, p *producer, key string, produce func(context.Context) (V, error)) (V, error) {
	if v, ok := cache.Lookup[V](p.cache, key); ok {
		p.logger.Debug().Str("key", key).Msg("cache hit")
		return v, nil
	}

	res, err, shared := p.group.Do(key, func() (any, error) {
		// a flight that finished just before this one started may have
		// filled the entry already
		if v, ok := cache.Lookup[V](p.cache, key); ok {
			return v, nil
		}

		// the flight is shared, so one caller going away must not cancel it
		flightCtx := context.WithoutCancel(ctx)
		start := time.Now()
		v, err := produce(flightCtx)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(key, v, p.ttl); err != nil {
			p.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		p.logger.Debug().Str("key", key).Dur("took", time.Since(start)).Msg("cache miss, produced")

		if p.publisher != nil {
			p.publisher.Publish(flightCtx, key, v)
		}
		return v, nil
	})
	if shared {
		p.logger.Debug().Str("key", key).Msg("joined in-flight request")
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
