package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/weatherinsight/cache"
)

func TestFetchCurrent_CacheHit(t *testing.T) {
	c := cache.New()
	src := &fakeSource{}
	f := NewFetcher(c, src)

	seeded := londonSnapshot()
	require.NoError(t, c.Set("weather:London:metric", seeded, 600*time.Second))

	got, err := f.FetchCurrent(context.Background(), "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, seeded, got)
	assert.Zero(t, src.currentCalls.Load(), "source must not be called on a hit")
}

func TestFetchCurrent_MissThenHit(t *testing.T) {
	c := cache.New()
	src := &fakeSource{snap: londonSnapshot()}
	f := NewFetcher(c, src)
	ctx := context.Background()

	first, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, 15.2, first.Temperature)
	assert.Equal(t, 75, first.Humidity)
	assert.Equal(t, "light rain", first.Description)
	assert.Equal(t, int32(1), src.currentCalls.Load())

	cached, ok := c.Get("weather:London:metric")
	require.True(t, ok)
	assert.Equal(t, first, cached)

	second, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.currentCalls.Load(), "second call should be served from cache")
}

func TestFetchCurrent_UnitsAreSeparateEntries(t *testing.T) {
	c := cache.New()
	src := &fakeSource{snap: londonSnapshot()}
	f := NewFetcher(c, src)
	ctx := context.Background()

	_, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	_, ok := c.Get("weather:London:imperial")
	assert.False(t, ok)

	_, err = f.FetchCurrent(ctx, "London", Imperial)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.currentCalls.Load())
}

func TestFetchCurrent_NotFoundIsNotCached(t *testing.T) {
	c := cache.New()
	src := &fakeSource{err: fmt.Errorf("openweather: %w", ErrNotFound)}
	f := NewFetcher(c, src)

	_, err := f.FetchCurrent(context.Background(), "Nowhereville", Metric)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := c.Get("weather:Nowhereville:metric")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestFetchCurrent_PropagatesErrorKinds(t *testing.T) {
	kinds := []error{ErrNotFound, ErrRateLimited, ErrUpstreamAuth, ErrTimeout, errors.New("boom")}

	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			src := &fakeSource{err: kind}
			f := NewFetcher(cache.New(), src)

			_, err := f.FetchCurrent(context.Background(), "London", Metric)
			assert.ErrorIs(t, err, kind)
		})
	}
}

func TestFetchCurrent_RetriesAfterFailure(t *testing.T) {
	src := &fakeSource{err: ErrTimeout}
	f := NewFetcher(cache.New(), src)
	ctx := context.Background()

	_, err := f.FetchCurrent(ctx, "London", Metric)
	require.ErrorIs(t, err, ErrTimeout)

	src.err = nil
	src.snap = londonSnapshot()
	got, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, int32(2), src.currentCalls.Load())
}

func TestFetchCurrent_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.New(cache.WithClock(func() time.Time { return now }))
	src := &fakeSource{snap: londonSnapshot()}
	f := NewFetcher(c, src, WithTTL(30*time.Second))
	ctx := context.Background()

	_, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)

	now = now.Add(29 * time.Second)
	_, err = f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.currentCalls.Load())

	now = now.Add(2 * time.Second)
	_, err = f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.currentCalls.Load(), "expired entry should trigger a refetch")
}

func TestFetchCurrent_DefaultTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.New(cache.WithClock(func() time.Time { return now }))
	src := &fakeSource{snap: londonSnapshot()}
	f := NewFetcher(c, src, WithTTL(0)) // ignored
	ctx := context.Background()

	_, err := f.FetchCurrent(ctx, "London", Metric)
	require.NoError(t, err)

	now = now.Add(DefaultWeatherTTL - time.Second)
	_, ok := c.Get("weather:London:metric")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("weather:London:metric")
	assert.False(t, ok)
}

func TestFetchCurrent_ConcurrentMissesShareOneCall(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{snap: londonSnapshot(), gate: gate}
	f := NewFetcher(cache.New(), src)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]Snapshot, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.FetchCurrent(context.Background(), "London", Metric)
		}(i)
	}

	// wait until the single flight is inside the source, then let it finish
	require.Eventually(t, func() bool { return src.currentCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.currentCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "London", results[i].City)
	}
}

func TestFetchCurrent_CanceledCallerStillCaches(t *testing.T) {
	c := cache.New()
	gate := make(chan struct{})
	src := &fakeSource{snap: londonSnapshot(), gate: gate}
	f := NewFetcher(c, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.FetchCurrent(ctx, "London", Metric)
	}()

	require.Eventually(t, func() bool { return src.currentCalls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(gate)
	<-done

	_, ok := c.Get("weather:London:metric")
	assert.True(t, ok, "the upstream result should still be cached")
}

func TestFetchCurrent_PublishesOnlyFreshValues(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewFetcher(cache.New(), &fakeSource{snap: londonSnapshot()}, WithPublisher(pub))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.FetchCurrent(ctx, "London", Metric)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"weather:London:metric"}, pub.Keys())
}

func TestFetchForecast(t *testing.T) {
	c := cache.New()
	src := &fakeSource{forecast: Forecast{
		Country: "GB",
		Points:  []ForecastPoint{{Temperature: 12, Description: "clouds"}},
	}}
	f := NewFetcher(c, src)
	ctx := context.Background()

	fc, err := f.FetchForecast(ctx, "London", Metric)
	require.NoError(t, err)
	require.Len(t, fc.Points, 1)

	_, err = f.FetchForecast(ctx, "London", Metric)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.forecastCalls.Load())

	_, ok := c.Get("forecast:London:metric")
	assert.True(t, ok)
	_, ok = c.Get("weather:London:metric")
	assert.False(t, ok, "forecast must not populate the current-weather namespace")
}
