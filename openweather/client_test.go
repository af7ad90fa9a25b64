package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const londonJSON = `{
  "name": "London",
  "dt": 1234567890,
  "sys": {"country": "GB"},
  "main": {"temp": 15.2, "feels_like": 13.8, "humidity": 75},
  "weather": [{"main": "Rain", "description": "light rain"}],
  "wind": {"speed": 5.5}
}`

const forecastJSONBody = `{
  "city": {"name": "London", "country": "GB"},
  "list": [
    {"dt": 1700000000, "main": {"temp": 10.1, "feels_like": 8.0, "humidity": 80},
     "weather": [{"description": "overcast clouds"}], "wind": {"speed": 3.2}, "pop": 0.2},
    {"dt": 1700010800, "main": {"temp": 9.4, "feels_like": 7.1, "humidity": 85},
     "weather": [{"description": "light rain"}], "wind": {"speed": 4.0}, "pop": 0.65}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New("test-key", WithBaseURL(srv.URL+"/data/2.5"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonJSON))
	})

	snap, err := c.Current(context.Background(), "London", weather.Metric)
	require.NoError(t, err)

	assert.Equal(t, "London", snap.City)
	assert.Equal(t, "GB", snap.Country)
	assert.Equal(t, 15.2, snap.Temperature)
	assert.Equal(t, 13.8, snap.FeelsLike)
	assert.Equal(t, 75, snap.Humidity)
	assert.Equal(t, "light rain", snap.Description)
	assert.Equal(t, 5.5, snap.WindSpeed)
	assert.Equal(t, time.Unix(1234567890, 0).UTC(), snap.ObservedAt)
	assert.Equal(t, weather.Metric, snap.Units)
}

func TestForecast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(forecastJSONBody))
	})

	fc, err := c.Forecast(context.Background(), "London", weather.Imperial)
	require.NoError(t, err)

	assert.Equal(t, "London", fc.City)
	assert.Equal(t, "GB", fc.Country)
	require.Len(t, fc.Points, 2)
	assert.Equal(t, "light rain", fc.Points[1].Description)
	assert.Equal(t, 0.65, fc.Points[1].PrecipitationChance)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), fc.Points[0].At)
}

func TestCurrent_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, `{"cod":"404","message":"city not found"}`, weather.ErrNotFound},
		{http.StatusTooManyRequests, `{"cod":429,"message":"Your account is temporary blocked"}`, weather.ErrRateLimited},
		{http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, weather.ErrUpstreamAuth},
		{http.StatusForbidden, ``, weather.ErrUpstreamAuth},
		{http.StatusGatewayTimeout, ``, weather.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Current(context.Background(), "Nowhereville", weather.Metric)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCurrent_ServerErrorIsUnclassified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})

	_, err := c.Current(context.Background(), "London", weather.Metric)
	require.Error(t, err)
	for _, kind := range []error{weather.ErrNotFound, weather.ErrRateLimited, weather.ErrUpstreamAuth, weather.ErrTimeout} {
		assert.NotErrorIs(t, err, kind)
	}
	assert.Contains(t, err.Error(), "500")
}

func TestCurrent_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
	)
	require.NoError(t, err)

	_, err = c.Current(context.Background(), "London", weather.Metric)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrTimeout)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestCurrent_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": `))
	})

	_, err := c.Current(context.Background(), "London", weather.Metric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
