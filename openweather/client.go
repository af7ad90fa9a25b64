// Package openweather is a minimal OpenWeatherMap client returning the
// service's weather types.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultTimeout = 10 * time.Second
)

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil && raw != "" {
			c.baseURL = u
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

var _ weather.Source = (*Client)(nil)

// Current fetches current conditions for city
func (c *Client) Current(ctx context.Context, city string, units weather.Units) (weather.Snapshot, error) {
	var body currentJSON
	if err := c.getJSON(ctx, "weather", city, units, &body); err != nil {
		return weather.Snapshot{}, err
	}
	return weather.Snapshot{
		City:        body.Name,
		Country:     body.Sys.Country,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Description: describe(body.Weather),
		WindSpeed:   body.Wind.Speed,
		ObservedAt:  time.Unix(body.Dt, 0).UTC(),
		Units:       units,
	}, nil
}

// Forecast fetches the 5 day / 3 hour forecast for city
func (c *Client) Forecast(ctx context.Context, city string, units weather.Units) (weather.Forecast, error) {
	var body forecastJSON
	if err := c.getJSON(ctx, "forecast", city, units, &body); err != nil {
		return weather.Forecast{}, err
	}
	fc := weather.Forecast{
		City:    body.City.Name,
		Country: body.City.Country,
		Units:   units,
		Points:  make([]weather.ForecastPoint, 0, len(body.List)),
	}
	for _, it := range body.List {
		fc.Points = append(fc.Points, weather.ForecastPoint{
			At:                  time.Unix(it.Dt, 0).UTC(),
			Temperature:         it.Main.Temp,
			FeelsLike:           it.Main.FeelsLike,
			Humidity:            it.Main.Humidity,
			Description:         describe(it.Weather),
			WindSpeed:           it.Wind.Speed,
			PrecipitationChance: it.Pop,
		})
	}
	return fc, nil
}

func (c *Client) newReq(ctx context.Context, p, city string, units weather.Units) (*http.Request, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", string(units))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, p, city string, units weather.Units, out any) error {
	req, err := c.newReq(ctx, p, city, units)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("GET /%s %q: %w", p, city, weather.ErrTimeout)
		}
		// the api key travels in the query string, keep the URL out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("GET /%s %q: %w", p, city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode /%s response: %w", p, err)
		}
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := resp.Status
	var ej errorJSON
	if json.Unmarshal(b, &ej) == nil && ej.Message != "" {
		msg = ej.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %q", weather.ErrNotFound, city)
	case http.StatusTooManyRequests:
		return fmt.Errorf("GET /%s: %w: %s", p, weather.ErrRateLimited, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("GET /%s: %w: %s", p, weather.ErrUpstreamAuth, msg)
	case http.StatusGatewayTimeout:
		return fmt.Errorf("GET /%s: %w: %s", p, weather.ErrTimeout, msg)
	default:
		return fmt.Errorf("GET /%s: %s: %s", p, resp.Status, msg)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
