package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"disasterwatch/internal/types"
)

const (
	openWeatherUserAgent = "DisasterWatch/1.0"
	// maxErrorBody bounds how much of an upstream error body is read.
	maxErrorBody = 4 << 10
)

// OpenWeatherClient fetches current conditions from the OpenWeatherMap
// "current weather" endpoint in metric units.
type OpenWeatherClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
}

// NewOpenWeatherClient builds a client. An empty apiKey is accepted; every
// fetch then fails with a configuration error.
func NewOpenWeatherClient(base *BaseClient, baseURL string, apiKey types.SecretString) *OpenWeatherClient {
	return &OpenWeatherClient{
		base:    base,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// NewDefaultOpenWeatherClient builds a client with its own HTTP client and breaker.
func NewDefaultOpenWeatherClient(baseURL string, apiKey types.SecretString, timeout time.Duration) *OpenWeatherClient {
	base := NewBaseClient(&http.Client{Timeout: timeout}, "openweathermap", openWeatherUserAgent)
	return NewOpenWeatherClient(base, baseURL, apiKey)
}

// Configured reports whether an API key is present.
func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey.IsSet()
}

// CurrentByCity fetches current conditions for a city name.
func (c *OpenWeatherClient) CurrentByCity(ctx context.Context, city string) (*types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("q", city)
	return c.fetch(ctx, q)
}

// CurrentByCoordinates fetches current conditions for a coordinate pair.
func (c *OpenWeatherClient) CurrentByCoordinates(ctx context.Context, lat, lon float64) (*types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.fetch(ctx, q)
}

type owmResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type owmError struct {
	Message string `json:"message"`
}

func (c *OpenWeatherClient) fetch(ctx context.Context, q url.Values) (*types.WeatherSnapshot, error) {
	if !c.apiKey.IsSet() {
		return nil, types.NewConfigurationError("Weather API key not configured")
	}
	q.Set("appid", c.apiKey.Unmask())
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewProviderError(fmt.Errorf("building request: %w", scrubURLError(err)))
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewProviderError(upstreamStatusError(resp))
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, types.NewProviderError(fmt.Errorf("decoding response: %w", err))
	}
	return body.toSnapshot(), nil
}

func upstreamStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e owmError
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("upstream returned %d", resp.StatusCode)
}

// toSnapshot maps the provider payload. Wind direction defaults to 0 when
// absent; risk fields are left for the classifier.
func (r *owmResponse) toSnapshot() *types.WeatherSnapshot {
	s := &types.WeatherSnapshot{
		City:          r.Name,
		Country:       r.Sys.Country,
		Lat:           r.Coord.Lat,
		Lon:           r.Coord.Lon,
		Temperature:   r.Main.Temp,
		Humidity:      r.Main.Humidity,
		Pressure:      r.Main.Pressure,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Deg,
	}
	if len(r.Weather) > 0 {
		s.Description = r.Weather[0].Description
	}
	return s
}
