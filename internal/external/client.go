// Package external is the boundary between the service and third-party APIs.
// Outbound HTTP calls go through BaseClient, which adds trace propagation and
// a circuit breaker, and maps transport failures to AppErrors.
package external

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"disasterwatch/internal/types"
)

// TraceHeader carries the request ID to upstream services.
const TraceHeader = "X-B3-TraceId"

// BreakerSettings returns the breaker configuration used for provider calls:
// trip after more than five consecutive failures, probe with one request
// after 30s.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
}

// BaseClient wraps an *http.Client with a circuit breaker. It never retries.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with its own breaker.
func NewBaseClient(httpClient *http.Client, breakerName, userAgent string) *BaseClient {
	return NewBaseClientWithBreaker(
		httpClient,
		gobreaker.NewCircuitBreaker[*http.Response](BreakerSettings(breakerName)),
		userAgent,
	)
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided breaker.
func NewBaseClientWithBreaker(httpClient *http.Client, breaker *gobreaker.CircuitBreaker[*http.Response], userAgent string) *BaseClient {
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
	}
}

// Do executes req through the breaker. Network failures and 5xx responses
// count against the breaker; 5xx is still returned to the caller as a response
// so it can read the upstream error body. The caller closes the body.
//
// Transport failures and an open breaker are returned as ProviderErrors.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set(TraceHeader, traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var upstream *http.Response
	_, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		upstream = r
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	if upstream != nil {
		return upstream, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, types.NewProviderError(fmt.Errorf("service temporarily unavailable: %w", err))
	default:
		return nil, types.NewProviderError(scrubURLError(err))
	}
}

// scrubURLError drops the request URL from transport errors. Provider URLs
// carry credentials in the query string.
func scrubURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// State exposes the breaker state for health reporting.
func (c *BaseClient) State() gobreaker.State {
	return c.breaker.State()
}
