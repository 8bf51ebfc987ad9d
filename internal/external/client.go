// Package external provides the anti-corruption layer between SolarCheck
// domain logic and the public APIs it reads from: IP geolocation, Nominatim
// reverse geocoding, Open-Meteo and NASA POWER. All outbound HTTP calls are
// routed through BaseClient, which applies a circuit breaker, trace
// propagation, a User-Agent, and error mapping.
//
// Calls are single-attempt. A failing upstream surfaces as an AppError and
// the caller decides what to show the user.
package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"solarcheck/internal/types"
)

// maxResponseBytes caps how much of an upstream body we are willing to read.
// A full NASA POWER year for four parameters is well under this.
const maxResponseBytes = 8 << 20

// BreakerSettings configures the circuit breaker wrapped around a client.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker once exceeded.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns sensible defaults for public APIs.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// errCallerDone marks a request abandoned because the caller's context
// ended. It says nothing about the upstream's health.
var errCallerDone = errors.New("caller context done")

// FailureRecorder observes upstream failures, typically for metrics.
type FailureRecorder interface {
	RecordUpstreamFailure(ctx context.Context, provider string, code types.ErrorCode)
}

// BaseClient wraps an *http.Client and a circuit breaker. Provider clients
// embed it to inherit consistent outbound behaviour.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
	provider  string
	recorder  FailureRecorder
}

// NewBaseClient creates a BaseClient for the named provider. The provider
// name doubles as the breaker name and appears in error details.
func NewBaseClient(httpClient *http.Client, provider string, settings BreakerSettings, userAgent string) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerDone)
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
		provider:  provider,
	}
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided circuit
// breaker. Useful for tests that need fine-grained breaker control.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	provider string,
	userAgent string,
) *BaseClient {
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
		provider:  provider,
	}
}

// SetFailureRecorder attaches r to observe mapped upstream failures.
func (c *BaseClient) SetFailureRecorder(r FailureRecorder) {
	c.recorder = r
}

// Name returns the provider name. Together with Check it lets a client act
// as a health probe.
func (c *BaseClient) Name() string {
	return c.provider
}

// Check reports the provider unhealthy while its circuit breaker is open.
// It never calls the upstream itself.
func (c *BaseClient) Check(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s circuit breaker is open", c.provider)
	}
	return nil
}

// Do executes the HTTP request with:
//  1. Trace ID injection (X-B3-TraceId from context)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping (5xx and 429 count as failures; requests
//     abandoned by the caller count as neither)
//  4. Error mapping to types.AppError
//
// Responses other than 5xx/429 are returned as-is and the caller owns the
// body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-B3-TraceId", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", errCallerDone, ctxErr)
			}
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		if r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned 429")
		}
		return r, nil
	})
	if err == nil {
		return resp, nil
	}

	if resp != nil {
		resp.Body.Close()
	}
	appErr := c.mapError(resp, err)
	if c.recorder != nil && req.Context().Err() == nil {
		c.recorder.RecordUpstreamFailure(req.Context(), c.provider, appErr.Code)
	}
	return nil, appErr
}

// GetJSON issues a GET to rawURL and decodes a 2xx JSON body into dst.
// Non-2xx statuses map to ErrCodeUpstreamUnexpectedStatus and undecodable
// bodies to ErrCodeUpstreamMalformedResponse.
func (c *BaseClient) GetJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamUnexpectedStatus,
			fmt.Sprintf("%s returned status %d", c.provider, resp.StatusCode),
			nil,
			map[string]any{"provider": c.provider, "status": resp.StatusCode, "body": string(snippet)},
		)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMalformedResponse,
			fmt.Sprintf("%s returned an unreadable response", c.provider),
			err,
			map[string]any{"provider": c.provider},
		)
	}
	return nil
}

// mapError translates HTTP-level failures into domain-level AppErrors.
func (c *BaseClient) mapError(resp *http.Response, err error) *types.AppError {
	details := map[string]any{"provider": c.provider}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamUnavailable,
			"circuit breaker is open; upstream service unavailable",
			err,
			details,
		)
	}

	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return types.NewAppErrorWithDetails(
				types.ErrCodeUpstreamRateLimited,
				"upstream rate limit exceeded",
				err,
				details,
			)
		case resp.StatusCode >= 500:
			return types.NewAppErrorWithDetails(
				types.ErrCodeUpstreamUnavailable,
				fmt.Sprintf("upstream returned %d", resp.StatusCode),
				err,
				details,
			)
		}
	}

	// Network error, DNS failure, context cancellation.
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamUnavailable,
		"upstream request failed",
		err,
		details,
	)
}
