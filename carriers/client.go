// Package carriers holds the HTTP clients for the ZIM, Maersk and Hapag-Lloyd
// schedule and tracking APIs, and adapts them into route sources.
package carriers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/telemetry"
)

var ErrNotConfigured = errors.New("carrier client not configured")

// StatusError is a non-2xx answer from a carrier.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Session supplies the caller's bearer token, if any, for carrier proxies that
// sit behind the platform's authentication.
type Session interface {
	Token(ctx context.Context) (string, error)
}

type StaticSession string

func (s StaticSession) Token(context.Context) (string, error) {
	return string(s), nil
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

const maxBodyBytes = 16 << 20

type httpClient struct {
	carrier   string
	keyHeader string
	baseURL   string
	apiKey    string
	session   Session
	http      *http.Client
	tracer    trace.Tracer
	backoff   time.Duration
}

func newHTTPClient(carrier, keyHeader string, cfg Config, session Session) *httpClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		carrier:   carrier,
		keyHeader: keyHeader,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		session:   session,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		tracer:  otel.Tracer("carriers"),
		backoff: 200 * time.Millisecond,
	}
}

// get fetches baseURL+path and returns the body of a 2xx response.
func (c *httpClient) get(ctx context.Context, operation, path string, query url.Values) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%s: %w", c.carrier, ErrNotConfigured)
	}

	ctx, span := c.tracer.Start(ctx, "carrier."+operation,
		trace.WithAttributes(
			attribute.String("carrier", c.carrier),
			attribute.String("api.endpoint", c.baseURL+path),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.CarrierRequestDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("carrier", c.carrier), attribute.String("operation", operation)))
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, target)
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			telemetry.RecordError(span, err, telemetry.ErrorTypeHTTP, se.Code >= 500)
		} else {
			telemetry.RecordError(span, err, telemetry.ErrorTypeNetwork, true)
		}
		return nil, fmt.Errorf("%s %s: %w", c.carrier, operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		telemetry.RecordError(span, err, telemetry.ErrorTypeNetwork, true)
		return nil, fmt.Errorf("%s %s: read body: %w", c.carrier, operation, err)
	}

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("response.size_bytes", len(body)),
	)
	slog.Debug("carrier response", "carrier", c.carrier, "operation", operation,
		"status", resp.StatusCode, "bytes", len(body), "dur", time.Since(start))

	return body, nil
}

func (c *httpClient) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" && c.keyHeader != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}
	if c.session != nil {
		token, err := c.session.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

func (c *httpClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx with exponential backoff,
// giving up early when ctx is done.
func (c *httpClient) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := c.backoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		slog.Debug("retrying carrier request", "carrier", c.carrier, "attempt", attempt, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
