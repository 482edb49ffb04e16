package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Transport performs JSON requests against one upstream base URL and
// classifies failures into APIError. It throttles client-side with a token
// bucket but never retries.
type Transport struct {
	Upstream   string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	// Decorate, when set, adds authentication headers to every request.
	Decorate func(*http.Request)
}

// NewLimiter returns a limiter allowing perSecond requests with the given
// burst. A non-positive rate disables throttling.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// NewHTTPClient returns a client with the given timeout, defaulting to 30s.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Do sends method path with an optional JSON body and decodes a JSON
// response into out when out is non-nil. An empty 2xx body leaves out
// untouched.
func (t *Transport) Do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return t.fail(op, 0, "", err)
		}
	}

	target := strings.TrimRight(t.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return t.fail(op, 0, "", fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return t.fail(op, 0, "", fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.Decorate != nil {
		t.Decorate(req)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return &APIError{Upstream: t.Upstream, Op: op, Kind: KindAuth, Err: err}
		}
		return t.fail(op, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return t.fail(op, resp.StatusCode, strings.TrimSpace(string(snippet)), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.fail(op, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return t.fail(op, resp.StatusCode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// Close releases idle connections held by the underlying client.
func (t *Transport) Close() {
	if t.HTTPClient != nil {
		t.HTTPClient.CloseIdleConnections()
	}
}

func (t *Transport) fail(op string, status int, body string, err error) *APIError {
	kind := KindAPI
	if status != 0 {
		kind = KindForStatus(status)
	}
	return &APIError{
		Upstream:   t.Upstream,
		Op:         op,
		StatusCode: status,
		Kind:       kind,
		Body:       body,
		Err:        err,
	}
}
