package jemput

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetch performs a single typed fetch using the same request pipeline as
// Fetcher: build request, apply middleware, require a 2xx status, decode the
// body. It blocks until resolution and is the one-shot companion to Fetcher
// for callers that do not need lifecycle state.
func Fetch[T any](ctx context.Context, rawURL string, options ...Option) (T, error) {
	var zero T

	cfg := defaultConfig()
	for _, option := range options {
		option(&cfg)
	}

	if err := validateConfiguration(rawURL, &cfg); err != nil {
		cfg.metrics.RecordError(ErrorTypeValidation, cfg.method, endpointFromURL(rawURL))
		return zero, err
	}

	var requestID string
	if cfg.debug != nil && cfg.debug.Enabled && cfg.debug.RequestIDGen != nil {
		requestID = cfg.debug.RequestIDGen()
	}

	data, err := fetchOnce[T](ctx, rawURL, endpointFromURL(rawURL), &cfg, requestID)
	if err != nil {
		return zero, err
	}
	return *data, nil
}

// fetchOnce executes one instrumented request/decode pass. The caller owns
// abort handling; an error caused by ctx cancellation still comes back as a
// network-classified error and must be discarded by the caller when ctx is
// done.
func fetchOnce[T any](ctx context.Context, rawURL, endpoint string, cfg *config, requestID string) (*T, error) {
	start := cfg.clock.Now()

	cfg.metrics.RecordFetchStart(cfg.method, endpoint)
	defer cfg.metrics.RecordFetchEnd(cfg.method, endpoint)

	fail := func(errType, message string, cause error, statusCode int) (*T, error) {
		// Aborted cycles are swallowed by the caller; keep them out of the
		// error and outcome metrics too.
		if ctx.Err() == nil {
			cfg.metrics.RecordError(errType, cfg.method, endpoint)
			cfg.metrics.RecordFetch(cfg.method, endpoint, statusCode, cfg.clock.Now().Sub(start))
		}
		return nil, &FetchError{
			Type:       errType,
			Message:    message,
			Cause:      cause,
			RequestID:  requestID,
			Method:     cfg.method,
			URL:        rawURL,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Timestamp:  cfg.clock.Now(),
			Duration:   cfg.clock.Now().Sub(start),
		}
	}

	var bodyReader io.Reader
	if cfg.body != nil {
		bodyReader = bytes.NewReader(cfg.body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, rawURL, bodyReader)
	if err != nil {
		return fail(ErrorTypeValidation, "building request failed", err, 0)
	}
	for key, values := range cfg.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := cfg.transport().RoundTrip(req)
	if err != nil {
		return fail(ErrorTypeNetwork, "network request failed", err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fail(ErrorTypeStatus, fmt.Sprintf("unexpected status %s", resp.Status), nil, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(ErrorTypeNetwork, "reading response body failed", err, resp.StatusCode)
	}

	data := new(T)
	if err := cfg.decoder(body, data); err != nil {
		return fail(ErrorTypeDecode, "decoding response body failed", err, resp.StatusCode)
	}

	cfg.metrics.RecordFetch(cfg.method, endpoint, resp.StatusCode, cfg.clock.Now().Sub(start))
	return data, nil
}
