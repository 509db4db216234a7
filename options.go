package jemput

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zoobzio/clockz"
)

// WithMethod sets the HTTP method for each fetch cycle (default GET).
func WithMethod(method string) Option {
	return func(c *config) {
		c.method = method
	}
}

// WithHeader adds a request header applied to every fetch cycle.
func WithHeader(key, value string) Option {
	return func(c *config) {
		c.header.Add(key, value)
	}
}

// WithBody sets a request body replayed on every fetch cycle.
func WithBody(body []byte) Option {
	return func(c *config) {
		c.body = body
	}
}

// WithJSONBody marshals v once and sends it as the request body with
// Content-Type application/json. Marshal failures surface as a validation
// error at construction.
func WithJSONBody(v any) Option {
	return func(c *config) {
		body, err := json.Marshal(v)
		if err != nil {
			c.body = nil
			c.bodyErr = err
			return
		}
		c.body = body
		c.header.Set("Content-Type", "application/json")
	}
}

// WithImmediate controls whether construction starts the first fetch cycle
// (default true). With false, no request is issued until Refetch is called.
func WithImmediate(immediate bool) Option {
	return func(c *config) {
		c.immediate = immediate
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
// There is no timeout-driven abort beyond this; cancellation is otherwise
// supersession-driven (Refetch / Close).
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithDecoder sets a custom response body decoder (default JSON).
func WithDecoder(decoder Decoder) Option {
	return func(c *config) {
		c.decoder = decoder
	}
}

// WithClock sets the clock implementation for time operations.
// Default is clockz.RealClock for production use.
// Use clockz.NewFakeClock for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithMiddleware adds middleware wrapping the underlying transport.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *config) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *config) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(dc *DebugConfig) Option {
	return func(c *config) {
		c.debug = dc
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// validateConfiguration validates a fetch configuration against its target URL
// and returns an aggregated error if invalid.
func validateConfiguration(rawURL string, c *config) error {
	var violations []string

	if rawURL == "" {
		violations = append(violations, "url must not be empty")
	} else if u, err := url.Parse(rawURL); err != nil {
		violations = append(violations, fmt.Sprintf("url is not parseable: %v", err))
	} else if u.Scheme == "" || u.Host == "" {
		violations = append(violations, "url must be absolute (scheme and host required)")
	}

	if c.method == "" {
		violations = append(violations, "method must not be empty")
	}

	if c.httpClient == nil {
		violations = append(violations, "HTTP client cannot be nil")
	}

	if c.clock == nil {
		violations = append(violations, "clock cannot be nil")
	}

	if c.decoder == nil {
		violations = append(violations, "decoder cannot be nil")
	}

	if c.bodyErr != nil {
		violations = append(violations, fmt.Sprintf("request body cannot be encoded: %v", c.bodyErr))
	}

	for i, middleware := range c.middleware {
		if middleware == nil {
			violations = append(violations, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			violations = append(violations, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			violations = append(violations, "logger must be set when debug is enabled")
		}
	}

	if len(violations) > 0 {
		return &FetchError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			URL:     rawURL,
			Cause:   fmt.Errorf("validation errors: %v", violations),
		}
	}

	return nil
}
