package jemput

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zoobzio/clockz"
)

// State is a snapshot of a Fetcher's observable state. Data is nil until the
// first successful cycle and keeps its last good value across later failures;
// Err is the failure of the most recent completed cycle, cleared on success.
type State[T any] struct {
	Data    *T
	Err     error
	Loading bool
}

// Decoder turns a response body into the caller's value. The default is
// json.Unmarshal; supply an alternative via WithDecoder for other formats.
type Decoder func(body []byte, v any) error

// DefaultDecoder decodes JSON response bodies.
func DefaultDecoder(body []byte, v any) error {
	return json.Unmarshal(body, v)
}

// Middleware represents a middleware function
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*config)

// config holds Fetcher configuration assembled from functional options. It is
// deliberately non-generic so a single Option set serves every Fetcher[T].
type config struct {
	method     string
	header     http.Header
	body       []byte
	bodyErr    error
	immediate  bool
	httpClient *http.Client
	clock      clockz.Clock
	decoder    Decoder
	middleware []Middleware
	metrics    *MetricsCollector
	logger     Logger
	debug      *DebugConfig
}

func defaultConfig() config {
	return config{
		method: http.MethodGet,
		header: make(http.Header),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		immediate:  true,
		clock:      clockz.RealClock,
		decoder:    DefaultDecoder,
		middleware: []Middleware{},
		metrics:    nil,
		logger:     nil,
		debug:      DefaultDebugConfig(),
	}
}

// transport builds the middleware chain over the underlying HTTP client.
func (c *config) transport() RoundTripper {
	if len(c.middleware) == 0 {
		return RoundTripperFunc(c.httpClient.Do)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current
}
