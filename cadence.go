package jemput

import (
	"github.com/zoobzio/clockz"
)

// CadenceOption configures a Debounce or Throttle wrapper.
type CadenceOption func(*cadenceConfig)

type cadenceConfig struct {
	clock   clockz.Clock
	name    string
	logger  Logger
	metrics *MetricsCollector
}

func newCadenceConfig(defaultName string, opts []CadenceOption) cadenceConfig {
	cfg := cadenceConfig{
		clock: clockz.RealClock,
		name:  defaultName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithCadenceClock sets the clock used for timer scheduling.
// Default is clockz.RealClock; use clockz.NewFakeClock in tests.
func WithCadenceClock(clock clockz.Clock) CadenceOption {
	return func(c *cadenceConfig) {
		c.clock = clock
	}
}

// WithCadenceName labels the wrapper in metrics and log output.
func WithCadenceName(name string) CadenceOption {
	return func(c *cadenceConfig) {
		c.name = name
	}
}

// WithCadenceLogger sets a logger for wrapper lifecycle events.
func WithCadenceLogger(logger Logger) CadenceOption {
	return func(c *cadenceConfig) {
		c.logger = logger
	}
}

// WithCadenceMetrics attaches a metrics collector to the wrapper.
func WithCadenceMetrics(collector *MetricsCollector) CadenceOption {
	return func(c *cadenceConfig) {
		c.metrics = collector
	}
}
