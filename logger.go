package jemput

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Logger receives structured debug output. Keys and values alternate in
// keysAndValues, mirroring the common kv-pair logging convention.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger is a minimal console Logger for development use.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger returns a Logger writing to stderr with timestamps.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
	}
}

func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log("DEBUG", msg, keysAndValues...)
}

func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues...)
}

func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("WARN", msg, keysAndValues...)
}

func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues...)
}

func (l *SimpleLogger) log(level, msg string, keysAndValues ...interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(&b, " %v", keysAndValues[len(keysAndValues)-1])
	}
	l.logger.Println(b.String())
}

// DebugConfig controls which lifecycle events are logged when debugging is
// enabled. Flags are independent so noisy concerns can be silenced selectively.
type DebugConfig struct {
	Enabled         bool
	LogFetches      bool
	LogAborts       bool
	LogStateChanges bool
	RequestIDGen    func() string
}

// DefaultDebugConfig returns a config with all event flags on but debugging
// itself disabled; enable via WithDebug or WithSimpleLogger.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:         false,
		LogFetches:      true,
		LogAborts:       true,
		LogStateChanges: true,
		RequestIDGen:    defaultRequestID,
	}
}

var requestSeq uint64

func defaultRequestID() string {
	return fmt.Sprintf("req-%d-%d", time.Now().UnixNano(), atomic.AddUint64(&requestSeq, 1))
}
