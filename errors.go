package jemput

import (
	"errors"
	"fmt"
	"time"
)

// Error type identifiers carried by FetchError.Type.
const (
	ErrorTypeNetwork    = "Network"
	ErrorTypeStatus     = "Status"
	ErrorTypeDecode     = "Decode"
	ErrorTypeValidation = "Validation"
)

// Sentinel errors for common failure scenarios
var (
	// ErrClosed is returned when an operation is attempted on a closed Fetcher
	ErrClosed = errors.New("jemput: fetcher closed")

	// ErrEmptyURL is returned when a Fetcher is constructed without a URL
	ErrEmptyURL = errors.New("jemput: empty url")
)

// FetchError describes a failed fetch cycle. The Type field distinguishes
// network failures, non-2xx responses, body decode failures and configuration
// validation failures.
type FetchError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Endpoint   string
	StatusCode int
	Timestamp  time.Time
	Duration   time.Duration
}

// IsRetryable determines if an error represents a failure that might succeed on
// a manual Refetch. Returns true for network errors and 5xx responses, plus 429
// Too Many Requests. Returns false for other 4xx responses, decode failures and
// configuration errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Type {
		case ErrorTypeNetwork:
			return true
		case ErrorTypeStatus:
			return fetchErr.StatusCode >= 500 || fetchErr.StatusCode == 429
		default:
			return false
		}
	}

	return false
}

// Error implements error interface.
func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *FetchError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*FetchError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *FetchError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
