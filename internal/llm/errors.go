package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// RateLimitError reports a throttled invocation. RetryAfter is only meaningful
// when HasRetryAfter is set.
type RateLimitError struct {
	RetryAfter    time.Duration
	HasRetryAfter bool
	Cause         error
}

func (e *RateLimitError) Error() string {
	if e.HasRetryAfter {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Cause)
	}
	return fmt.Sprintf("rate limited: %v", e.Cause)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// TransportError represents any non-throttling failure talking to the provider
type TransportError struct {
	Status  int
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (status %d): %s: %v", e.Status, e.Message, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ConfigError is a client misconfiguration; retrying cannot fix it
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config error: %s", e.Message)
}

// RetryExhaustedError is returned when an invocation kept failing past the retry bound
type RetryExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("llm invocation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Cause
}

// classifyError maps a provider error onto RateLimitError or TransportError
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			wait, ok := ParseRetryAfter(apiErr.Header)
			return &RateLimitError{RetryAfter: wait, HasRetryAfter: ok, Cause: err}
		}
		return &TransportError{Status: apiErr.Code, Message: "request failed", Cause: err}
	}
	return &TransportError{Message: "request failed", Cause: err}
}

// ParseRetryAfter reads the wait hint of a throttled response. The "retry-after"
// header holds seconds and wins over "retry-after-ms", which holds milliseconds.
func ParseRetryAfter(header http.Header) (time.Duration, bool) {
	if header == nil {
		return 0, false
	}
	if v := strings.TrimSpace(header.Get("Retry-After")); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second)), true
		}
	}
	if v := strings.TrimSpace(header.Get("Retry-After-Ms")); v != "" {
		if ms, err := strconv.ParseFloat(v, 64); err == nil && ms >= 0 {
			return time.Duration(ms * float64(time.Millisecond)), true
		}
	}
	return 0, false
}
