package api

import (
	"errors"
	"fmt"
	"strings"
)

// Messages shown when the service gives nothing better.
const (
	FallbackAnalyze = "Failed to analyze prompt. Please try again."
	FallbackDetect  = "Failed to detect bias."
	FallbackHealth  = "Analysis service is unreachable."
)

var (
	// ErrEmptyPrompt is returned before any I/O when the prompt is blank.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrInvalidAxis is returned when a domain or mode value is not one the
	// client's selector accepts.
	ErrInvalidAxis = errors.New("invalid analysis axis")
)

// NetworkError means the request never produced a response: DNS, connect,
// timeout, cancellation or a truncated body.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError means the service answered but not with a usable result.
// Message holds the payload's "error" field when there was one.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error // Decode failure for 2xx bodies that did not parse
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: service error (HTTP %d): %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: service error (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: service error (HTTP %d)", e.Op, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage converts any request-path error into the single string shown to
// the user. Service messages are passed through verbatim; everything else
// becomes fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if msg := strings.TrimSpace(svcErr.Message); msg != "" {
			return msg
		}
		return fallback
	}

	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return "Please enter a prompt."
	case errors.Is(err, ErrInvalidAxis):
		return err.Error()
	}

	return fallback
}
