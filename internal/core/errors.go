package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrServiceUnavailable is returned when no model client was configured at startup
var ErrServiceUnavailable = errors.New("model client not configured or failed to initialize")

// ErrRecordNotFound is returned by stores when a record does not exist
var ErrRecordNotFound = errors.New("classification record not found")

// FieldError names one invalid request field
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError reports a malformed inbound request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// UpstreamProtocolError means the model answered without the expected tool call
type UpstreamProtocolError struct {
	Provider string
	Reason   string
}

func (e *UpstreamProtocolError) Error() string {
	return fmt.Sprintf("%s did not return the expected structured call: %s", e.Provider, e.Reason)
}

// UpstreamDecodeError means the tool arguments did not satisfy the schema.
// Field is empty when the arguments were not a JSON object at all.
type UpstreamDecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *UpstreamDecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid tool call arguments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid tool call argument %q: %s", e.Field, e.Reason)
}

func (e *UpstreamDecodeError) Unwrap() error {
	return e.Err
}

// UpstreamCallError is an API-level failure returned by the model provider
type UpstreamCallError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamCallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *UpstreamCallError) Unwrap() error {
	return e.Err
}

// UpstreamNetworkError is a connectivity failure reaching the model provider
type UpstreamNetworkError struct {
	Provider string
	Err      error
}

func (e *UpstreamNetworkError) Error() string {
	return fmt.Sprintf("network error contacting %s: %v", e.Provider, e.Err)
}

func (e *UpstreamNetworkError) Unwrap() error {
	return e.Err
}

// PersistenceError is a store failure. It is only ever logged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WrapTransportError classifies a provider failure that is not a typed API error.
// Timeouts and connection failures become UpstreamNetworkError, everything else
// UpstreamCallError.
func WrapTransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamNetworkError{Provider: provider, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &UpstreamNetworkError{Provider: provider, Err: err}
	}
	return &UpstreamCallError{Provider: provider, Err: err}
}
