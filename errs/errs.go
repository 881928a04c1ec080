// Package errs provides structured error types and helpers shared across the trading core.
package errs

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Code identifies an error category raised by the trading core.
type Code string

const (
	// CodeInvalidConfig indicates invalid configuration supplied by the caller.
	CodeInvalidConfig Code = "invalid_config"
	// CodeDuplicateLabel indicates a timer label collision with an active timer.
	CodeDuplicateLabel Code = "duplicate_label"
	// CodeInvalidInterval indicates a non-positive timer interval.
	CodeInvalidInterval Code = "invalid_interval"
	// CodeInvalidRange indicates a timer stop time at or before its start time.
	CodeInvalidRange Code = "invalid_range"
	// CodeCodec indicates a serialization or deserialization failure.
	CodeCodec Code = "codec"
	// CodeTransport indicates a transport channel failure.
	CodeTransport Code = "transport"
	// CodeUnavailable indicates an operation against a disposed or closed component.
	CodeUnavailable Code = "unavailable"
	// CodeNotFound indicates a missing resource.
	CodeNotFound Code = "not_found"
	// CodeConflict indicates a concurrent mutation conflict.
	CodeConflict Code = "conflict"
)

// E captures structured error information produced across the trading core.
type E struct {
	Component string
	Code      Code
	Message   string
	Label     string
	Metadata  map[string]string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the component and error code.
func New(component string, code Code, opts ...Option) *E {
	e := &E{
		Component: strings.TrimSpace(component),
		Code:      code,
		Message:   "",
		Label:     "",
		Metadata:  nil,
		cause:     nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithLabel records the timer label associated with the error.
func WithLabel(label string) Option {
	trimmed := strings.TrimSpace(label)
	return func(e *E) {
		e.Label = trimmed
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

// WithField appends a single metadata key/value pair.
func WithField(key, value string) Option {
	return func(e *E) {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string, 1)
		}
		e.Metadata[trimmedKey] = strings.TrimSpace(value)
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	component := strings.TrimSpace(e.Component)
	if component == "" {
		component = "unknown"
	}
	parts = append(parts, "component="+component)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Label != "" {
		parts = append(parts, "label="+strconv.Quote(e.Label))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+strconv.Quote(e.Metadata[k]))
		}
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	for err != nil {
		var envelope *E
		if !errors.As(err, &envelope) {
			return false
		}
		if envelope.Code == code {
			return true
		}
		err = envelope.Unwrap()
	}
	return false
}
