package tools

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failure.
type ErrorKind string

const (
	// ValidationFailure marks bad or empty input, caught before routing.
	ValidationFailure ErrorKind = "Validation"

	// MathFailure marks parse failures and division by zero.
	MathFailure ErrorKind = "Math"

	// WeatherFailure marks weather provider failures.
	WeatherFailure ErrorKind = "Weather"

	// LLMFailure marks LLM provider failures.
	LLMFailure ErrorKind = "LLM"

	// RoutingFailure marks a routing defect. It should be unreachable.
	RoutingFailure ErrorKind = "Routing"
)

var (
	// ErrEmptyQuery indicates an empty or whitespace-only query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooLong indicates a query over the configured length limit.
	ErrQueryTooLong = errors.New("query is too long")

	// ErrInvalidInput indicates a malformed request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnparseable indicates the query holds no valid arithmetic expression.
	ErrUnparseable = errors.New("could not parse expression")

	// ErrNotFinite indicates an overflowing arithmetic result.
	ErrNotFinite = errors.New("result is not a finite number")

	// ErrLocationNotFound indicates the provider does not know the location.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNotConfigured indicates a provider without credentials or endpoint.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrUnauthorized indicates the provider rejected the credentials.
	ErrUnauthorized = errors.New("invalid API key")

	// ErrUpstream indicates a failed or non-2xx provider call.
	ErrUpstream = errors.New("provider request failed")

	// ErrMalformedResponse indicates an unreadable provider payload.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrEmptyCompletion indicates the LLM returned no text.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrUnknownTool indicates the router selected an unregistered tool.
	ErrUnknownTool = errors.New("no tool registered for kind")
)

// Error is the typed failure of a tool or the router.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Err is the classified failure, usually one of the sentinels above.
	Err error

	// Cause is the underlying error, if any.
	Cause error
}

// NewError creates a typed failure.
func NewError(kind ErrorKind, err, cause error) *Error {
	return &Error{Kind: kind, Err: err, Cause: cause}
}

// NewValidationError creates a ValidationError.
func NewValidationError(err error) *Error {
	return NewError(ValidationFailure, err, nil)
}

// NewMathError creates a MathError.
func NewMathError(err, cause error) *Error {
	return NewError(MathFailure, err, cause)
}

// NewWeatherError creates a WeatherError.
func NewWeatherError(err, cause error) *Error {
	return NewError(WeatherFailure, err, cause)
}

// NewLLMError creates an LLMError.
func NewLLMError(err, cause error) *Error {
	return NewError(LLMFailure, err, cause)
}

// NewRoutingError creates a RoutingError.
func NewRoutingError(err error) *Error {
	return NewError(RoutingFailure, err, nil)
}

// Error renders "<Kind>Error: <message>[: <cause>]".
func (e *Error) Error() string {
	msg := fmt.Sprintf("%sError: %v", e.Kind, e.Err)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the classified failure and its cause to errors.Is.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Timeout reports whether the failure was caused by an expired deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e, context.DeadlineExceeded)
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
