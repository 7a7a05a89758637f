package aiagent

import (
	"errors"
	"net/http"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// ErrInternal is the message returned for failures that carry no safe
// description.
var ErrInternal = errors.New("internal server error")

// StatusCode maps a failure to its HTTP status:
//
//	ValidationError                      400
//	MathError                            422
//	WeatherError location not found      404
//	provider not configured              503
//	provider deadline exceeded           504
//	other WeatherError / LLMError        502
//	RoutingError and untyped errors      500
func StatusCode(err error) int {
	te, ok := tools.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch te.Kind {
	case tools.ValidationFailure:
		return http.StatusBadRequest
	case tools.MathFailure:
		return http.StatusUnprocessableEntity
	case tools.WeatherFailure, tools.LLMFailure:
		switch {
		case errors.Is(te.Err, tools.ErrLocationNotFound):
			return http.StatusNotFound
		case errors.Is(te.Err, tools.ErrNotConfigured):
			return http.StatusServiceUnavailable
		case te.Timeout():
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the client-facing message for a failure. Typed
// failures are rendered as "<Kind>Error: ..."; anything else is hidden.
func ErrorMessage(err error) string {
	if te, ok := tools.AsError(err); ok {
		return te.Error()
	}
	return ErrInternal.Error()
}
