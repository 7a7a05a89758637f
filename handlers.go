package aiagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// QueryFn answers a validated query. *Agent.Route satisfies it.
type QueryFn func(ctx context.Context, query string) (*QueryResponse, error)

// newInfoHandler returns a handler describing the service.
func newInfoHandler(info InfoResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

// newHealthHandler returns a handler for health check requests. It never
// probes upstream providers.
func newHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
	}
}

// newQueryHandler returns a handler for POST /query requests.
func newQueryHandler(query QueryFn, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Parse request
		var httpReq QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&httpReq); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
				return
			}
			verr := tools.NewValidationError(fmt.Errorf("%w: request body must be a JSON object with a \"query\" string", tools.ErrInvalidInput))
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}

		// 2. Route and execute
		resp, err := query(r.Context(), httpReq.Query)
		if err != nil {
			status := StatusCode(err)
			if status >= http.StatusInternalServerError {
				logger.Error("failed to process query",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.Int("status", status),
					slog.String("error", err.Error()))
			}
			respondError(w, status, ErrorMessage(err))
			return
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
