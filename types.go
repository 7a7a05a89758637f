package aiagent

import "github.com/ourstudio-se/ai-agent-backend/tools"

// QueryRequest is the HTTP request body for POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the envelope returned for every successful query.
type QueryResponse struct {
	// Query echoes the query as received.
	Query string `json:"query"`

	// ToolUsed is the tool the router selected.
	ToolUsed tools.Kind `json:"tool_used"`

	// Result is the tool output.
	Result string `json:"result"`
}

// ErrorResponse is the HTTP error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse describes the service at GET /.
type InfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Tools       []tools.Kind      `json:"tools"`
	Endpoints   map[string]string `json:"endpoints"`
}
